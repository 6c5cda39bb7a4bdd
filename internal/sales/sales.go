package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the store has no record for the given id.
	ErrNotFound = errors.New("sale not found")

	// ErrNoItems rejects a submit with an empty line-item list before any
	// network call is made.
	ErrNoItems = errors.New("sale must have at least one line item")
)

// Product is a catalog entry (barang). Reference data, read-only.
type Product struct {
	ID        int64
	Code      string
	Name      string
	UnitPrice decimal.Decimal // bandrol (list) price
}

// Customer is a customer reference record. Read-only.
type Customer struct {
	ID    int64
	Code  string
	Name  string
	Phone string
}

// LineItem is one row of a sale. UnitPrice, Quantity and DiscountPercent
// are the inputs; DiscountAmount, DiscountedUnitPrice and LineTotal are
// derived from them and must never be set independently.
type LineItem struct {
	ID          int64 // server row id, zero for rows not yet persisted
	ProductID   int64
	ProductCode string
	ProductName string

	UnitPrice       decimal.Decimal
	Quantity        int64
	DiscountPercent decimal.Decimal

	DiscountAmount      decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	LineTotal           decimal.Decimal
}

// Transaction is a sale, either a draft under edit or a persisted record.
type Transaction struct {
	ID     int64
	Number string // no transaksi, server-assigned; empty while drafting
	Date   time.Time

	CustomerID    int64
	CustomerName  string
	CustomerPhone string

	Items []LineItem

	Subtotal       decimal.Decimal
	HeaderDiscount decimal.Decimal // diskon, independent of line discounts
	ShippingFee    decimal.Decimal // ongkir
	AmountPayable  decimal.Decimal // total bayar

	// ItemCount is populated on list responses, which carry a count of
	// detail rows instead of the rows themselves.
	ItemCount int
}

// ListFilter narrows a sales listing. A nil/empty Search returns all records.
type ListFilter struct {
	Search string // customer name substring
}
