// Package session holds the state of one transaction form: the draft under
// edit plus the single staging buffer used to add or edit a line item. All
// mutations run the pricing engine synchronously, so the draft's derived
// fields are consistent after every call. There is exactly one writer (the
// active form), so no locking.
package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aprasetya/kasir/internal/pricing"
	"github.com/aprasetya/kasir/internal/sales"
)

// BufferState tags what the staging buffer is doing. A pair of booleans
// would allow add-and-edit at once; the tagged state cannot.
type BufferState int

const (
	BufferIdle BufferState = iota
	BufferAdding
	BufferEditing
)

type Session struct {
	Draft sales.Transaction

	state        BufferState
	buffer       sales.LineItem
	originalCode string // product code of the line under edit
}

// New starts a blank draft dated today.
func New() *Session {
	return &Session{
		Draft: sales.Transaction{Date: time.Now()},
	}
}

// Hydrate starts a session from a fetched record for edit mode.
func Hydrate(tx sales.Transaction) *Session {
	return &Session{Draft: tx}
}

func (s *Session) State() BufferState { return s.state }

// Buffer returns the line item currently staged. Meaningless in Idle.
func (s *Session) Buffer() sales.LineItem { return s.buffer }

// Editing reports whether the committed buffer will replace an existing
// line rather than append a new one.
func (s *Session) Editing() bool { return s.state == BufferEditing }

// StartAdd opens the buffer with a blank template (quantity 1, no
// discount). An already open buffer is discarded first.
func (s *Session) StartAdd() {
	s.buffer = sales.LineItem{Quantity: 1}
	s.originalCode = ""
	s.state = BufferAdding
}

// StartEdit loads the line with the given product code into the buffer.
// Returns false and stays Idle when no line matches. An already open
// buffer is discarded first.
func (s *Session) StartEdit(productCode string) bool {
	for _, it := range s.Draft.Items {
		if it.ProductCode == productCode {
			s.buffer = it
			s.originalCode = productCode
			s.state = BufferEditing

			return true
		}
	}

	s.state = BufferIdle

	return false
}

// Cancel discards the buffer; the committed items are untouched.
func (s *Session) Cancel() {
	s.buffer = sales.LineItem{}
	s.originalCode = ""
	s.state = BufferIdle
}

// SetProduct copies the catalog entry into the buffer and recomputes the
// derived fields against the new unit price. The buffer's server row id
// survives, so an edited line still updates its existing row on submit.
func (s *Session) SetProduct(p sales.Product) {
	item := pricing.SelectProduct(p)
	item.ID = s.buffer.ID
	item.Quantity = s.buffer.Quantity
	item.DiscountPercent = s.buffer.DiscountPercent

	s.buffer = pricing.Recalculate(item)
}

func (s *Session) SetQuantity(qty int64) {
	s.buffer.Quantity = qty
	s.buffer = pricing.Recalculate(s.buffer)
}

func (s *Session) SetDiscountPercent(pct decimal.Decimal) {
	s.buffer.DiscountPercent = pct
	s.buffer = pricing.Recalculate(s.buffer)
}

// Commit merges the buffer into the draft's items: append when adding,
// replace in place when editing. Subtotal and amount payable are
// recomputed before the buffer closes.
func (s *Session) Commit() {
	switch s.state {
	case BufferAdding:
		s.Draft.Items, s.Draft.Subtotal = pricing.AddLine(s.Draft.Items, s.buffer)
	case BufferEditing:
		s.Draft.Items, s.Draft.Subtotal = pricing.ReplaceLine(s.Draft.Items, s.originalCode, s.buffer)
	case BufferIdle:
		return
	}

	s.Draft.ItemCount = len(s.Draft.Items)
	s.recomputePayable()
	s.Cancel()
}

// RemoveItem drops the line with the given product code. Unknown codes
// are a silent no-op, as in the engine.
func (s *Session) RemoveItem(productCode string) {
	s.Draft.Items, s.Draft.Subtotal = pricing.RemoveLine(s.Draft.Items, productCode)
	s.Draft.ItemCount = len(s.Draft.Items)
	s.recomputePayable()
}

func (s *Session) SetHeaderDiscount(d decimal.Decimal) {
	s.Draft.HeaderDiscount = d
	s.recomputePayable()
}

func (s *Session) SetShippingFee(fee decimal.Decimal) {
	s.Draft.ShippingFee = fee
	s.recomputePayable()
}

func (s *Session) SetCustomer(c sales.Customer) {
	s.Draft.CustomerID = c.ID
	s.Draft.CustomerName = c.Name
	s.Draft.CustomerPhone = c.Phone
}

func (s *Session) SetDate(t time.Time) {
	s.Draft.Date = t
}

// Validate is the submit gate: a draft needs a customer and at least one
// line item before it may go to the store.
func (s *Session) Validate() error {
	if len(s.Draft.Items) == 0 {
		return sales.ErrNoItems
	}

	if s.Draft.CustomerID == 0 {
		return sales.ErrNoCustomer
	}

	return nil
}

func (s *Session) recomputePayable() {
	s.Draft.AmountPayable = pricing.AmountPayable(s.Draft.Subtotal, s.Draft.HeaderDiscount, s.Draft.ShippingFee)
}
