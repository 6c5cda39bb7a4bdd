// Package client talks to the remote kasir API, which owns persistence.
// It implements sales.Repository over plain JSON/HTTP: the store is
// authoritative and this side never caches or retries.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aprasetya/kasir/internal/sales"
)

func init() {
	// The API expects bare JSON numbers for money fields, not the quoted
	// strings shopspring emits by default.
	decimal.MarshalJSONWithoutQuotes = true
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// dataEnvelope matches the API's `{"data": ...}` response wrapper.
type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type saleDetailDTO struct {
	ID           int64           `json:"id,omitempty"`
	BarangID     int64           `json:"barang_id"`
	BarangKode   string          `json:"barang_kode,omitempty"`
	BarangNama   string          `json:"barang_nama,omitempty"`
	HargaBandrol decimal.Decimal `json:"harga_bandrol"`
	Qty          int64           `json:"qty"`
	DiskonPct    decimal.Decimal `json:"diskon_pct"`
	DiskonNilai  decimal.Decimal `json:"diskon_nilai"`
	HargaDiskon  decimal.Decimal `json:"harga_diskon"`
	Total        decimal.Decimal `json:"total"`
}

type saleDTO struct {
	ID          int64           `json:"id,omitempty"`
	Kode        string          `json:"kode,omitempty"`
	NoTransaksi string          `json:"no_transaksi,omitempty"`
	Tgl         string          `json:"tgl"`
	CustID      int64           `json:"cust_id"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Diskon      decimal.Decimal `json:"diskon"`
	Ongkir      decimal.Decimal `json:"ongkir"`
	TotalBayar  decimal.Decimal `json:"total_bayar"`

	Customer *struct {
		Nama string `json:"nama"`
		Telp string `json:"telp"`
	} `json:"customer,omitempty"`

	Count *struct {
		SalesDetails int `json:"sales_details"`
	} `json:"_count,omitempty"`

	SalesDetails []saleDetailDTO `json:"sales_details,omitempty"`
}

type productDTO struct {
	ID    int64           `json:"id"`
	Kode  string          `json:"kode"`
	Nama  string          `json:"nama"`
	Harga decimal.Decimal `json:"harga"`
}

type customerDTO struct {
	ID   int64  `json:"id"`
	Kode string `json:"kode"`
	Nama string `json:"nama"`
	Telp string `json:"telp"`
}

func (c *Client) ListSales(ctx context.Context, filter sales.ListFilter) ([]*sales.Transaction, error) {
	endpoint := c.baseURL + "/sales"
	if filter.Search != "" {
		endpoint += "?search=" + url.QueryEscape(filter.Search)
	}

	var env dataEnvelope[[]saleDTO]
	if err := c.get(ctx, endpoint, &env); err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}

	txs := make([]*sales.Transaction, len(env.Data))
	for i, dto := range env.Data {
		tx, err := toTransaction(dto)
		if err != nil {
			return nil, fmt.Errorf("listing sales: %w", err)
		}

		txs[i] = tx
	}

	return txs, nil
}

func (c *Client) GetSale(ctx context.Context, id int64) (*sales.Transaction, error) {
	var env dataEnvelope[saleDTO]
	if err := c.get(ctx, c.baseURL+"/sales/"+strconv.FormatInt(id, 10), &env); err != nil {
		return nil, fmt.Errorf("getting sale %d: %w", id, err)
	}

	tx, err := toTransaction(env.Data)
	if err != nil {
		return nil, fmt.Errorf("getting sale %d: %w", id, err)
	}

	return tx, nil
}

func (c *Client) CreateSale(ctx context.Context, tx *sales.Transaction) error {
	var env dataEnvelope[saleDTO]
	if err := c.send(ctx, http.MethodPost, c.baseURL+"/sales", toDTO(tx), &env); err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	tx.ID = env.Data.ID
	tx.Number = env.Data.NoTransaksi

	return nil
}

func (c *Client) UpdateSale(ctx context.Context, tx *sales.Transaction) error {
	endpoint := c.baseURL + "/sales/" + strconv.FormatInt(tx.ID, 10)
	if err := c.send(ctx, http.MethodPut, endpoint, toDTO(tx), nil); err != nil {
		return fmt.Errorf("updating sale %d: %w", tx.ID, err)
	}

	return nil
}

func (c *Client) DeleteSale(ctx context.Context, id int64) error {
	endpoint := c.baseURL + "/sales/" + strconv.FormatInt(id, 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("deleting sale %d: %w", id, err)
	}

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("deleting sale %d: %w", id, err)
	}

	return nil
}

func (c *Client) ListProducts(ctx context.Context) ([]sales.Product, error) {
	var env dataEnvelope[[]productDTO]
	if err := c.get(ctx, c.baseURL+"/barang", &env); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make([]sales.Product, len(env.Data))
	for i, dto := range env.Data {
		products[i] = sales.Product{
			ID:        dto.ID,
			Code:      dto.Kode,
			Name:      dto.Nama,
			UnitPrice: dto.Harga,
		}
	}

	return products, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]sales.Customer, error) {
	var env dataEnvelope[[]customerDTO]
	if err := c.get(ctx, c.baseURL+"/customers", &env); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}

	customers := make([]sales.Customer, len(env.Data))
	for i, dto := range env.Data {
		customers[i] = sales.Customer{
			ID:    dto.ID,
			Code:  dto.Kode,
			Name:  dto.Nama,
			Phone: dto.Telp,
		}
	}

	return customers, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return sales.ErrNotFound
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, req.URL.Path)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func toTransaction(dto saleDTO) (*sales.Transaction, error) {
	date, err := parseDate(dto.Tgl)
	if err != nil {
		return nil, fmt.Errorf("parsing tgl %q: %w", dto.Tgl, err)
	}

	tx := &sales.Transaction{
		ID:             dto.ID,
		Number:         dto.NoTransaksi,
		Date:           date,
		CustomerID:     dto.CustID,
		Subtotal:       dto.Subtotal,
		HeaderDiscount: dto.Diskon,
		ShippingFee:    dto.Ongkir,
		AmountPayable:  dto.TotalBayar,
	}

	if dto.Customer != nil {
		tx.CustomerName = dto.Customer.Nama
		tx.CustomerPhone = dto.Customer.Telp
	}

	if dto.Count != nil {
		tx.ItemCount = dto.Count.SalesDetails
	}

	if len(dto.SalesDetails) > 0 {
		tx.Items = make([]sales.LineItem, len(dto.SalesDetails))
		for i, d := range dto.SalesDetails {
			tx.Items[i] = sales.LineItem{
				ID:                  d.ID,
				ProductID:           d.BarangID,
				ProductCode:         d.BarangKode,
				ProductName:         d.BarangNama,
				UnitPrice:           d.HargaBandrol,
				Quantity:            d.Qty,
				DiscountPercent:     d.DiskonPct,
				DiscountAmount:      d.DiskonNilai,
				DiscountedUnitPrice: d.HargaDiskon,
				LineTotal:           d.Total,
			}
		}

		tx.ItemCount = len(tx.Items)
	}

	return tx, nil
}

func toDTO(tx *sales.Transaction) saleDTO {
	dto := saleDTO{
		Tgl:        tx.Date.Format(time.RFC3339),
		CustID:     tx.CustomerID,
		Subtotal:   tx.Subtotal,
		Diskon:     tx.HeaderDiscount,
		Ongkir:     tx.ShippingFee,
		TotalBayar: tx.AmountPayable,
	}

	dto.SalesDetails = make([]saleDetailDTO, len(tx.Items))
	for i, it := range tx.Items {
		dto.SalesDetails[i] = saleDetailDTO{
			ID:           it.ID,
			BarangID:     it.ProductID,
			HargaBandrol: it.UnitPrice,
			Qty:          it.Quantity,
			DiskonPct:    it.DiscountPercent,
			DiskonNilai:  it.DiscountAmount,
			HargaDiskon:  it.DiscountedUnitPrice,
			Total:        it.LineTotal,
		}
	}

	return dto
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	return time.Parse(time.DateOnly, s)
}
