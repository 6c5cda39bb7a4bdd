package sales

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=sales
type Repository interface {
	CreateSale(ctx context.Context, tx *Transaction) error
	GetSale(ctx context.Context, id int64) (*Transaction, error)
	UpdateSale(ctx context.Context, tx *Transaction) error
	DeleteSale(ctx context.Context, id int64) error
	ListSales(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	ListProducts(ctx context.Context) ([]Product, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ErrNoCustomer rejects a submit without a customer selection.
var ErrNoCustomer = errors.New("sale must have a customer")

// Create submits a finished draft to the store. The draft is validated
// before any network call so a rejected submit leaves it intact for the
// user to fix and resubmit.
func (s *Service) Create(ctx context.Context, tx *Transaction) error {
	if err := validateSubmit(tx); err != nil {
		return err
	}

	if err := s.repo.CreateSale(ctx, tx); err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	return nil
}

// Update replaces a persisted sale with the edited draft.
func (s *Service) Update(ctx context.Context, tx *Transaction) error {
	if err := validateSubmit(tx); err != nil {
		return err
	}

	if err := s.repo.UpdateSale(ctx, tx); err != nil {
		return fmt.Errorf("updating sale: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	return s.repo.GetSale(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteSale(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListSales(ctx, filter)
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) Customers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func validateSubmit(tx *Transaction) error {
	if len(tx.Items) == 0 {
		return ErrNoItems
	}

	if tx.CustomerID == 0 {
		return ErrNoCustomer
	}

	return nil
}
