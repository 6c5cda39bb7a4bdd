package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aprasetya/kasir/internal/sales"
)

func draft() *sales.Transaction {
	return &sales.Transaction{
		Date:         time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
		CustomerID:   3,
		CustomerName: "Budi",
		Items: []sales.LineItem{
			{
				ProductID:           1,
				ProductCode:         "BRG-1",
				ProductName:         "Kopi",
				UnitPrice:           decimal.NewFromInt(100000),
				Quantity:            2,
				DiscountPercent:     decimal.NewFromInt(10),
				DiscountAmount:      decimal.NewFromInt(10000),
				DiscountedUnitPrice: decimal.NewFromInt(90000),
				LineTotal:           decimal.NewFromInt(180000),
			},
		},
		Subtotal:      decimal.NewFromInt(180000),
		AmountPayable: decimal.NewFromInt(180000),
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		tx        *sales.Transaction
		setupMock func(m *sales.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			tx:   draft(),
			setupMock: func(m *sales.MockRepository) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *sales.Transaction) error {
						tx.ID = 42
						tx.Number = "TRX-0042"
						return nil
					})
			},
		},
		{
			// The submit gate fires before any network call.
			name: "EmptyItems",
			tx: &sales.Transaction{
				CustomerID: 3,
				Date:       time.Now(),
			},
			wantErr: sales.ErrNoItems,
		},
		{
			name: "NoCustomer",
			tx: func() *sales.Transaction {
				tx := draft()
				tx.CustomerID = 0
				return tx
			}(),
			wantErr: sales.ErrNoCustomer,
		},
		{
			name: "StoreError",
			tx:   draft(),
			setupMock: func(m *sales.MockRepository) {
				m.EXPECT().
					CreateSale(gomock.Any(), gomock.Any()).
					Return(errors.New("connection refused"))
			},
			wantErr: errors.New("creating sale"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := sales.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := sales.NewService(repo)
			err := svc.Create(context.Background(), tt.tx)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, int64(42), tt.tx.ID)
				assert.Equal(t, "TRX-0042", tt.tx.Number)

				return
			}

			require.Error(t, err)

			if errors.Is(tt.wantErr, sales.ErrNoItems) || errors.Is(tt.wantErr, sales.ErrNoCustomer) {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.Contains(t, err.Error(), tt.wantErr.Error())
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sales.NewMockRepository(ctrl)
	svc := sales.NewService(repo)

	t.Run("Success", func(t *testing.T) {
		tx := draft()
		tx.ID = 9

		repo.EXPECT().UpdateSale(gomock.Any(), tx).Return(nil)

		assert.NoError(t, svc.Update(context.Background(), tx))
	})

	t.Run("EmptyItemsRejectedBeforeWire", func(t *testing.T) {
		tx := draft()
		tx.Items = nil

		// No UpdateSale expectation: the repo must not be touched.
		assert.ErrorIs(t, svc.Update(context.Background(), tx), sales.ErrNoItems)
	})
}

func TestService_List(t *testing.T) {
	type testCase struct {
		name      string
		filter    sales.ListFilter
		setupMock func(m *sales.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "All",
			filter: sales.ListFilter{},
			setupMock: func(m *sales.MockRepository) {
				m.EXPECT().
					ListSales(gomock.Any(), sales.ListFilter{}).
					Return([]*sales.Transaction{
						{ID: 1, Number: "TRX-0001"},
						{ID: 2, Number: "TRX-0002"},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name:   "SearchByCustomerName",
			filter: sales.ListFilter{Search: "budi"},
			setupMock: func(m *sales.MockRepository) {
				m.EXPECT().
					ListSales(gomock.Any(), sales.ListFilter{Search: "budi"}).
					Return([]*sales.Transaction{{ID: 1, CustomerName: "Budi"}}, nil)
			},
			wantLen: 1,
		},
		{
			name:   "StoreError",
			filter: sales.ListFilter{},
			setupMock: func(m *sales.MockRepository) {
				m.EXPECT().
					ListSales(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("boom"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := sales.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := sales.NewService(repo)
			got, err := svc.List(context.Background(), tt.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sales.NewMockRepository(ctrl)
	repo.EXPECT().GetSale(gomock.Any(), int64(77)).Return(nil, sales.ErrNotFound)

	svc := sales.NewService(repo)
	_, err := svc.Get(context.Background(), 77)

	assert.ErrorIs(t, err, sales.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := sales.NewMockRepository(ctrl)
	repo.EXPECT().DeleteSale(gomock.Any(), int64(5)).Return(nil)

	svc := sales.NewService(repo)

	assert.NoError(t, svc.Delete(context.Background(), 5))
}
