package checkout

import (
	"context"
	"log/slog"
	"os"
	"testing"

	fixtures "github.com/amirasaad/paygate/internal/fixtures/currency"
	"github.com/amirasaad/paygate/internal/fixtures/mocks"
	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/pricing"
	"github.com/amirasaad/paygate/pkg/provider/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newService(t *testing.T) (*Service, *mocks.Gateway) {
	t.Helper()
	table, err := fixtures.LoadTable("", "")
	require.NoError(t, err)
	gw := mocks.NewGateway(t)
	return New(pricing.New(table), gw, testLogger), gw
}

func TestService_CreateOrder(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		wantErr  error
		callsGW  bool
	}{
		{"valid order", "10", "usd", nil, true},
		{"below minimum", "0.50", "USD", domain.ErrBelowMinimum, false},
		{"zero decimal minimum", "99", "JPY", domain.ErrBelowMinimum, false},
		{"not a gateway currency", "50000", "NGN", domain.ErrUnsupportedCurrency, false},
		{"unknown currency", "10", "XYZ", domain.ErrUnsupportedCurrency, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, gw := newService(t)
			if tt.callsGW {
				gw.On("CreateOrder", mock.Anything, mock.MatchedBy(func(p *payment.CreateOrderParams) bool {
					return p.Currency == "USD" && p.Amount.Equal(decimal.NewFromInt(10))
				})).Return(&payment.Order{ID: "O-1", ApprovalURL: "https://approve"}, nil).Once()
			}

			order, err := svc.CreateOrder(context.Background(), payment.CreateOrderParams{
				Amount:        decimal.RequireFromString(tt.amount),
				Currency:      tt.currency,
				CustomerEmail: "ada@example.com",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "O-1", order.ID)
		})
	}
}

func TestService_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("capture", func(t *testing.T) {
		svc, gw := newService(t)
		gw.On("CaptureOrder", mock.Anything, "O-1", "key-1").
			Return(&payment.CaptureResult{OrderID: "O-1", TransactionID: "TX-1"}, nil).Once()

		out, err := svc.Execute(ctx, payment.CaptureOrderRequest{OrderID: "O-1", IdempotencyKey: "key-1"})
		require.NoError(t, err)
		require.NotNil(t, out.Capture)
		assert.Nil(t, out.Order)
		assert.Equal(t, "TX-1", out.Capture.TransactionID)
	})

	t.Run("status", func(t *testing.T) {
		svc, gw := newService(t)
		gw.On("GetOrder", mock.Anything, "O-1").
			Return(&payment.Order{ID: "O-1", Status: payment.OrderApproved}, nil).Once()

		out, err := svc.Execute(ctx, payment.OrderStatusRequest{OrderID: "O-1"})
		require.NoError(t, err)
		assert.Equal(t, payment.OrderApproved, out.Order.Status)
	})

	t.Run("create", func(t *testing.T) {
		svc, gw := newService(t)
		gw.On("CreateOrder", mock.Anything, mock.Anything).
			Return(&payment.Order{ID: "O-2"}, nil).Once()

		out, err := svc.Execute(ctx, payment.CreateOrderRequest{Params: payment.CreateOrderParams{
			Amount:   decimal.NewFromInt(20),
			Currency: "EUR",
		}})
		require.NoError(t, err)
		assert.Equal(t, "O-2", out.Order.ID)
	})

	t.Run("gateway error", func(t *testing.T) {
		svc, gw := newService(t)
		upErr := &domain.UpstreamError{Op: "get order", Status: 404}
		gw.On("GetOrder", mock.Anything, "O-404").Return(nil, upErr).Once()

		_, err := svc.Execute(ctx, payment.OrderStatusRequest{OrderID: "O-404"})
		assert.ErrorIs(t, err, domain.ErrUpstream)
	})

	t.Run("nil request", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Execute(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestService_Quote(t *testing.T) {
	svc, _ := newService(t)

	q, err := svc.Quote(decimal.NewFromInt(50000), "Lagos", "ngn", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "54500", q.Total.String())
	assert.Equal(t, "₦54,500", q.Formatted.Total)
	assert.Equal(t, "₦1,000", q.Formatted.ServiceFee)
	assert.Equal(t, "₦3,500", q.Formatted.DeliveryFee)

	_, err = svc.Quote(decimal.NewFromInt(10), "Lagos", "NGN", decimal.NewFromInt(20))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
