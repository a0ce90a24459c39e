// Package checkout orchestrates pricing and the payment gateway for the
// HTTP entry point.
package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/pricing"
	"github.com/amirasaad/paygate/pkg/provider/payment"
	"github.com/shopspring/decimal"
)

// Outcome is the result of executing a gateway request. Exactly one field
// is set, matching the request variant.
type Outcome struct {
	Order   *payment.Order
	Capture *payment.CaptureResult
}

// Quote is a priced order with display strings.
type Quote struct {
	*pricing.Result
	Formatted Formatted `json:"formatted"`
}

// Formatted holds the display form of every amount in a quote.
type Formatted struct {
	Subtotal    string `json:"subtotal"`
	ServiceFee  string `json:"serviceFee"`
	DeliveryFee string `json:"deliveryFee"`
	Discount    string `json:"discountAmount"`
	Total       string `json:"total"`
}

// Service provides high-level checkout operations.
type Service struct {
	engine  *pricing.Engine
	gateway payment.Gateway
	logger  *slog.Logger
}

// New creates a new checkout service.
func New(engine *pricing.Engine, gateway payment.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:  engine,
		gateway: gateway,
		logger:  logger.With("component", "checkout"),
	}
}

// Execute runs a gateway request.
func (s *Service) Execute(ctx context.Context, req payment.Request) (*Outcome, error) {
	switch r := req.(type) {
	case payment.CreateOrderRequest:
		order, err := s.CreateOrder(ctx, r.Params)
		if err != nil {
			return nil, err
		}
		return &Outcome{Order: order}, nil
	case payment.CaptureOrderRequest:
		res, err := s.gateway.CaptureOrder(ctx, r.OrderID, r.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		return &Outcome{Capture: res}, nil
	case payment.OrderStatusRequest:
		order, err := s.gateway.GetOrder(ctx, r.OrderID)
		if err != nil {
			return nil, err
		}
		return &Outcome{Order: order}, nil
	case nil:
		return nil, domain.ValidationErrorf("missing request")
	default:
		return nil, domain.ValidationErrorf("unsupported action %q", req.Action())
	}
}

// CreateOrder checks the currency's minimum order and creates the order.
func (s *Service) CreateOrder(ctx context.Context, params payment.CreateOrderParams) (*payment.Order, error) {
	table := s.engine.Table()
	cur, err := table.GatewayCurrency(params.Currency)
	if err != nil {
		return nil, err
	}
	if err := table.CheckMinimumOrder(params.Amount, string(cur.Code)); err != nil {
		s.logger.Warn("Order below minimum", "amount", params.Amount, "currency", cur.Code)
		return nil, err
	}
	params.Currency = string(cur.Code)
	return s.gateway.CreateOrder(ctx, &params)
}

// Quote prices an order.
func (s *Service) Quote(
	subtotal decimal.Decimal,
	location string,
	currencyCode string,
	discount decimal.Decimal,
) (*Quote, error) {
	res, err := s.engine.OrderTotal(subtotal, location, currencyCode, discount)
	if err != nil {
		return nil, fmt.Errorf("failed to price order: %w", err)
	}
	code := string(res.Currency)
	return &Quote{
		Result: res,
		Formatted: Formatted{
			Subtotal:    s.engine.FormatCurrency(res.Subtotal, code),
			ServiceFee:  s.engine.FormatCurrency(res.ServiceFee, code),
			DeliveryFee: s.engine.FormatCurrency(res.DeliveryFee, code),
			Discount:    s.engine.FormatCurrency(res.Discount, code),
			Total:       s.engine.FormatCurrency(res.Total, code),
		},
	}, nil
}
