package checkout

import (
	"strings"

	"github.com/amirasaad/paygate/pkg/provider/payment"
	"github.com/shopspring/decimal"
)

// ActionCalculateTotal prices an order without touching the gateway.
const ActionCalculateTotal payment.Action = "calculate-total"

// IdempotencyKeyHeader lets callers pin the provider idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

//revive:disable

// actionEnvelope is decoded first to pick the request variant.
type actionEnvelope struct {
	Action payment.Action `json:"action"`
}

// CreateOrderRequest represents the request body for the create-order action.
type CreateOrderRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required,gt=0,lte=1000000000000000"`
	Currency       string          `json:"currency" validate:"required,len=3,alpha"`
	Description    string          `json:"description" validate:"max=127"`
	CustomerEmail  string          `json:"customerEmail" validate:"required,email"`
	CustomerName   string          `json:"customerName" validate:"max=140"`
	UserID         string          `json:"userId" validate:"max=127"`
	IdempotencyKey string          `json:"idempotencyKey" validate:"max=108"`
}

// CaptureOrderRequest represents the request body for the capture-order action.
type CaptureOrderRequest struct {
	OrderID        string `json:"orderId" validate:"required"`
	IdempotencyKey string `json:"idempotencyKey" validate:"max=108"`
}

// OrderStatusRequest represents the request body for the order-status action.
type OrderStatusRequest struct {
	OrderID string `json:"orderId" query:"orderId" validate:"required"`
}

// CalculateTotalRequest represents the request body for the calculate-total action.
type CalculateTotalRequest struct {
	Subtotal decimal.Decimal `json:"subtotal" validate:"gte=0,lte=1000000000000000"`
	Location string          `json:"location" validate:"max=256"`
	Currency string          `json:"currency" validate:"required,len=3,alpha"`
	Discount decimal.Decimal `json:"discountAmount" validate:"gte=0,lte=1000000000000000"`
}

//revive:enable

func (r *CreateOrderRequest) toRequest(key string) payment.CreateOrderRequest {
	return payment.CreateOrderRequest{Params: payment.CreateOrderParams{
		Amount:         r.Amount,
		Currency:       strings.ToUpper(r.Currency),
		Description:    r.Description,
		CustomerEmail:  r.CustomerEmail,
		CustomerName:   r.CustomerName,
		UserID:         r.UserID,
		IdempotencyKey: key,
	}}
}

func (r *CaptureOrderRequest) toRequest(key string) payment.CaptureOrderRequest {
	return payment.CaptureOrderRequest{OrderID: r.OrderID, IdempotencyKey: key}
}

func (r *OrderStatusRequest) toRequest() payment.OrderStatusRequest {
	return payment.OrderStatusRequest{OrderID: r.OrderID}
}
