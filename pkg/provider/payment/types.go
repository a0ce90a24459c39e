package payment

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OrderStatus is the provider's order state. The gateway only observes it.
type OrderStatus string

const (
	// OrderCreated indicates the order exists and waits for payer approval.
	OrderCreated OrderStatus = "CREATED"
	// OrderPayerActionRequired indicates the payer has more steps to complete.
	OrderPayerActionRequired OrderStatus = "PAYER_ACTION_REQUIRED"
	// OrderApproved indicates the payer approved the order; it can be captured.
	OrderApproved OrderStatus = "APPROVED"
	// OrderCompleted indicates the order was captured.
	OrderCompleted OrderStatus = "COMPLETED"
	// OrderVoided indicates the order was voided.
	OrderVoided OrderStatus = "VOIDED"
)

// CreateOrderParams holds the parameters for the CreateOrder method.
type CreateOrderParams struct {
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerEmail string
	CustomerName  string
	// UserID is optional and forwarded as the provider's custom id.
	UserID string
	// IdempotencyKey is generated when empty.
	IdempotencyKey string
}

// Order is a provider order resource.
type Order struct {
	ID          string          `json:"id"`
	Status      OrderStatus     `json:"status"`
	ApprovalURL string          `json:"approvalUrl,omitempty"`
	CaptureID   string          `json:"captureId,omitempty"`
	ReferenceID string          `json:"referenceId,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
}

// CaptureResult is the outcome of a successful capture.
type CaptureResult struct {
	OrderID       string          `json:"orderId"`
	TransactionID string          `json:"transactionId"`
	Status        OrderStatus     `json:"status"`
	Raw           json.RawMessage `json:"raw,omitempty"`
}

// Action names an inbound gateway request.
type Action string

const (
	ActionCreateOrder  Action = "create-order"
	ActionCaptureOrder Action = "capture-order"
	ActionOrderStatus  Action = "order-status"
)

// Request is one of CreateOrderRequest, CaptureOrderRequest or
// OrderStatusRequest.
type Request interface {
	Action() Action
	isRequest()
}

// CreateOrderRequest asks the gateway to create an order.
type CreateOrderRequest struct {
	Params CreateOrderParams
}

// CaptureOrderRequest asks the gateway to capture an approved order.
type CaptureOrderRequest struct {
	OrderID        string
	IdempotencyKey string
}

// OrderStatusRequest asks the gateway for an order's current state.
type OrderStatusRequest struct {
	OrderID string
}

func (CreateOrderRequest) Action() Action  { return ActionCreateOrder }
func (CaptureOrderRequest) Action() Action { return ActionCaptureOrder }
func (OrderStatusRequest) Action() Action  { return ActionOrderStatus }

func (CreateOrderRequest) isRequest()  {}
func (CaptureOrderRequest) isRequest() {}
func (OrderStatusRequest) isRequest()  {}
