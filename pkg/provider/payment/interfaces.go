package payment

import (
	"context"
)

// Gateway is an interface for an order-based payment provider.
// Implementations never retry; a repeated create or capture is a new call
// and is only deduplicated when it reuses the same idempotency key.
type Gateway interface {
	CreateOrder(
		ctx context.Context,
		params *CreateOrderParams,
	) (*Order, error)

	CaptureOrder(
		ctx context.Context,
		orderID string,
		idempotencyKey string,
	) (*CaptureResult, error)

	GetOrder(
		ctx context.Context,
		orderID string,
	) (*Order, error)
}
