// Package mocks holds testify mocks of the service interfaces.
package mocks

import (
	"context"

	"github.com/amirasaad/paygate/pkg/provider/payment"
	"github.com/stretchr/testify/mock"
)

// Gateway is a mock of payment.Gateway.
type Gateway struct {
	mock.Mock
}

var _ payment.Gateway = (*Gateway)(nil)

// NewGateway creates a Gateway mock whose expectations are asserted on
// test cleanup.
func NewGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *Gateway {
	m := &Gateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *Gateway) CreateOrder(ctx context.Context, params *payment.CreateOrderParams) (*payment.Order, error) {
	args := m.Called(ctx, params)
	order, _ := args.Get(0).(*payment.Order)
	return order, args.Error(1)
}

func (m *Gateway) CaptureOrder(ctx context.Context, orderID string, idempotencyKey string) (*payment.CaptureResult, error) {
	args := m.Called(ctx, orderID, idempotencyKey)
	res, _ := args.Get(0).(*payment.CaptureResult)
	return res, args.Error(1)
}

func (m *Gateway) GetOrder(ctx context.Context, orderID string) (*payment.Order, error) {
	args := m.Called(ctx, orderID)
	order, _ := args.Get(0).(*payment.Order)
	return order, args.Error(1)
}
