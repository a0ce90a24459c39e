package paypal

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amirasaad/paygate/pkg/currency"
	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/provider/payment"
	"github.com/oklog/ulid/v2"
)

// Gateway implements payment.Gateway against the Orders v2 API.
type Gateway struct {
	baseURL string
	cfg     Config
	client  *http.Client
	tokens  TokenProvider
	table   *currency.Table
	logger  *slog.Logger
	newKey  func() string
}

var _ payment.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway. Amounts are formatted and currencies
// checked with table.
func NewGateway(
	cfg Config,
	tokens TokenProvider,
	table *currency.Table,
	logger *slog.Logger,
) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		baseURL: BaseURLFor("", cfg.BaseURL),
		cfg:     cfg,
		client:  cfg.httpClient(),
		tokens:  tokens,
		table:   table,
		logger:  logger.With("component", "paypal.gateway"),
		newKey:  NewIdempotencyKey,
	}
}

// NewIdempotencyKey returns a time-ordered random key.
func NewIdempotencyKey() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// CreateOrder creates a CAPTURE intent order and returns it with its
// approval URL.
func (g *Gateway) CreateOrder(
	ctx context.Context,
	params *payment.CreateOrderParams,
) (*payment.Order, error) {
	if params == nil {
		return nil, domain.ValidationErrorf("missing order parameters")
	}
	if !params.Amount.IsPositive() {
		return nil, domain.ValidationErrorf("amount must be greater than zero")
	}
	cur, err := g.table.GatewayCurrency(params.Currency)
	if err != nil {
		return nil, err
	}
	value, err := g.table.FormatForGateway(params.Amount, string(cur.Code))
	if err != nil {
		return nil, err
	}

	key := params.IdempotencyKey
	if key == "" {
		key = g.newKey()
	}

	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: key,
			Description: params.Description,
			CustomID:    params.UserID,
			Amount:      &amount{CurrencyCode: string(cur.Code), Value: value},
		}},
		PaymentSource: &paymentSource{PayPal: &paypalSource{
			EmailAddress: params.CustomerEmail,
			Name:         splitName(params.CustomerName),
			ExperienceContext: &experienceContext{
				BrandName:          g.cfg.BrandName,
				ReturnURL:          g.cfg.ReturnURL,
				CancelURL:          g.cfg.CancelURL,
				UserAction:         "PAY_NOW",
				ShippingPreference: "NO_SHIPPING",
			},
		}},
	}

	log := g.logger.With("op", "create_order", "idempotency_key", key, "currency", cur.Code)
	log.Info("Creating order", "amount", value)

	var resp orderResponse
	raw, err := g.do(ctx, "create order", http.MethodPost, ordersPath, key, body, &resp)
	if err != nil {
		log.Error("Create order failed", "error", err)
		return nil, err
	}

	order := toOrder(&resp, raw)
	if order.ApprovalURL == "" {
		log.Error("Created order has no approval link", "order_id", resp.ID)
		return nil, fmt.Errorf("%w: order %s", domain.ErrMissingApprovalURL, resp.ID)
	}
	log.Info("Order created", "order_id", order.ID, "status", order.Status)
	return order, nil
}

// CaptureOrder captures an approved order. An empty idempotencyKey gets a
// fresh one, distinct from the key used to create the order.
func (g *Gateway) CaptureOrder(
	ctx context.Context,
	orderID string,
	idempotencyKey string,
) (*payment.CaptureResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ValidationErrorf("orderId is required")
	}
	key := idempotencyKey
	if key == "" {
		key = g.newKey()
	}

	log := g.logger.With("op", "capture_order", "order_id", orderID, "idempotency_key", key)
	log.Info("Capturing order")

	var resp orderResponse
	path := ordersPath + "/" + url.PathEscape(orderID) + "/capture"
	raw, err := g.do(ctx, "capture order", http.MethodPost, path, key, struct{}{}, &resp)
	if err != nil {
		log.Error("Capture failed", "error", err)
		return nil, err
	}

	txID := resp.captureID()
	if txID == "" {
		// the provider accepted the capture; money may have moved
		log.Error("Capture response has no capture id", "status", resp.Status)
		return nil, &CaptureIncompleteError{OrderID: orderID, Raw: raw}
	}
	log.Info("Order captured", "transaction_id", txID, "status", resp.Status)
	return &payment.CaptureResult{
		OrderID:       resp.ID,
		TransactionID: txID,
		Status:        payment.OrderStatus(resp.Status),
		Raw:           raw,
	}, nil
}

// GetOrder fetches an order.
func (g *Gateway) GetOrder(ctx context.Context, orderID string) (*payment.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ValidationErrorf("orderId is required")
	}
	var resp orderResponse
	raw, err := g.do(ctx, "get order", http.MethodGet, ordersPath+"/"+url.PathEscape(orderID), "", nil, &resp)
	if err != nil {
		g.logger.Error("Get order failed", "order_id", orderID, "error", err)
		return nil, err
	}
	return toOrder(&resp, raw), nil
}

// CaptureIncompleteError is returned when a capture call succeeded but
// carried no capture record. Raw holds the provider response for
// reconciliation.
type CaptureIncompleteError struct {
	OrderID string
	Raw     json.RawMessage
}

func (e *CaptureIncompleteError) Error() string {
	return fmt.Sprintf("%s: order %s", domain.ErrCaptureIncomplete, e.OrderID)
}

func (e *CaptureIncompleteError) Unwrap() error { return domain.ErrCaptureIncomplete }

// do sends an authenticated JSON request and decodes a 2xx body into out.
func (g *Gateway) do(
	ctx context.Context,
	op string,
	method string,
	path string,
	idempotencyKey string,
	in any,
	out any,
) (json.RawMessage, error) {
	tok, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}
	if idempotencyKey != "" {
		req.Header.Set("PayPal-Request-Id", idempotencyKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrTransport, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: failed to read response: %w", op, domain.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusUnauthorized {
			g.tokens.Invalidate()
		}
		var apiErr apiError
		_ = json.Unmarshal(raw, &apiErr)
		return nil, &domain.UpstreamError{
			Op:      op,
			Status:  resp.StatusCode,
			Body:    string(raw),
			Message: apiErr.String(),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return raw, nil
}

func toOrder(resp *orderResponse, raw json.RawMessage) *payment.Order {
	return &payment.Order{
		ID:          resp.ID,
		Status:      payment.OrderStatus(resp.Status),
		ApprovalURL: resp.approvalURL(),
		CaptureID:   resp.captureID(),
		ReferenceID: resp.referenceID(),
		Raw:         raw,
	}
}
