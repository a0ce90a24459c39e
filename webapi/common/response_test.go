package common_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	upstream := func(status int, msg string) error {
		return fmt.Errorf("capture: %w", &domain.UpstreamError{Op: "capture order", Status: status, Message: msg})
	}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, fiber.StatusOK},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed},
		{"validation", domain.ValidationErrorf("amount is required"), fiber.StatusBadRequest},
		{"below minimum", fmt.Errorf("%w: 0.5 < 1", domain.ErrBelowMinimum), fiber.StatusBadRequest},
		{"unsupported currency", fmt.Errorf("%w: XYZ", domain.ErrUnsupportedCurrency), fiber.StatusBadRequest},
		{"credentials missing", domain.ErrCredentialsMissing, fiber.StatusInternalServerError},
		{"auth failure", &domain.AuthError{Status: 401, Body: "invalid_client"}, fiber.StatusInternalServerError},
		{"auth transport", &domain.AuthError{Err: errors.New("dial tcp")}, fiber.StatusInternalServerError},
		{"missing approval url", domain.ErrMissingApprovalURL, fiber.StatusInternalServerError},
		{"capture incomplete", domain.ErrCaptureIncomplete, fiber.StatusInternalServerError},
		{"transport", fmt.Errorf("%w: connection refused", domain.ErrTransport), fiber.StatusInternalServerError},
		{"upstream 401 invalid token", upstream(401, "Invalid access token"), fiber.StatusInternalServerError},
		{"upstream 403", upstream(403, "not authorized for this resource"), fiber.StatusInternalServerError},
		{"upstream 404", upstream(404, "RESOURCE_NOT_FOUND"), fiber.StatusNotFound},
		{"upstream 422", upstream(422, "ORDER_NOT_APPROVED"), fiber.StatusUnprocessableEntity},
		{"upstream 400", upstream(400, "INVALID_REQUEST"), fiber.StatusBadRequest},
		{"upstream 500 not found", upstream(500, "order not found"), fiber.StatusNotFound},
		{"upstream 500 not approved", upstream(500, "payer not_approved"), fiber.StatusUnprocessableEntity},
		{"upstream 502 unprocessable", upstream(502, "unprocessable entity"), fiber.StatusUnprocessableEntity},
		{"upstream 500 invalid", upstream(500, "invalid state"), fiber.StatusBadRequest},
		{"upstream 503", upstream(503, "service unavailable"), fiber.StatusInternalServerError},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, common.StatusFor(tt.err))
		})
	}
}

func TestStatusFor_UpstreamBodyKeywords(t *testing.T) {
	err := &domain.UpstreamError{Op: "get order", Status: 500, Body: `{"name":"RESOURCE_NOT_FOUND"}`}
	assert.Equal(t, fiber.StatusNotFound, common.StatusFor(err))
}

type payload struct {
	Amount   decimal.Decimal `json:"amount" validate:"required,gt=0,lte=100"`
	Discount decimal.Decimal `json:"discountAmount" validate:"gte=0"`
	Email    string          `json:"customerEmail" validate:"required,email"`
}

func newApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{ContextKey: common.RequestIDKey}))
	app.Post("/", handler)
	return app
}

func send(t *testing.T, app *fiber.App, body string) (int, string, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, resp.Header.Get(fiber.HeaderXRequestID), out
}

func TestErrorJSON_Envelope(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return common.ErrorJSON(c, domain.ErrCaptureIncomplete)
	})

	status, requestID, body := send(t, app, "{}")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, domain.ErrCaptureIncomplete.Error(), body["error"])
	assert.NotEmpty(t, requestID)
	assert.Equal(t, requestID, body["requestId"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body, "details")
}

func TestErrorJSON_StatusOverride(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return common.ErrorJSON(c, errors.New("slow down"), fiber.StatusTooManyRequests)
	})
	status, _, body := send(t, app, "{}")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "slow down", body["error"])
}

func TestSuccessJSON_Envelope(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		return common.SuccessJSON(c, fiber.StatusCreated, fiber.Map{"orderId": "ABC", "success": false})
	})
	status, requestID, body := send(t, app, "{}")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ABC", body["orderId"])
	assert.Equal(t, requestID, body["requestId"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestBindAndValidate(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		in, err := common.BindAndValidate[payload](c)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return common.SuccessJSON(c, fiber.StatusOK, fiber.Map{"amount": in.Amount.String()})
	})

	status, _, body := send(t, app, `{"amount":"12.50","customerEmail":"ada@example.com"}`)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "12.5", body["amount"])

	status, _, body = send(t, app, `{"amount":0,"discountAmount":-1,"customerEmail":"nope"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, body)
	assert.Equal(t, "amount is required", details["amount"])
	assert.Equal(t, "discountAmount must be greater than or equal to 0", details["discountAmount"])
	assert.Equal(t, "customerEmail must be a valid email", details["customerEmail"])

	status, _, body = send(t, app, `{"amount":101,"customerEmail":"ada@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	details, ok = body["details"].(map[string]any)
	require.True(t, ok, body)
	assert.Equal(t, "amount must be less than or equal to 100", details["amount"])

	status, _, body = send(t, app, `{"amount":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "invalid request body")
}

func TestValidationError_Unwrap(t *testing.T) {
	err := common.Validate(&payload{Email: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var verr *common.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}
