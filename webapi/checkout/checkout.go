// Package checkout exposes the payment gateway and pricing engine over a
// single JSON entry point.
package checkout

import (
	"log/slog"

	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/amirasaad/paygate/pkg/provider/payment"
	checkoutsvc "github.com/amirasaad/paygate/pkg/service/checkout"
	"github.com/amirasaad/paygate/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// allowedMethods is reported in the Allow header of 405 responses.
const allowedMethods = "GET, POST, OPTIONS"

// Routes registers the entry point at / and /payments.
func Routes(app *fiber.App, svc *checkoutsvc.Service, logger *slog.Logger) {
	h := Handler(svc, logger)
	app.All("/", h)
	app.All("/payments", h)
}

// Handler returns the entry point handler. POST dispatches on the action
// field, GET ?orderId= reports order status and OPTIONS answers preflight.
func Handler(svc *checkoutsvc.Service, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "router")

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodOptions:
			c.Status(fiber.StatusOK)
			return nil
		case fiber.MethodGet:
			return orderStatusQuery(c, svc, logger)
		case fiber.MethodPost:
			return dispatch(c, svc, logger)
		default:
			c.Set(fiber.HeaderAllow, allowedMethods)
			return common.ErrorJSON(c, fiber.ErrMethodNotAllowed)
		}
	}
}

func dispatch(c *fiber.Ctx, svc *checkoutsvc.Service, logger *slog.Logger) error {
	var env actionEnvelope
	if err := c.BodyParser(&env); err != nil {
		return common.ErrorJSON(c, domain.ValidationErrorf("invalid request body: %s", err.Error()))
	}

	switch env.Action {
	case payment.ActionCreateOrder:
		return createOrder(c, svc, logger)
	case payment.ActionCaptureOrder:
		return captureOrder(c, svc, logger)
	case payment.ActionOrderStatus:
		input, err := common.BindAndValidate[OrderStatusRequest](c)
		if err != nil {
			return common.ErrorJSON(c, err)
		}
		return orderStatus(c, svc, logger, input)
	case ActionCalculateTotal:
		return calculateTotal(c, svc, logger)
	case "":
		return common.ErrorJSON(c, domain.ValidationErrorf("action is required"))
	default:
		return common.ErrorJSON(c, domain.ValidationErrorf("unknown action %q", env.Action))
	}
}

func createOrder(c *fiber.Ctx, svc *checkoutsvc.Service, logger *slog.Logger) error {
	input, err := common.BindAndValidate[CreateOrderRequest](c)
	if err != nil {
		return common.ErrorJSON(c, err)
	}
	out, err := svc.Execute(c.UserContext(), input.toRequest(idempotencyKey(c, input.IdempotencyKey)))
	if err != nil {
		return fail(c, logger, payment.ActionCreateOrder, err)
	}
	return common.SuccessJSON(c, fiber.StatusOK, fiber.Map{
		"orderId":     out.Order.ID,
		"approvalUrl": out.Order.ApprovalURL,
		"order":       out.Order,
	})
}

func captureOrder(c *fiber.Ctx, svc *checkoutsvc.Service, logger *slog.Logger) error {
	input, err := common.BindAndValidate[CaptureOrderRequest](c)
	if err != nil {
		return common.ErrorJSON(c, err)
	}
	out, err := svc.Execute(c.UserContext(), input.toRequest(idempotencyKey(c, input.IdempotencyKey)))
	if err != nil {
		return fail(c, logger, payment.ActionCaptureOrder, err)
	}
	return common.SuccessJSON(c, fiber.StatusOK, fiber.Map{
		"captureResult": out.Capture,
		"transactionId": out.Capture.TransactionID,
	})
}

func orderStatusQuery(c *fiber.Ctx, svc *checkoutsvc.Service, logger *slog.Logger) error {
	var input OrderStatusRequest
	if err := c.QueryParser(&input); err != nil {
		return common.ErrorJSON(c, domain.ValidationErrorf("invalid query: %s", err.Error()))
	}
	if err := common.Validate(&input); err != nil {
		return common.ErrorJSON(c, err)
	}
	return orderStatus(c, svc, logger, &input)
}

func orderStatus(c *fiber.Ctx, svc *checkoutsvc.Service, logger *slog.Logger, input *OrderStatusRequest) error {
	out, err := svc.Execute(c.UserContext(), input.toRequest())
	if err != nil {
		return fail(c, logger, payment.ActionOrderStatus, err)
	}
	return common.SuccessJSON(c, fiber.StatusOK, fiber.Map{"order": out.Order})
}

func calculateTotal(c *fiber.Ctx, svc *checkoutsvc.Service, logger *slog.Logger) error {
	input, err := common.BindAndValidate[CalculateTotalRequest](c)
	if err != nil {
		return common.ErrorJSON(c, err)
	}
	quote, err := svc.Quote(input.Subtotal, input.Location, input.Currency, input.Discount)
	if err != nil {
		return fail(c, logger, ActionCalculateTotal, err)
	}
	return common.SuccessJSON(c, fiber.StatusOK, fiber.Map{
		"pricing":   quote.Result,
		"formatted": quote.Formatted,
	})
}

// idempotencyKey prefers the body value and falls back to the header.
func idempotencyKey(c *fiber.Ctx, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	return c.Get(IdempotencyKeyHeader)
}

func fail(c *fiber.Ctx, logger *slog.Logger, action payment.Action, err error) error {
	status := common.StatusFor(err)
	attrs := []any{"action", action, "status", status, "request_id", common.RequestID(c), "error", err}
	if status >= fiber.StatusInternalServerError {
		logger.Error("Request failed", attrs...)
	} else {
		logger.Warn("Request rejected", attrs...)
	}
	return common.ErrorJSON(c, err, status)
}
