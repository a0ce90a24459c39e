// Package common holds the response envelope, error mapping and request
// binding shared by the HTTP handlers.
package common

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/amirasaad/paygate/pkg/domain"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// RequestIDKey is the Locals key the requestid middleware stores the id under.
const RequestIDKey = "requestid"

var validate = newValidator()

// newValidator lets numeric tags (gt, gte, required) apply to decimal fields.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// RequestID returns the correlation id of the current request.
func RequestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SuccessJSON writes {success:true, ...fields, requestId, timestamp}.
func SuccessJSON(c *fiber.Ctx, status int, fields fiber.Map) error {
	body := fiber.Map{}
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	body["requestId"] = RequestID(c)
	body["timestamp"] = timestamp()
	return c.Status(status).JSON(body)
}

// ErrorJSON writes the failure envelope for err. The status is derived from
// the error unless given.
func ErrorJSON(c *fiber.Ctx, err error, status ...int) error {
	code := StatusFor(err)
	if len(status) > 0 {
		code = status[0]
	}
	resp := ErrorResponse{
		Success:   false,
		Error:     err.Error(),
		RequestID: RequestID(c),
		Timestamp: timestamp(),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Details = fieldErrors(verrs)
	}
	return c.Status(code).JSON(resp)
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	var fe *fiber.Error
	var upErr *domain.UpstreamError
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrUnsupportedCurrency):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrCredentialsMissing),
		errors.Is(err, domain.ErrAuthFailure),
		errors.Is(err, domain.ErrMissingApprovalURL),
		errors.Is(err, domain.ErrCaptureIncomplete),
		errors.Is(err, domain.ErrTransport):
		return fiber.StatusInternalServerError
	case errors.As(err, &upErr):
		return upstreamStatus(upErr)
	default:
		return fiber.StatusInternalServerError
	}
}

// upstreamStatus passes provider 4xx answers through and otherwise guesses
// from the message. A provider 401 or 403 means our credentials are bad,
// not the caller's request.
func upstreamStatus(e *domain.UpstreamError) int {
	switch {
	case e.Status == fiber.StatusUnauthorized, e.Status == fiber.StatusForbidden:
		return fiber.StatusInternalServerError
	case e.Status >= 400 && e.Status < 500:
		return e.Status
	}
	msg := strings.ToLower(e.Message + " " + e.Body)
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "not_found"):
		return fiber.StatusNotFound
	case strings.Contains(msg, "not approved"), strings.Contains(msg, "not_approved"),
		strings.Contains(msg, "unprocessable"):
		return fiber.StatusUnprocessableEntity
	case strings.Contains(msg, "invalid"):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body into T and validates it with
// go-playground/validator. Errors wrap domain.ErrValidation.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, domain.ValidationErrorf("invalid request body: %s", err.Error())
	}
	if err := Validate(&input); err != nil {
		return nil, err
	}
	return &input, nil
}

// Validate runs struct validation and wraps failures in domain.ErrValidation.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: verrs}
		}
		return domain.ValidationErrorf("%s", err.Error())
	}
	return nil
}

// ValidationError carries field level validation failures.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		parts = append(parts, describe(fe))
	}
	return domain.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return []error{domain.ErrValidation, e.Fields}
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "gt", "gte":
		return fe.Field() + " must be greater than " + orEqual(fe.Tag()) + fe.Param()
	case "lt", "lte":
		return fe.Field() + " must be less than " + orEqual(fe.Tag()) + fe.Param()
	case "len":
		return fe.Field() + " must be " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func orEqual(tag string) string {
	if tag == "gte" || tag == "lte" {
		return "or equal to "
	}
	return ""
}
