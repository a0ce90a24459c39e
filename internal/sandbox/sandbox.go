// Package sandbox is an in-memory stand-in for the payment provider's REST
// API. It issues client-credentials tokens, creates, captures and reports
// orders, and replays the original response when a create or capture is
// repeated with the same PayPal-Request-Id.
package sandbox

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const requestIDHeader = "PayPal-Request-Id"

// Options configures the sandbox.
type Options struct {
	ClientID     string
	ClientSecret string
	// TokenTTL is the expires_in of issued tokens.
	TokenTTL time.Duration
	// ReplayTTL bounds how long a request id is remembered.
	ReplayTTL time.Duration
	// PublicURL prefixes the links returned with orders.
	PublicURL string
	// AutoApprove marks new orders as approved so they can be captured
	// without a payer step.
	AutoApprove bool

	// Fault injection.
	OmitApprovalLink bool
	OmitCaptureID    bool
}

type order struct {
	ID          string
	Status      string
	ReferenceID string
	CustomID    string
	Description string
	Currency    string
	Value       string
	CaptureID   string
	HasPayer    bool
	CreatedAt   time.Time
}

// Server is the fake provider.
type Server struct {
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
	replays *replayStore
	flights singleflight.Group

	mu     sync.RWMutex
	orders map[string]*order
	tokens map[string]time.Time

	exchanges atomic.Int64
	creates   atomic.Int64
	captures  atomic.Int64
}

// New creates a sandbox.
func New(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 9 * time.Hour
	}
	if opts.ReplayTTL <= 0 {
		opts.ReplayTTL = 6 * time.Hour
	}
	if opts.PublicURL == "" {
		opts.PublicURL = "http://localhost:4010"
	}
	s := &Server{
		opts:   opts,
		logger: logger.With("component", "sandbox"),
		now:    time.Now,
		orders: make(map[string]*order),
		tokens: make(map[string]time.Time),
	}
	s.replays = newReplayStore(opts.ReplayTTL, func() time.Time { return s.now() })
	return s
}

// App returns the Fiber application serving the provider API.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/v1/oauth2/token", s.token)

	orders := app.Group("/v2/checkout/orders", s.authenticate)
	orders.Post("/", s.createOrder)
	orders.Get("/:id", s.getOrder)
	orders.Post("/:id/capture", s.captureOrder)
	orders.Post("/:id/approve", s.approveOrder)
	return app
}

// Handler returns the API as a net/http handler.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.App())
}

// StartSweeper evicts expired request ids in the background until ctx is
// done.
func (s *Server) StartSweeper(ctx context.Context, interval time.Duration) {
	go s.replays.runSweeper(ctx, interval, func(n int) {
		s.logger.Info("Evicted expired request ids", "count", n)
	})
}

// Approve simulates the payer approving an order.
func (s *Server) Approve(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status == "COMPLETED" {
		return false
	}
	o.Status = "APPROVED"
	return true
}

// TokenExchanges returns the number of successful token exchanges.
func (s *Server) TokenExchanges() int { return int(s.exchanges.Load()) }

// OrdersCreated returns the number of orders actually created.
func (s *Server) OrdersCreated() int { return int(s.creates.Load()) }

// CapturesPerformed returns the number of captures actually performed.
func (s *Server) CapturesPerformed() int { return int(s.captures.Load()) }

// ExpireTokens makes every issued token invalid, as if it had lapsed.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]time.Time)
}

func (s *Server) token(c *fiber.Ctx) error {
	id, secret, ok := basicAuth(c.Get(fiber.HeaderAuthorization))
	if !ok || id != s.opts.ClientID || secret != s.opts.ClientSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":             "invalid_client",
			"error_description": "Client Authentication failed",
		})
	}
	if c.FormValue("grant_type") != "client_credentials" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":             "unsupported_grant_type",
			"error_description": "Grant Type is NULL",
		})
	}

	value := "A21AA" + strings.ReplaceAll(uuid.NewString(), "-", "")
	s.mu.Lock()
	s.tokens[value] = s.now().Add(s.opts.TokenTTL)
	s.mu.Unlock()
	s.exchanges.Add(1)

	return c.JSON(fiber.Map{
		"scope":        "https://uri.paypal.com/services/payments/payment",
		"access_token": value,
		"token_type":   "Bearer",
		"app_id":       "APP-SANDBOX",
		"expires_in":   int(s.opts.TokenTTL.Seconds()),
		"nonce":        uuid.NewString(),
	})
}

func (s *Server) authenticate(c *fiber.Ctx) error {
	value, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if ok {
		s.mu.RLock()
		exp, found := s.tokens[value]
		s.mu.RUnlock()
		ok = found && s.now().Before(exp)
	}
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "AUTHENTICATION_FAILURE",
			"Authentication failed due to invalid authentication credentials or a missing Authorization header.", "")
	}
	return c.Next()
}

type createBody struct {
	Intent        string `json:"intent"`
	PurchaseUnits []struct {
		ReferenceID string `json:"reference_id"`
		Description string `json:"description"`
		CustomID    string `json:"custom_id"`
		Amount      *struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
	} `json:"purchase_units"`
	PaymentSource json.RawMessage `json:"payment_source"`
}

func (s *Server) createOrder(c *fiber.Ctx) error {
	return s.idempotent(c, "create", func() (int, any) {
		var body createBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return errorBody(fiber.StatusBadRequest, "INVALID_REQUEST", "Request is not well-formed, syntactically incorrect, or violates schema.", "MALFORMED_REQUEST_JSON")
		}
		if body.Intent != "CAPTURE" && body.Intent != "AUTHORIZE" {
			return errorBody(fiber.StatusBadRequest, "INVALID_REQUEST", "Request is not well-formed, syntactically incorrect, or violates schema.", "INVALID_PARAMETER_VALUE")
		}
		if len(body.PurchaseUnits) == 0 || body.PurchaseUnits[0].Amount == nil {
			return errorBody(fiber.StatusBadRequest, "INVALID_REQUEST", "Request is not well-formed, syntactically incorrect, or violates schema.", "MISSING_REQUIRED_PARAMETER")
		}
		pu := body.PurchaseUnits[0]
		if !validAmount(pu.Amount.Value, pu.Amount.CurrencyCode) {
			return errorBody(fiber.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "The requested action could not be performed, semantically incorrect, or failed business validation.", "DECIMAL_PRECISION")
		}

		o := &order{
			ID:          newOrderID(),
			Status:      "CREATED",
			ReferenceID: pu.ReferenceID,
			CustomID:    pu.CustomID,
			Description: pu.Description,
			Currency:    pu.Amount.CurrencyCode,
			Value:       pu.Amount.Value,
			HasPayer:    len(body.PaymentSource) > 0,
			CreatedAt:   s.now(),
		}
		if o.HasPayer {
			o.Status = "PAYER_ACTION_REQUIRED"
		}
		if s.opts.AutoApprove {
			o.Status = "APPROVED"
		}

		s.mu.Lock()
		s.orders[o.ID] = o
		s.mu.Unlock()
		s.creates.Add(1)
		s.logger.Info("Order created", "order_id", o.ID, "amount", o.Value, "currency", o.Currency)

		return fiber.StatusCreated, s.render(o)
	})
}

func (s *Server) captureOrder(c *fiber.Ctx) error {
	id := c.Params("id")
	return s.idempotent(c, "capture:"+id, func() (int, any) {
		s.mu.Lock()
		defer s.mu.Unlock()

		o, ok := s.orders[id]
		if !ok {
			return notFound(id)
		}
		switch o.Status {
		case "COMPLETED":
			return errorBody(fiber.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "The requested action could not be performed, semantically incorrect, or failed business validation.", "ORDER_ALREADY_CAPTURED")
		case "APPROVED":
		default:
			return errorBody(fiber.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY", "Payer has not yet approved the Order for payment.", "ORDER_NOT_APPROVED")
		}

		o.Status = "COMPLETED"
		if !s.opts.OmitCaptureID {
			o.CaptureID = newOrderID()
		}
		s.captures.Add(1)
		s.logger.Info("Order captured", "order_id", o.ID, "capture_id", o.CaptureID)
		return fiber.StatusCreated, s.render(o)
	})
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[c.Params("id")]
	if !ok {
		status, body := notFound(c.Params("id"))
		return c.Status(status).JSON(body)
	}
	return c.JSON(s.render(o))
}

func (s *Server) approveOrder(c *fiber.Ctx) error {
	if !s.Approve(c.Params("id")) {
		status, body := notFound(c.Params("id"))
		return c.Status(status).JSON(body)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// idempotent runs fn once per request id and replays its response after.
func (s *Server) idempotent(c *fiber.Ctx, scope string, fn func() (int, any)) error {
	reqID := c.Get(requestIDHeader)
	if reqID == "" {
		status, body := fn()
		return sendJSON(c, status, body)
	}

	// Concurrent requests with the same id wait for the first one and get
	// its response.
	key := scope + ":" + reqID
	v, err, _ := s.flights.Do(key, func() (any, error) {
		if e, ok := s.replays.get(key); ok {
			s.logger.Info("Replaying response", "request_id", reqID, "scope", scope)
			return e, nil
		}
		status, body := fn()
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		if status < 500 {
			s.replays.set(key, status, buf)
		}
		return &replayEntry{Status: status, Body: buf}, nil
	})
	if err != nil {
		return err
	}
	e := v.(*replayEntry)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(e.Status).Send(e.Body)
}

func sendJSON(c *fiber.Ctx, status int, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(status).Send(buf)
}

func (s *Server) render(o *order) fiber.Map {
	self := s.opts.PublicURL + "/v2/checkout/orders/" + o.ID
	links := []fiber.Map{{"href": self, "rel": "self", "method": "GET"}}
	if !s.opts.OmitApprovalLink && o.Status != "COMPLETED" {
		rel, href := "approve", s.opts.PublicURL+"/checkoutnow?token="+o.ID
		if o.HasPayer {
			rel = "payer-action"
		}
		links = append(links, fiber.Map{"href": href, "rel": rel, "method": "GET"})
	}

	unit := fiber.Map{
		"reference_id": o.ReferenceID,
		"amount":       fiber.Map{"currency_code": o.Currency, "value": o.Value},
	}
	if o.CustomID != "" {
		unit["custom_id"] = o.CustomID
	}
	if o.Description != "" {
		unit["description"] = o.Description
	}
	if o.Status == "COMPLETED" {
		captures := []fiber.Map{}
		if o.CaptureID != "" {
			captures = append(captures, fiber.Map{
				"id":     o.CaptureID,
				"status": "COMPLETED",
				"amount": fiber.Map{"currency_code": o.Currency, "value": o.Value},
			})
		}
		unit["payments"] = fiber.Map{"captures": captures}
	}

	return fiber.Map{
		"id":             o.ID,
		"status":         o.Status,
		"intent":         "CAPTURE",
		"create_time":    o.CreatedAt.UTC().Format(time.RFC3339),
		"purchase_units": []fiber.Map{unit},
		"links":          links,
	}
}

func apiError(c *fiber.Ctx, status int, name, message, issue string) error {
	_, body := errorBody(status, name, message, issue)
	return c.Status(status).JSON(body)
}

func errorBody(status int, name, message, issue string) (int, any) {
	body := fiber.Map{
		"name":     name,
		"message":  message,
		"debug_id": strings.ReplaceAll(uuid.NewString(), "-", "")[:13],
	}
	if issue != "" {
		body["details"] = []fiber.Map{{"issue": issue}}
	}
	return status, body
}

func notFound(id string) (int, any) {
	return errorBody(fiber.StatusNotFound, "RESOURCE_NOT_FOUND",
		"The specified resource does not exist.", "INVALID_RESOURCE_ID: "+id)
}

func newOrderID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:17]
}

func basicAuth(header string) (string, string, bool) {
	raw, ok := strings.CutPrefix(header, "Basic ")
	if !ok {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", "", false
	}
	id, secret, ok := strings.Cut(string(decoded), ":")
	return id, secret, ok
}

var zeroDecimal = map[string]bool{"JPY": true, "HUF": true, "TWD": true}

// validAmount accepts integers, or exactly two decimals for currencies that
// have a minor unit.
func validAmount(v, currency string) bool {
	whole, frac, hasFrac := strings.Cut(v, ".")
	if whole == "" || strings.Trim(whole, "0123456789") != "" {
		return false
	}
	if !hasFrac {
		return true
	}
	if zeroDecimal[currency] {
		return false
	}
	return len(frac) == 2 && strings.Trim(frac, "0123456789") == ""
}
