// Package webapi assembles the Fiber application: middleware, health check
// and the checkout entry point.
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/paygate/pkg/app"
	checkoutweb "github.com/amirasaad/paygate/webapi/checkout"
	"github.com/amirasaad/paygate/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	cfg := a.Config

	fiberApp := fiber.New(fiber.Config{
		AppName: "paygate",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ErrorJSON(c, err)
		},
	})

	// Request ids first so every later response, including rate limited
	// and recovered ones, carries one.
	fiberApp.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: common.RequestIDKey,
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(preflightOK)
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowOrigins,
		AllowHeaders:  cfg.CORS.AllowHeaders,
		AllowMethods:  "GET,POST,OPTIONS",
		ExposeHeaders: fiber.HeaderXRequestID,
	}))

	// Configure rate limiting middleware
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: clientKey,
		LimitReached: func(c *fiber.Ctx) error {
			return common.ErrorJSON(
				c,
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:requestid}\n",
	}))

	fiberApp.Get("/healthz", func(c *fiber.Ctx) error {
		return common.SuccessJSON(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	checkoutweb.Routes(fiberApp, a.CheckoutService, a.Deps.Logger)
	return fiberApp
}

// clientKey identifies the caller for rate limiting. It uses the first
// X-Forwarded-For address, then X-Real-IP, then the peer address.
func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get(fiber.HeaderXForwardedFor); forwardedFor != "" {
		// Take the first IP in the chain
		if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
			return strings.TrimSpace(forwardedFor[:commaIndex])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

// preflightOK answers CORS preflight with 200 instead of 204.
func preflightOK(c *fiber.Ctx) error {
	err := c.Next()
	if c.Method() == fiber.MethodOptions && c.Response().StatusCode() == fiber.StatusNoContent {
		c.Status(fiber.StatusOK)
		c.Response().ResetBody()
	}
	return err
}
