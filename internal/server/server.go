// Package server assembles the Fiber application: middleware, product routes,
// documentation and health check.
package server

import (
	"context"
	"errors"
	"time"

	"productos/internal/docs"
	"productos/internal/handlers"
	"productos/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// LogFormat is a compact, development style request log line.
const LogFormat = "${time} ${locals:requestid} ${method} ${path} ${status} ${latency} - ${bytesSent}b\n"

// Pinger reports whether the database answers.
type Pinger func(ctx context.Context) error

// Deps are the collaborators the application is built from.
type Deps struct {
	Products *handlers.ProductHandler
	// Ping backs the /health endpoint; nil reports the database as unknown.
	Ping Pinger
}

// Options tune the HTTP layer.
type Options struct {
	FrontendURL string
	// DisableLogger turns off request logging, mostly for tests.
	DisableLogger bool
}

// NewApp builds the Fiber application.
func NewApp(opts Options, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "productos",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	if !opts.DisableLogger {
		app.Use(logger.New(logger.Config{
			Format:     LogFormat,
			TimeFormat: "15:04:05",
		}))
	}
	app.Use(middleware.CORS(opts.FrontendURL))

	api := app.Group("/api")
	deps.Products.RegisterRoutes(api)

	docs.RegisterRoutes(app)

	app.Get("/health", healthHandler(deps.Ping))

	return app
}

func healthHandler(ping Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, database, code := "healthy", "connected", fiber.StatusOK
		if ping == nil {
			database = "unknown"
		} else if err := ping(c.UserContext()); err != nil {
			status, database, code = "degraded", "unreachable", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"database": database,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}

// errorHandler renders errors that escape handlers as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
