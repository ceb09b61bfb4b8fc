package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"autoservice-backend/middlewares"
)

type AppOptions struct {
	BodyLimit       int
	AllowedOrigins  string
	RateLimitMax    int // 0 disables the limiter
	RateLimitWindow time.Duration
}

// NewApp builds the fiber app with the global error handler, middlewares and routes.
func NewApp(opts AppOptions) *fiber.App {
	// Fiber default BodyLimit is 4 * 1024 * 1024 bytes if unset (per docs).
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    opts.BodyLimit,
	})

	middlewares.InitMetrics()
	app.Use(middlewares.RequestLogger())
	app.Use(middlewares.PrometheusMiddleware())

	allowedOrigins := opts.AllowedOrigins
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, X-Request-ID",
	}))

	if opts.RateLimitMax > 0 {
		window := opts.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		// Default KeyGenerator = client IP; default 429 handler is fine.
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimitMax,
			Expiration: window,
		}))
	}

	Register(app)
	return app
}
