package middlewares

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	OrdersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Work orders created",
	})

	OrdersDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_deleted_total",
		Help: "Work orders deleted",
	})

	TicketFilesUploadedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ticket_files_uploaded_total",
		Help: "Ticket PDFs uploaded",
	})
)

var metricsOnce sync.Once

// InitMetrics registers the collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			OrdersCreatedTotal,
			OrdersDeletedTotal,
			TicketFilesUploadedTotal,
		)
	})
}

func PrometheusMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		path := c.Route().Path
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(statusOf(c, err))).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
		return err
	}
}

// statusOf is the status the ErrorHandler will answer with.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}
