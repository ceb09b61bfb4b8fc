package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"autoservice-backend/controllers"
	"autoservice-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/auth/login", controllers.Login)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request transaction (commits/rolls back)
	protected.Use(middlewares.RequestTx())

	protected.Get("/auth/me", controllers.Me)

	// Orders (pending must be registered before /:id)
	protected.Get("/orders", controllers.GetOrders)
	protected.Get("/orders/pending", controllers.GetPendingOrders)
	protected.Get("/orders/:id", controllers.GetOrder)
	protected.Post("/orders", controllers.CreateOrder)
	protected.Put("/orders/:id", controllers.UpdateOrder)
	protected.Delete("/orders/:id", controllers.DeleteOrder)
	protected.Post("/orders/:id/ticket", controllers.IssueTicket)

	// Ticket PDFs
	protected.Post("/files/tickets/:ticketId/pdf", controllers.UploadTicket)
	protected.Get("/tickets", controllers.ListTickets)
	protected.Get("/tickets/file/:name", controllers.GetTicketFile)
	protected.Delete("/tickets/file/:name", controllers.DeleteTicketFile)
	protected.Get("/tickets/:ticketId/pdf", controllers.GetTicket)
	protected.Delete("/tickets/:ticketId/pdf", controllers.DeleteTicket)

	// Service catalog
	protected.Get("/services", controllers.GetServiceNames)
	protected.Get("/services/records", controllers.GetServiceRecords)
	protected.Post("/services", controllers.CreateService)
	protected.Put("/services/:id", controllers.UpdateService)
	protected.Delete("/services/:id", controllers.DeleteService)

	// Appointments
	protected.Get("/appointments", controllers.GetAppointments)
	protected.Post("/appointments", controllers.CreateAppointment)
	protected.Put("/appointments/:id", controllers.UpdateAppointment)
	protected.Delete("/appointments/:id", controllers.DeleteAppointment)

	// Customers and companies, derived from orders
	protected.Get("/customers", controllers.GetCustomers)
	protected.Get("/companies", controllers.GetCompanies)

	// Reports
	protected.Get("/reports/revenue", controllers.GetRevenueReport)
}
