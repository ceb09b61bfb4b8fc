package workorder

import (
	"context"

	"autoservice-backend/models"
)

// OrderStore persists orders. UpdateOrder returns an error wrapping
// ErrNotFound when the id is unknown to the server.
type OrderStore interface {
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	UpdateOrder(ctx context.Context, id string, o models.Order) (models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

// TicketService renders and stores ticket PDFs for an order.
type TicketService interface {
	GenerateTicket(ctx context.Context, o models.Order) (models.TicketRef, error)
	DeleteTickets(ctx context.Context, orderID string) error
}

// Catalog suggests line-item titles. Advisory only.
type Catalog interface {
	SuggestServices(ctx context.Context, query string) ([]string, error)
}
