package controllers

import (
	"time"

	"autoservice-backend/models"
	"autoservice-backend/tickets"

	"go.uber.org/zap"
)

var (
	ticketStore *tickets.Store
	renderer    tickets.Renderer
	operator    *models.Operator
	logger      = zap.NewNop()
	now         = time.Now
)

// Configure installs the collaborators the handlers depend on.
func Configure(store *tickets.Store, op *models.Operator, l *zap.Logger) {
	ticketStore = store
	operator = op
	if l != nil {
		logger = l
	}
}

// SetTicketRenderer configures the layout used by server-side ticket issuing.
func SetTicketRenderer(r tickets.Renderer) {
	renderer = r
}
