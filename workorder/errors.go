package workorder

import "errors"

var (
	ErrNotFound        = errors.New("order not found")
	ErrBusy            = errors.New("another operation is in progress")
	ErrNotHydrated     = errors.New("order not loaded yet")
	ErrInvalidStatus   = errors.New("invalid work status")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrInvalidLineKind = errors.New("invalid line item kind")
	ErrLineNotFound    = errors.New("line item not found")
	ErrEmptyTitle      = errors.New("line item title is empty")
	ErrNoOrderID       = errors.New("order has no id")
	ErrLoadFailed      = errors.New("could not load order")
	ErrTicketFailed    = errors.New("ticket generation failed")
)
