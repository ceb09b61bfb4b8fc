package models

import "strings"

// WorkStatus is the canonical status of a work order.
type WorkStatus string

const (
	StatusNew            WorkStatus = "NEW"
	StatusInProgress     WorkStatus = "IN_PROGRESS"
	StatusPendingPayment WorkStatus = "PENDING_PAYMENT"
	StatusPayed          WorkStatus = "PAYED"
)

// Valid reports whether s is one of the four canonical statuses.
func (s WorkStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusPendingPayment, StatusPayed:
		return true
	}
	return false
}

// PaymentMethod is how a payment was (or will be) settled.
type PaymentMethod string

const (
	MethodCash PaymentMethod = "cash"
	MethodCard PaymentMethod = "card"
	// MethodLater defers payment; it never counts toward paid totals.
	MethodLater PaymentMethod = "later"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodCard || m == MethodLater
}

// LineItem is a single billable row: a service performed or a part sold.
type LineItem struct {
	ID    int64   `json:"id"`
	Title string  `json:"title" validate:"max=255"`
	Qty   float64 `json:"qty" validate:"gte=0"`
	Price float64 `json:"price" validate:"gte=0"`
}

// Sum is qty × price.
func (l LineItem) Sum() float64 {
	return l.Qty * l.Price
}

// Payment is an append-only record on an order.
type Payment struct {
	ID     int64         `json:"id"`
	Date   string        `json:"date" validate:"omitempty,ddmmyyyy"`
	Method PaymentMethod `json:"method" validate:"oneof=cash card later"`
	Amount float64       `json:"amount" validate:"gte=0"`
}

// Order is a work order header plus its line items and payments.
type Order struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"`
	Company         string     `json:"company"`
	Customer        string     `json:"customer"`
	Phone           string     `json:"phone"`
	Car             string     `json:"car"`
	GovNumber       string     `json:"govNumber"`
	VinNumber       string     `json:"vinNumber"`
	Mileage         *float64   `json:"mileage"`
	Reason          string     `json:"reason"`
	Status          WorkStatus `json:"status"`
	Services        []LineItem `json:"services"`
	Parts           []LineItem `json:"parts"`
	Payments        []Payment  `json:"payments"`
	DiscountPercent *float64   `json:"discountPercent"`
	DiscountAmount  *float64   `json:"discountAmount"`
	PdfURL          *string    `json:"pdfUrl"`
	PdfPath         *string    `json:"pdfPath"`
}

// Clone returns a deep copy; slices and pointer fields are never shared.
func (o Order) Clone() Order {
	out := o
	out.Services = cloneSlice(o.Services)
	out.Parts = cloneSlice(o.Parts)
	out.Payments = cloneSlice(o.Payments)
	out.Mileage = clonePtr(o.Mileage)
	out.DiscountPercent = clonePtr(o.DiscountPercent)
	out.DiscountAmount = clonePtr(o.DiscountAmount)
	out.PdfURL = clonePtr(o.PdfURL)
	out.PdfPath = clonePtr(o.PdfPath)
	return out
}

// EnsureCollections replaces nil collections with empty ones so they encode as [].
func (o *Order) EnsureCollections() {
	if o.Services == nil {
		o.Services = []LineItem{}
	}
	if o.Parts == nil {
		o.Parts = []LineItem{}
	}
	if o.Payments == nil {
		o.Payments = []Payment{}
	}
}

// TicketRef locates a generated ticket PDF.
type TicketRef struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// AttachTicket stamps ref onto the order, or clears the stamp when ref is nil.
func (o *Order) AttachTicket(ref *TicketRef) {
	if ref == nil {
		o.PdfURL, o.PdfPath = nil, nil
		return
	}
	url, path := ref.URL, ref.Path
	o.PdfURL, o.PdfPath = &url, &path
}

// HasContent reports whether any identity field, collection or mileage carries data.
func (o Order) HasContent() bool {
	for _, s := range []string{o.Company, o.Customer, o.Phone, o.Car, o.GovNumber, o.VinNumber, o.Reason} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	if len(o.Services) > 0 || len(o.Parts) > 0 || len(o.Payments) > 0 {
		return true
	}
	return o.Mileage != nil && *o.Mileage > 0
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
