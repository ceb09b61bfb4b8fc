package models

import "strings"

// OrderDraft is a partial, locally cached copy of an order edit.
// A nil field means the draft does not define it.
type OrderDraft struct {
	ID              *string     `json:"id,omitempty"`
	Date            *string     `json:"date,omitempty"`
	Company         *string     `json:"company,omitempty"`
	Customer        *string     `json:"customer,omitempty"`
	Phone           *string     `json:"phone,omitempty"`
	Car             *string     `json:"car,omitempty"`
	GovNumber       *string     `json:"govNumber,omitempty"`
	VinNumber       *string     `json:"vinNumber,omitempty"`
	Mileage         *float64    `json:"mileage,omitempty"`
	Reason          *string     `json:"reason,omitempty"`
	Status          *WorkStatus `json:"status,omitempty"`
	Services        *[]LineItem `json:"services,omitempty"`
	Parts           *[]LineItem `json:"parts,omitempty"`
	Payments        *[]Payment  `json:"payments,omitempty"`
	DiscountPercent *float64    `json:"discountPercent,omitempty"`
	DiscountAmount  *float64    `json:"discountAmount,omitempty"`
	PdfURL          *string     `json:"pdfUrl,omitempty"`
	PdfPath         *string     `json:"pdfPath,omitempty"`
}

// DraftOf captures every editable field of o.
func DraftOf(o Order) OrderDraft {
	c := o.Clone()
	c.EnsureCollections()
	return OrderDraft{
		ID:              &c.ID,
		Date:            &c.Date,
		Company:         &c.Company,
		Customer:        &c.Customer,
		Phone:           &c.Phone,
		Car:             &c.Car,
		GovNumber:       &c.GovNumber,
		VinNumber:       &c.VinNumber,
		Mileage:         c.Mileage,
		Reason:          &c.Reason,
		Status:          &c.Status,
		Services:        &c.Services,
		Parts:           &c.Parts,
		Payments:        &c.Payments,
		DiscountPercent: c.DiscountPercent,
		DiscountAmount:  c.DiscountAmount,
		PdfURL:          c.PdfURL,
		PdfPath:         c.PdfPath,
	}
}

// HasContent applies the order content test to the fields the draft defines.
func (d OrderDraft) HasContent() bool {
	for _, s := range []*string{d.Company, d.Customer, d.Phone, d.Car, d.GovNumber, d.VinNumber, d.Reason} {
		if s != nil && strings.TrimSpace(*s) != "" {
			return true
		}
	}
	if d.Services != nil && len(*d.Services) > 0 {
		return true
	}
	if d.Parts != nil && len(*d.Parts) > 0 {
		return true
	}
	if d.Payments != nil && len(*d.Payments) > 0 {
		return true
	}
	return d.Mileage != nil && *d.Mileage > 0
}

// ApplyTo returns base with every defined draft field written over it.
// Collections are replaced wholesale; base is not modified.
func (d OrderDraft) ApplyTo(base Order) Order {
	out := base.Clone()
	setString(&out.ID, d.ID)
	setString(&out.Date, d.Date)
	setString(&out.Company, d.Company)
	setString(&out.Customer, d.Customer)
	setString(&out.Phone, d.Phone)
	setString(&out.Car, d.Car)
	setString(&out.GovNumber, d.GovNumber)
	setString(&out.VinNumber, d.VinNumber)
	setString(&out.Reason, d.Reason)
	if d.Status != nil {
		out.Status = *d.Status
	}
	if d.Mileage != nil {
		out.Mileage = clonePtr(d.Mileage)
	}
	if d.Services != nil {
		out.Services = cloneSlice(*d.Services)
	}
	if d.Parts != nil {
		out.Parts = cloneSlice(*d.Parts)
	}
	if d.Payments != nil {
		out.Payments = cloneSlice(*d.Payments)
	}
	if d.DiscountPercent != nil {
		out.DiscountPercent = clonePtr(d.DiscountPercent)
	}
	if d.DiscountAmount != nil {
		out.DiscountAmount = clonePtr(d.DiscountAmount)
	}
	if d.PdfURL != nil {
		out.PdfURL = clonePtr(d.PdfURL)
	}
	if d.PdfPath != nil {
		out.PdfPath = clonePtr(d.PdfPath)
	}
	out.EnsureCollections()
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
