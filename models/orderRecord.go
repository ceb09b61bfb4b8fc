package models

import (
	"time"

	"gorm.io/datatypes"
)

// OrderRecord is the persisted row of an Order. Line items and payments are
// stored as JSON columns; Seq is the numeric form of ID used for ordering and
// id assignment.
type OrderRecord struct {
	ID              string     `gorm:"primaryKey;size:32"`
	Seq             int64      `gorm:"uniqueIndex"`
	Date            string     `gorm:"size:10"`
	Company         string     `gorm:"size:255"`
	Customer        string     `gorm:"size:255"`
	Phone           string     `gorm:"size:64"`
	Car             string     `gorm:"size:255"`
	GovNumber       string     `gorm:"size:32"`
	VinNumber       string     `gorm:"size:32"`
	Mileage         *float64
	Reason          string
	Status          WorkStatus `gorm:"size:20;index"`
	Services        datatypes.JSONSlice[LineItem]
	Parts           datatypes.JSONSlice[LineItem]
	Payments        datatypes.JSONSlice[Payment]
	DiscountPercent *float64
	DiscountAmount  *float64
	PdfURL          *string
	PdfPath         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (OrderRecord) TableName() string { return "orders" }

// ToOrder converts the row into the API shape.
func (r OrderRecord) ToOrder() Order {
	o := Order{
		ID:              r.ID,
		Date:            r.Date,
		Company:         r.Company,
		Customer:        r.Customer,
		Phone:           r.Phone,
		Car:             r.Car,
		GovNumber:       r.GovNumber,
		VinNumber:       r.VinNumber,
		Mileage:         clonePtr(r.Mileage),
		Reason:          r.Reason,
		Status:          r.Status,
		Services:        cloneSlice([]LineItem(r.Services)),
		Parts:           cloneSlice([]LineItem(r.Parts)),
		Payments:        cloneSlice([]Payment(r.Payments)),
		DiscountPercent: clonePtr(r.DiscountPercent),
		DiscountAmount:  clonePtr(r.DiscountAmount),
		PdfURL:          clonePtr(r.PdfURL),
		PdfPath:         clonePtr(r.PdfPath),
	}
	o.EnsureCollections()
	return o
}

// SetOrder copies every field except ID and Seq from o.
func (r *OrderRecord) SetOrder(o Order) {
	o = o.Clone()
	o.EnsureCollections()
	r.Date = o.Date
	r.Company = o.Company
	r.Customer = o.Customer
	r.Phone = o.Phone
	r.Car = o.Car
	r.GovNumber = o.GovNumber
	r.VinNumber = o.VinNumber
	r.Mileage = o.Mileage
	r.Reason = o.Reason
	r.Status = o.Status
	r.Services = datatypes.JSONSlice[LineItem](o.Services)
	r.Parts = datatypes.JSONSlice[LineItem](o.Parts)
	r.Payments = datatypes.JSONSlice[Payment](o.Payments)
	r.DiscountPercent = o.DiscountPercent
	r.DiscountAmount = o.DiscountAmount
	r.PdfURL = o.PdfURL
	r.PdfPath = o.PdfPath
}
