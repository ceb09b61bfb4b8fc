package models

import "time"

type AppointmentStatus string

const (
	AppointmentNew        AppointmentStatus = "new"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentDone       AppointmentStatus = "done"
	AppointmentNoShow     AppointmentStatus = "no_show"
	AppointmentCanceled   AppointmentStatus = "canceled"
)

// Appointment is a calendar booking, optionally linked to a work order.
type Appointment struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	Title        string            `json:"title" gorm:"size:255"`
	Start        time.Time         `json:"start" gorm:"column:starts_at;index"`
	End          time.Time         `json:"end" gorm:"column:ends_at"`
	Status       AppointmentStatus `json:"status" gorm:"size:20;index"`
	CustomerName string            `json:"customerName" gorm:"size:255"`
	Phone        *string           `json:"phone" gorm:"size:64"`
	Vehicle      *string           `json:"vehicle" gorm:"size:255"`
	GovNumber    *string           `json:"govNumber" gorm:"size:32"`
	Vin          *string           `json:"vin" gorm:"size:32"`
	MasterID     *string           `json:"masterId" gorm:"size:64;index"`
	MasterName   *string           `json:"masterName" gorm:"size:255"`
	OrderID      *string           `json:"orderId" gorm:"size:32"`
	Total        *float64          `json:"total"`
	Paid         bool              `json:"paid"`
	Note         *string           `json:"note"`
	CreatedAt    time.Time         `json:"-"`
	UpdatedAt    time.Time         `json:"-"`
}
