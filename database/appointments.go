package database

import (
	"errors"
	"time"

	"autoservice-backend/models"

	"gorm.io/gorm"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentFilter narrows ListAppointments; zero fields are ignored.
type AppointmentFilter struct {
	From     time.Time
	To       time.Time
	MasterID string
	Statuses []models.AppointmentStatus
}

// ListAppointments returns matching appointments ordered by start time.
func ListAppointments(db *gorm.DB, f AppointmentFilter) ([]models.Appointment, error) {
	q := db.Model(&models.Appointment{})
	if !f.From.IsZero() {
		q = q.Where("starts_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("starts_at <= ?", f.To)
	}
	if f.MasterID != "" {
		q = q.Where("master_id = ?", f.MasterID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	var out []models.Appointment
	err := q.Order("starts_at ASC").Find(&out).Error
	return out, err
}

func CreateAppointment(db *gorm.DB, a *models.Appointment) error {
	return db.Create(a).Error
}

// UpdateAppointment applies column updates and returns the stored row.
func UpdateAppointment(db *gorm.DB, id uint, updates map[string]any) (models.Appointment, error) {
	var a models.Appointment
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a, ErrAppointmentNotFound
		}
		return a, err
	}
	if len(updates) > 0 {
		if err := db.Model(&models.Appointment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return a, err
		}
	}
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return a, err
	}
	return a, nil
}

// DeleteAppointment removes id; a missing row is not an error.
func DeleteAppointment(db *gorm.DB, id uint) error {
	return db.Where("id = ?", id).Delete(&models.Appointment{}).Error
}
