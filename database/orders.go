package database

import (
	"errors"
	"fmt"

	"autoservice-backend/models"

	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

const createAttempts = 3

// ListOrders returns all orders, newest id first.
func ListOrders(db *gorm.DB) ([]models.Order, error) {
	var rows []models.OrderRecord
	if err := db.Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// ListOrdersByStatus returns the orders in status, newest id first.
func ListOrdersByStatus(db *gorm.DB, status models.WorkStatus) ([]models.Order, error) {
	var rows []models.OrderRecord
	if err := db.Where("status = ?", status).Order("seq DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

func FindOrder(db *gorm.DB, id string) (models.Order, error) {
	rec, err := findRecord(db, id)
	if err != nil {
		return models.Order{}, err
	}
	return rec.ToOrder(), nil
}

// NextOrderID formats max(seq)+1 as a six digit id.
func NextOrderID(db *gorm.DB) (string, int64, error) {
	var max int64
	if err := db.Model(&models.OrderRecord{}).Select("COALESCE(MAX(seq), 0)").Row().Scan(&max); err != nil {
		return "", 0, err
	}
	next := max + 1
	return fmt.Sprintf("%06d", next), next, nil
}

// CreateOrder stores o under a freshly assigned id. A concurrent insert that
// takes the same id is retried with the next one.
func CreateOrder(db *gorm.DB, o models.Order) (models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		id, seq, err := NextOrderID(db)
		if err != nil {
			return models.Order{}, err
		}
		rec := models.OrderRecord{ID: id, Seq: seq}
		rec.SetOrder(o)
		err = db.Create(&rec).Error
		if err == nil {
			return rec.ToOrder(), nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Order{}, err
		}
		lastErr = err
	}
	return models.Order{}, fmt.Errorf("assign order id: %w", lastErr)
}

// SaveOrder replaces every field of the stored order id with o. The id is kept.
func SaveOrder(db *gorm.DB, id string, o models.Order) (models.Order, error) {
	rec, err := findRecord(db, id)
	if err != nil {
		return models.Order{}, err
	}
	rec.SetOrder(o)
	if err := db.Save(&rec).Error; err != nil {
		return models.Order{}, err
	}
	return rec.ToOrder(), nil
}

func DeleteOrder(db *gorm.DB, id string) error {
	res := db.Where("id = ?", id).Delete(&models.OrderRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// OrderIDs lists every stored order id.
func OrderIDs(db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.Model(&models.OrderRecord{}).Pluck("id", &ids).Error
	return ids, err
}

func findRecord(db *gorm.DB, id string) (models.OrderRecord, error) {
	var rec models.OrderRecord
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, ErrOrderNotFound
		}
		return rec, err
	}
	return rec, nil
}

func toOrders(rows []models.OrderRecord) []models.Order {
	out := make([]models.Order, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToOrder())
	}
	return out
}
