package database

import (
	"errors"
	"strings"

	"autoservice-backend/models"

	"gorm.io/gorm"
)

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrServiceDuplicate = errors.New("service already exists")
	ErrServiceEmpty     = errors.New("service name is required")
)

// ListServices returns catalog entries ordered by name.
func ListServices(db *gorm.DB) ([]models.ServiceRecord, error) {
	var out []models.ServiceRecord
	err := db.Order("name_key ASC").Find(&out).Error
	return out, err
}

// SearchServiceNames returns names containing q (case-insensitive). An empty
// q returns every name; otherwise at most limit names.
func SearchServiceNames(db *gorm.DB, q string, limit int) ([]string, error) {
	query := db.Model(&models.ServiceRecord{}).Order("name_key ASC")
	if key := models.ServiceNameKey(q); key != "" {
		// name_key is lower-cased in Go, so non-ASCII names match on both drivers
		query = query.Where("name_key LIKE ? ESCAPE '\\'", "%"+escapeLike(key)+"%")
		if limit > 0 {
			query = query.Limit(limit)
		}
	}
	var names []string
	if err := query.Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func CreateService(db *gorm.DB, name string) (models.ServiceRecord, error) {
	name = models.NormalizeServiceName(name)
	if name == "" {
		return models.ServiceRecord{}, ErrServiceEmpty
	}
	rec := models.ServiceRecord{Name: name}
	if err := db.Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ServiceRecord{}, ErrServiceDuplicate
		}
		return models.ServiceRecord{}, err
	}
	return rec, nil
}

func RenameService(db *gorm.DB, id, name string) (models.ServiceRecord, error) {
	name = models.NormalizeServiceName(name)
	if name == "" {
		return models.ServiceRecord{}, ErrServiceEmpty
	}
	var rec models.ServiceRecord
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rec, ErrServiceNotFound
		}
		return rec, err
	}
	rec.Name = name
	if err := db.Save(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.ServiceRecord{}, ErrServiceDuplicate
		}
		return models.ServiceRecord{}, err
	}
	return rec, nil
}

func DeleteService(db *gorm.DB, id string) error {
	res := db.Where("id = ?", id).Delete(&models.ServiceRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// SeedServices inserts the default names into an empty catalog.
func SeedServices(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.ServiceRecord{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	seen := make(map[string]bool, len(models.DefaultServiceNames))
	recs := make([]models.ServiceRecord, 0, len(models.DefaultServiceNames))
	for _, name := range models.DefaultServiceNames {
		key := models.ServiceNameKey(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		recs = append(recs, models.ServiceRecord{Name: models.NormalizeServiceName(name)})
	}
	return db.Create(&recs).Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
