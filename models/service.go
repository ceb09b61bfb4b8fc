package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceRecord is a catalog entry used to suggest line-item titles.
type ServiceRecord struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	NameKey   string    `json:"-" gorm:"size:255;not null;uniqueIndex"` // lower-cased Name
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *ServiceRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.NameKey = ServiceNameKey(s.Name)
	return
}

func (s *ServiceRecord) BeforeSave(tx *gorm.DB) (err error) {
	s.NameKey = ServiceNameKey(s.Name)
	return
}

// NormalizeServiceName trims and collapses inner whitespace.
func NormalizeServiceName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// ServiceNameKey is the case-insensitive identity of a catalog name.
func ServiceNameKey(name string) string {
	return strings.ToLower(NormalizeServiceName(name))
}

// DefaultServiceNames seeds an empty catalog.
var DefaultServiceNames = []string{
	"Компьютерная диагностика",
	"Диагностика ЭЛ. оборудования",
	"Диагностика ЭЛ. проводки",
	"Диагностика впускного тракта",
	"Диагностика выпускного тракта",
	"Ремонт трапеции",
	"Ремонт фар",
	"Ремонт кондиционера",
	"Ремонт зажигания",
	"Ремонт щитка приборов",
	"Ремонт печки",
	"Ремонт стеклоподъемника",
	"Ремонт замка",
	"Замена свечей",
	"Замена форсунок",
	"Замена катушек",
	"Замена моторчика",
	"Замена трапеции",
	"Замена фар",
	"Замена ремня",
	"Замена вентилятора",
	"Замена радиатора",
	"Замена стеклоподъемника",
	"Замена щитка приборов",
	"Замена замка",
	"Установка магнитолы",
	"Установка камеры з/в",
}
