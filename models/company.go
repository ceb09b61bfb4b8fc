package models

// Company aggregates the orders placed under one company name.
// Names are grouped case-insensitively; Name keeps the spelling of the
// newest order.
type Company struct {
	Name       string     `json:"name"`
	OrderCount int        `json:"orderCount"`
	Payed      int        `json:"payed"`
	InProgress int        `json:"inProgress"`
	Total      float64    `json:"total"`
	Orders     []Customer `json:"orders"`
}
