package models

// Customer is a client as seen through one of their orders.
type Customer struct {
	OrderID   string     `json:"orderId"`
	Date      string     `json:"date"`
	Customer  string     `json:"customer"`
	Phone     string     `json:"phone"`
	Car       string     `json:"car"`
	GovNumber string     `json:"govNumber"`
	VinNumber string     `json:"vinNumber"`
	Reason    string     `json:"reason"`
	Status    WorkStatus `json:"status"`
}

func CustomerOf(o Order) Customer {
	return Customer{
		OrderID:   o.ID,
		Date:      o.Date,
		Customer:  o.Customer,
		Phone:     o.Phone,
		Car:       o.Car,
		GovNumber: o.GovNumber,
		VinNumber: o.VinNumber,
		Reason:    o.Reason,
		Status:    o.Status,
	}
}
