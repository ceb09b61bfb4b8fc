package controllers

import (
	"sort"
	"time"

	"autoservice-backend/database"
	"autoservice-backend/models"
	"autoservice-backend/utils"
	"autoservice-backend/workorder"

	"github.com/gofiber/fiber/v2"
)

const isoDate = "2006-01-02"

type PendingOrder struct {
	models.Order
	Total float64 `json:"total"`
	Paid  float64 `json:"paid"`
	Due   float64 `json:"due"`
}

type RevenueMonth struct {
	Month    string  `json:"month"`
	Orders   int     `json:"orders"`
	Services float64 `json:"services"`
	Parts    float64 `json:"parts"`
	Revenue  float64 `json:"revenue"`
}

type RevenueReport struct {
	From   string         `json:"from,omitempty"`
	To     string         `json:"to,omitempty"`
	Count  int            `json:"count"`
	Total  float64        `json:"total"`
	Months []RevenueMonth `json:"months"`
}

// GET /api/orders/pending
func GetPendingOrders(c *fiber.Ctx) error {
	orders, err := database.ListOrdersByStatus(database.GetDB(c), models.StatusPendingPayment)
	if err != nil {
		return orderError(err, "could not list pending orders")
	}
	out := make([]PendingOrder, 0, len(orders))
	for _, o := range orders {
		out = append(out, PendingOrder{
			Order: o,
			Total: utils.Round2(workorder.OrderTotals(o).Total),
			Paid:  utils.Round2(workorder.Paid(o.Payments)),
			Due:   workorder.Due(o),
		})
	}
	return c.JSON(out)
}

// GET /api/reports/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD
func GetRevenueReport(c *fiber.Ctx) error {
	from, err := parseReportDate(c.Query("from"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
	}
	to, err := parseReportDate(c.Query("to"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return fiber.NewError(fiber.StatusBadRequest, "to is before from")
	}

	orders, err := database.ListOrdersByStatus(database.GetDB(c), models.StatusPayed)
	if err != nil {
		return orderError(err, "could not build report")
	}

	report := RevenueReport{From: c.Query("from"), To: c.Query("to"), Months: []RevenueMonth{}}
	buckets := map[string]*RevenueMonth{}
	for _, o := range orders {
		day, err := time.Parse(workorder.DateLayout, o.Date)
		if err != nil {
			continue
		}
		if (!from.IsZero() && day.Before(from)) || (!to.IsZero() && day.After(to)) {
			continue
		}
		t := workorder.OrderTotals(o)
		key := day.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &RevenueMonth{Month: key}
			buckets[key] = b
		}
		b.Orders++
		b.Services += t.ServicesTotal - t.DiscountValue
		b.Parts += t.PartsTotal
		b.Revenue += t.Total
		report.Count++
		report.Total += t.Total
	}

	for _, b := range buckets {
		b.Services = utils.Round2(b.Services)
		b.Parts = utils.Round2(b.Parts)
		b.Revenue = utils.Round2(b.Revenue)
		report.Months = append(report.Months, *b)
	}
	sort.Slice(report.Months, func(i, j int) bool { return report.Months[i].Month < report.Months[j].Month })
	report.Total = utils.Round2(report.Total)
	return c.JSON(report)
}

func parseReportDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(isoDate, s)
}
