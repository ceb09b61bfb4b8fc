package controllers

import (
	"sort"
	"strings"

	"autoservice-backend/database"
	"autoservice-backend/models"
	"autoservice-backend/utils"
	"autoservice-backend/workorder"

	"github.com/gofiber/fiber/v2"
)

// GET /api/customers?q=
// Empty query yields an empty list rather than every order.
func GetCustomers(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if q == "" {
		return c.JSON([]models.Customer{})
	}

	orders, err := database.ListOrders(database.GetDB(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load customers")
	}

	out := []models.Customer{}
	for _, o := range orders {
		haystack := strings.ToLower(strings.Join([]string{o.Customer, o.Phone, o.GovNumber, o.VinNumber, o.Reason}, " "))
		if !strings.Contains(haystack, q) {
			continue
		}
		o.Status = workorder.NormalizeStatus(o.Status)
		out = append(out, models.CustomerOf(o))
	}
	return c.JSON(out)
}

// GET /api/companies?q=
func GetCompanies(c *fiber.Ctx) error {
	orders, err := database.ListOrders(database.GetDB(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not load companies")
	}
	return c.JSON(summarizeCompanies(orders, c.Query("q")))
}

// summarizeCompanies groups orders by company. An order counts with what was
// paid on it, or with its priced total while nothing is paid yet. With a
// query only matching orders are kept, and companies left empty are dropped.
func summarizeCompanies(orders []models.Order, query string) []models.Company {
	q := strings.ToLower(strings.TrimSpace(query))
	byKey := map[string]*models.Company{}
	var keys []string

	for _, o := range orders {
		name := strings.TrimSpace(o.Company)
		if name == "" {
			continue
		}
		if q != "" {
			haystack := strings.ToLower(strings.Join([]string{o.Company, o.Customer, o.Car, o.GovNumber, o.Phone}, " "))
			if !strings.Contains(haystack, q) {
				continue
			}
		}
		key := strings.ToLower(name)
		co, ok := byKey[key]
		if !ok {
			co = &models.Company{Name: name, Orders: []models.Customer{}}
			byKey[key] = co
			keys = append(keys, key)
		}

		o.Status = workorder.NormalizeStatus(o.Status)
		co.OrderCount++
		switch o.Status {
		case models.StatusPayed:
			co.Payed++
		case models.StatusInProgress, models.StatusPendingPayment:
			co.InProgress++
		}
		amount := workorder.Paid(o.Payments)
		if amount <= 0 {
			amount = workorder.OrderTotals(o).Total
		}
		co.Total = utils.Round2(co.Total + amount)
		co.Orders = append(co.Orders, models.CustomerOf(o))
	}

	out := make([]models.Company, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].OrderCount > out[j].OrderCount
	})
	return out
}
