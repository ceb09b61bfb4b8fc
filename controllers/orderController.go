package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"autoservice-backend/database"
	"autoservice-backend/middlewares"
	"autoservice-backend/models"
	"autoservice-backend/utils"
	"autoservice-backend/workorder"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderInput is both the create and the update DTO: nil fields are left alone.
type OrderInput struct {
	Date            *string            `json:"date" validate:"omitempty,ddmmyyyy"`
	Company         *string            `json:"company" validate:"omitempty,max=255"`
	Customer        *string            `json:"customer" validate:"omitempty,max=255"`
	Phone           *string            `json:"phone" validate:"omitempty,max=64"`
	Car             *string            `json:"car" validate:"omitempty,max=255"`
	GovNumber       *string            `json:"govNumber" validate:"omitempty,max=32"`
	VinNumber       *string            `json:"vinNumber" validate:"omitempty,max=32"`
	Mileage         *float64           `json:"mileage" validate:"omitempty,gte=0"`
	Reason          *string            `json:"reason"`
	Status          *models.WorkStatus `json:"status"`
	Services        *[]models.LineItem `json:"services" validate:"omitempty,dive"`
	Parts           *[]models.LineItem `json:"parts" validate:"omitempty,dive"`
	Payments        *[]models.Payment  `json:"payments" validate:"omitempty,dive"`
	DiscountPercent *float64           `json:"discountPercent" validate:"omitempty,gte=0"`
	DiscountAmount  *float64           `json:"discountAmount" validate:"omitempty,gte=0"`
	PdfURL          *string            `json:"pdfUrl"`
	PdfPath         *string            `json:"pdfPath"`
}

func (in OrderInput) draft() models.OrderDraft {
	return models.OrderDraft{
		Date:            in.Date,
		Company:         in.Company,
		Customer:        in.Customer,
		Phone:           in.Phone,
		Car:             in.Car,
		GovNumber:       in.GovNumber,
		VinNumber:       in.VinNumber,
		Mileage:         in.Mileage,
		Reason:          in.Reason,
		Status:          in.Status,
		Services:        in.Services,
		Parts:           in.Parts,
		Payments:        in.Payments,
		DiscountPercent: in.DiscountPercent,
		DiscountAmount:  in.DiscountAmount,
		PdfURL:          in.PdfURL,
		PdfPath:         in.PdfPath,
	}
}

func bindOrder(c *fiber.Ctx) (OrderInput, map[string]bool, error) {
	var in OrderInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return in, nil, err
	}
	utils.Normalize(&in)
	return in, explicitNulls(c.Body()), nil
}

// explicitNulls lists the top-level keys whose value is JSON null.
func explicitNulls(body []byte) map[string]bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	out := map[string]bool{}
	for k, v := range raw {
		if string(bytes.TrimSpace(v)) == "null" {
			out[k] = true
		}
	}
	return out
}

// clearNulls resets the optional fields the client sent as null.
func clearNulls(o *models.Order, nulls map[string]bool) {
	if nulls["mileage"] {
		o.Mileage = nil
	}
	if nulls["discountPercent"] {
		o.DiscountPercent = nil
	}
	if nulls["discountAmount"] {
		o.DiscountAmount = nil
	}
	if nulls["pdfUrl"] {
		o.PdfURL = nil
	}
	if nulls["pdfPath"] {
		o.PdfPath = nil
	}
}

// GET /api/orders
func GetOrders(c *fiber.Ctx) error {
	db := database.GetDB(c)

	var (
		orders []models.Order
		err    error
	)
	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		orders, err = database.ListOrdersByStatus(db, workorder.NormalizeStatus(models.WorkStatus(status)))
	} else {
		orders, err = database.ListOrders(db)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list orders")
	}

	q := c.Query("q")
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		o.Status = workorder.NormalizeStatus(o.Status)
		if matchesQuery(o, q) {
			out = append(out, o)
		}
	}
	return c.JSON(out)
}

// GET /api/orders/:id
func GetOrder(c *fiber.Ctx) error {
	o, err := database.FindOrder(database.GetDB(c), c.Params("id"))
	if err != nil {
		return orderError(err, "could not load order")
	}
	o.Status = workorder.NormalizeStatus(o.Status)
	return c.JSON(o)
}

// POST /api/orders
func CreateOrder(c *fiber.Ctx) error {
	in, _, err := bindOrder(c)
	if err != nil {
		return err
	}

	o := in.draft().ApplyTo(workorder.Skeleton(now()))
	if strings.TrimSpace(o.Date) == "" {
		o.Date = now().Format(workorder.DateLayout)
	}
	o.Status = workorder.DeriveStatus(o, in.Status != nil)

	created, err := database.CreateOrder(database.GetDB(c), o)
	if err != nil {
		logger.Error("create order failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not create order")
	}
	middlewares.OrdersCreatedTotal.Inc()
	return c.Status(fiber.StatusCreated).JSON(created)
}

// PUT /api/orders/:id
func UpdateOrder(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing order id in path")
	}

	in, nulls, err := bindOrder(c)
	if err != nil {
		return err
	}

	db := database.GetDB(c)
	existing, err := database.FindOrder(db, id)
	if err != nil {
		return orderError(err, "could not load order")
	}

	merged := in.draft().ApplyTo(existing)
	clearNulls(&merged, nulls)
	merged.ID = id
	merged.Status = workorder.DeriveStatus(merged, true)

	saved, err := database.SaveOrder(db, id, merged)
	if err != nil {
		return orderError(err, "could not update order")
	}
	return c.JSON(saved)
}

// DELETE /api/orders/:id
func DeleteOrder(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := database.DeleteOrder(database.GetDB(c), id); err != nil {
		return orderError(err, "could not delete order")
	}
	if ticketStore != nil {
		if err := ticketStore.DeleteAll(id); err != nil {
			logger.Warn("delete ticket files failed", zap.String("order", id), zap.Error(err))
		}
	}
	middlewares.OrdersDeletedTotal.Inc()
	return c.SendStatus(fiber.StatusNoContent)
}

func orderError(err error, msg string) error {
	if errors.Is(err, database.ErrOrderNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}
	logger.Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// matchesQuery is a case-insensitive match across the searchable fields,
// plus a digits-only match so "+7 (900)" finds "79001234567".
func matchesQuery(o models.Order, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		o.ID, o.Customer, o.Company, o.Car, o.GovNumber, o.VinNumber, o.Phone, o.Reason,
	}, " "))
	if strings.Contains(haystack, q) {
		return true
	}
	digits := onlyDigits(q)
	if digits == "" {
		return false
	}
	for _, f := range []string{o.Phone, o.GovNumber, o.ID} {
		if strings.Contains(onlyDigits(f), digits) {
			return true
		}
	}
	return false
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
