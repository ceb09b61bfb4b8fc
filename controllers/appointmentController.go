package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"autoservice-backend/database"
	"autoservice-backend/middlewares"
	"autoservice-backend/models"
	"autoservice-backend/utils"

	"github.com/gofiber/fiber/v2"
)

const defaultAppointmentLength = time.Hour

type AppointmentCreateDTO struct {
	Title        string                   `json:"title" validate:"max=255"`
	Start        *time.Time               `json:"start"`
	End          *time.Time               `json:"end"`
	Status       models.AppointmentStatus `json:"status" validate:"omitempty,oneof=new confirmed in_progress done no_show canceled"`
	CustomerName string                   `json:"customerName" validate:"max=255"`
	Phone        *string                  `json:"phone"`
	Vehicle      *string                  `json:"vehicle"`
	GovNumber    *string                  `json:"govNumber"`
	Vin          *string                  `json:"vin"`
	MasterID     *string                  `json:"masterId"`
	MasterName   *string                  `json:"masterName"`
	OrderID      *string                  `json:"orderId"`
	Total        *float64                 `json:"total" validate:"omitempty,gte=0"`
	Paid         bool                     `json:"paid"`
	Note         *string                  `json:"note"`
}

type AppointmentUpdateDTO struct {
	Title        *string                   `json:"title" validate:"omitempty,max=255"`
	Start        *time.Time                `json:"start"`
	End          *time.Time                `json:"end"`
	Status       *models.AppointmentStatus `json:"status" validate:"omitempty,oneof=new confirmed in_progress done no_show canceled"`
	CustomerName *string                   `json:"customerName" validate:"omitempty,max=255"`
	Phone        *string                   `json:"phone"`
	Vehicle      *string                   `json:"vehicle"`
	GovNumber    *string                   `json:"govNumber"`
	Vin          *string                   `json:"vin"`
	MasterID     *string                   `json:"masterId"`
	MasterName   *string                   `json:"masterName"`
	OrderID      *string                   `json:"orderId"`
	Total        *float64                  `json:"total" validate:"omitempty,gte=0"`
	Paid         *bool                     `json:"paid"`
	Note         *string                   `json:"note"`
}

// json key -> column
var appointmentColumns = map[string]string{
	"start":        "starts_at",
	"end":          "ends_at",
	"customerName": "customer_name",
	"govNumber":    "gov_number",
	"masterId":     "master_id",
	"masterName":   "master_name",
	"orderId":      "order_id",
}

// GET /api/appointments?from=&to=&masterId=&statuses=a,b
func GetAppointments(c *fiber.Ctx) error {
	var f database.AppointmentFilter
	var err error
	if f.From, err = parseInstant(c.Query("from")); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid from")
	}
	if f.To, err = parseInstant(c.Query("to")); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid to")
	}
	f.MasterID = strings.TrimSpace(c.Query("masterId"))
	for _, s := range strings.Split(c.Query("statuses"), ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			f.Statuses = append(f.Statuses, models.AppointmentStatus(s))
		}
	}

	items, err := database.ListAppointments(database.GetDB(c), f)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not list appointments")
	}
	return c.JSON(items)
}

// POST /api/appointments
func CreateAppointment(c *fiber.Ctx) error {
	var in AppointmentCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)

	start := now().UTC()
	if in.Start != nil {
		start = in.Start.UTC()
	}
	end := start.Add(defaultAppointmentLength)
	if in.End != nil {
		end = in.End.UTC()
	}
	if end.Before(start) {
		return fiber.NewError(fiber.StatusBadRequest, "end is before start")
	}
	title := in.Title
	if title == "" {
		title = "Запись"
	}
	status := in.Status
	if status == "" {
		status = models.AppointmentConfirmed
	}

	a := models.Appointment{
		Title:        title,
		Start:        start,
		End:          end,
		Status:       status,
		CustomerName: in.CustomerName,
		Phone:        in.Phone,
		Vehicle:      in.Vehicle,
		GovNumber:    in.GovNumber,
		Vin:          in.Vin,
		MasterID:     in.MasterID,
		MasterName:   in.MasterName,
		OrderID:      in.OrderID,
		Total:        in.Total,
		Paid:         in.Paid,
		Note:         in.Note,
	}
	if err := database.CreateAppointment(database.GetDB(c), &a); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create appointment")
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

// PUT /api/appointments/:id
func UpdateAppointment(c *fiber.Ctx) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	var in AppointmentUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	if in.Start != nil {
		t := in.Start.UTC()
		in.Start = &t
	}
	if in.End != nil {
		t := in.End.UTC()
		in.End = &t
	}

	updates := utils.Updates(&in, appointmentColumns)
	a, err := database.UpdateAppointment(database.GetDB(c), id, updates)
	if err != nil {
		if errors.Is(err, database.ErrAppointmentNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "appointment not found")
		}
		return fiber.NewError(fiber.StatusBadRequest, "could not update appointment")
	}
	return c.JSON(a)
}

// DELETE /api/appointments/:id
func DeleteAppointment(c *fiber.Ctx) error {
	id, err := appointmentID(c)
	if err != nil {
		return err
	}
	if err := database.DeleteAppointment(database.GetDB(c), id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not delete appointment")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func appointmentID(c *fiber.Ctx) (uint, error) {
	n, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid appointment id")
	}
	return uint(n), nil
}

// parseInstant accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(isoDate, s)
}
