package controllers

import (
	"errors"
	"strings"

	"autoservice-backend/database"
	"autoservice-backend/middlewares"
	"autoservice-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultServiceLimit = 20
	maxServiceLimit     = 200
)

type ServiceDTO struct {
	Name string `json:"name" validate:"required,max=255"`
}

// GET /api/services?q=&limit=
func GetServiceNames(c *fiber.Ctx) error {
	limit := utils.QueryLimit(c.Query("limit"), defaultServiceLimit, maxServiceLimit)
	names, err := database.SearchServiceNames(database.GetDB(c), c.Query("q"), limit)
	if err != nil {
		return serviceError(err, "could not list services")
	}
	return c.JSON(names)
}

// GET /api/services/records
func GetServiceRecords(c *fiber.Ctx) error {
	recs, err := database.ListServices(database.GetDB(c))
	if err != nil {
		return serviceError(err, "could not list services")
	}
	return c.JSON(recs)
}

// POST /api/services
func CreateService(c *fiber.Ctx) error {
	var in ServiceDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	rec, err := database.CreateService(database.GetDB(c), in.Name)
	if err != nil {
		return serviceError(err, "could not create service")
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// PUT /api/services/:id
func UpdateService(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing service id in path")
	}
	var in ServiceDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	rec, err := database.RenameService(database.GetDB(c), id, in.Name)
	if err != nil {
		return serviceError(err, "could not update service")
	}
	return c.JSON(rec)
}

// DELETE /api/services/:id
func DeleteService(c *fiber.Ctx) error {
	if err := database.DeleteService(database.GetDB(c), c.Params("id")); err != nil {
		return serviceError(err, "could not delete service")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func serviceError(err error, msg string) error {
	switch {
	case errors.Is(err, database.ErrServiceNotFound):
		return fiber.NewError(fiber.StatusNotFound, "service not found")
	case errors.Is(err, database.ErrServiceDuplicate):
		return fiber.NewError(fiber.StatusConflict, "service already exists")
	case errors.Is(err, database.ErrServiceEmpty):
		return fiber.NewError(fiber.StatusBadRequest, "service name is required")
	}
	logger.Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}
