package controllers

import (
	"strings"

	"autoservice-backend/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LoginDTO struct {
	Login    string `json:"login" validate:"required,max=128"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	// Passwords are compared as sent.
	in.Login = strings.TrimSpace(in.Login)
	if err := middlewares.ValidateStruct(&in); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if operator == nil || in.Login != operator.Login || operator.ComparePassword(in.Password) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(operator.Login)
	if err != nil {
		logger.Error("sign token failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(fiber.Map{"token": token})
}

// GET /api/auth/me
func Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"login": middlewares.CurrentLogin(c)})
}
