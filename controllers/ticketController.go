package controllers

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"autoservice-backend/database"
	"autoservice-backend/middlewares"
	"autoservice-backend/models"
	"autoservice-backend/tickets"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func requireTicketStore() (*tickets.Store, error) {
	if ticketStore == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "ticket storage not configured")
	}
	return ticketStore, nil
}

// POST /api/files/tickets/:ticketId/pdf
func UploadTicket(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	id := tickets.SanitizeID(c.Params("ticketId"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid ticket id")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	mime := fh.Header.Get(fiber.HeaderContentType)
	isPDF := strings.HasPrefix(mime, "application/pdf") || strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf")
	if !isPDF {
		return fiber.NewError(fiber.StatusBadRequest, "only PDF files are accepted")
	}

	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not read upload")
	}
	defer f.Close()

	ref, err := store.Save(id, fh.Filename, f)
	if err != nil {
		return ticketError(err, "could not store ticket")
	}
	middlewares.TicketFilesUploadedTotal.Inc()
	return c.JSON(ref)
}

// POST /api/orders/:id/ticket renders the ticket of a paid order on the
// server, stores it and stamps the order.
func IssueTicket(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	db := database.GetDB(c)
	o, err := database.FindOrder(db, c.Params("id"))
	if err != nil {
		return orderError(err, "could not load order")
	}
	if o.Status != models.StatusPayed {
		return fiber.NewError(fiber.StatusConflict, "order is not paid")
	}

	pdf, err := renderer.RenderBytes(o)
	if err != nil {
		logger.Error("render ticket failed", zap.String("order", o.ID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "could not render ticket")
	}
	ref, err := store.Save(o.ID, tickets.DefaultName(o.ID), bytes.NewReader(pdf))
	if err != nil {
		return ticketError(err, "could not store ticket")
	}
	o.AttachTicket(&ref)
	if _, err := database.SaveOrder(db, o.ID, o); err != nil {
		return orderError(err, "could not stamp ticket")
	}
	middlewares.TicketFilesUploadedTotal.Inc()
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// GET /api/tickets
func ListTickets(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	items, err := store.List()
	if err != nil {
		return ticketError(err, "could not list tickets")
	}
	return c.JSON(items)
}

// GET /api/tickets/:ticketId/pdf
func GetTicket(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	full, err := store.Path(c.Params("ticketId"), c.Query("filename"))
	if err != nil {
		return ticketError(err, "could not read ticket")
	}
	return sendPDF(c, full)
}

// DELETE /api/tickets/:ticketId/pdf
func DeleteTicket(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	if err := store.Delete(c.Params("ticketId"), c.Query("filename")); err != nil {
		return ticketError(err, "could not delete ticket")
	}
	return c.JSON(fiber.Map{"message": "success"})
}

// GET /api/tickets/file/:name
func GetTicketFile(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	full, err := store.FindByName(c.Params("name"), c.Query("ticketId"))
	if err != nil {
		return ticketError(err, "could not read ticket")
	}
	return sendPDF(c, full)
}

// DELETE /api/tickets/file/:name
func DeleteTicketFile(c *fiber.Ctx) error {
	store, err := requireTicketStore()
	if err != nil {
		return err
	}
	if err := store.DeleteByName(c.Params("name"), c.Query("ticketId")); err != nil {
		return ticketError(err, "could not delete ticket")
	}
	return c.JSON(fiber.Map{"message": "success"})
}

func sendPDF(c *fiber.Ctx, full string) error {
	if c.QueryBool("download") {
		return c.Download(full, filepath.Base(full))
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.SendFile(full)
}

func ticketError(err error, msg string) error {
	switch {
	case errors.Is(err, tickets.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "ticket not found")
	case errors.Is(err, tickets.ErrInvalidID), errors.Is(err, tickets.ErrInvalidPath):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	logger.Error(msg, zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}
