package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"wedding-guestbook/internal/engine"
	"wedding-guestbook/internal/models"
)

func parseID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func (s *Server) handleSubmitRSVP(c *fiber.Ctx) error {
	var incoming models.RSVP
	if err := c.BodyParser(&incoming); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	// submissions never carry moderation, sync state or timestamps
	incoming.LocalID = 0
	incoming.RemoteID = ""
	incoming.Approved = false
	incoming.PreviouslyApproved = false
	incoming.CreatedAt = time.Time{}
	incoming.UpdatedAt = time.Time{}

	saved, err := s.rsvps.Submit(&incoming)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (s *Server) handleAdminListRSVPs(c *fiber.Ctx) error {
	return c.JSON(s.rsvps.Records())
}

func (s *Server) handlePendingRSVPs(c *fiber.Ctx) error {
	return c.JSON(s.rsvps.Pending())
}

func (s *Server) handleApproveRSVP(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	return s.respondMutation(c, s.rsvps.Approve(id))
}

func (s *Server) handleUnapproveRSVP(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	return s.respondMutation(c, s.rsvps.Unapprove(id))
}

func (s *Server) handleToggleAttendance(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	return s.respondMutation(c, s.rsvps.ToggleAttendance(id))
}

func (s *Server) handleEditRSVP(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := s.rsvps.EditField(id, body.Field, body.Value); err != nil {
		switch {
		case errors.Is(err, engine.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleDeleteRSVP(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	return s.respondMutation(c, s.rsvps.Delete(id))
}

func (s *Server) handleClearRSVPs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"removed": s.rsvps.ClearAll()})
}

func (s *Server) handleExportRSVPs(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="rsvps.csv"`)
	return c.SendString(s.rsvps.ExportCSV())
}

func (s *Server) handleImportRSVPs(c *fiber.Ctx) error {
	res, err := s.rsvps.ImportCSV(string(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

func (s *Server) handleDiagnoseRSVPs(c *fiber.Ctx) error {
	return c.JSON(s.rsvps.Diagnose())
}

func (s *Server) handleDedupRSVPs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"removed": s.rsvps.Dedup()})
}

// respondMutation maps a mutation result to 204, 404 or 400.
func (s *Server) respondMutation(c *fiber.Ctx, err error) error {
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, engine.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
