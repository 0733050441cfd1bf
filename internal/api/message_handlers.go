package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"wedding-guestbook/internal/engine"
	"wedding-guestbook/internal/models"
)

func (s *Server) handleSubmitMessage(c *fiber.Ctx) error {
	var incoming models.Message
	if err := c.BodyParser(&incoming); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	incoming.LocalID = 0
	incoming.RemoteID = ""
	incoming.Likes = 0
	incoming.Replies = nil
	incoming.CreatedAt = time.Time{}
	incoming.UpdatedAt = time.Time{}

	saved, err := s.messages.Submit(&incoming)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

func (s *Server) handleListMessages(c *fiber.Ctx) error {
	return c.JSON(s.messages.Records())
}

func (s *Server) handleLikeMessage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	likes, err := s.messages.Like(id)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"likes": likes})
}

func (s *Server) handleAdminListMessages(c *fiber.Ctx) error {
	return c.JSON(s.messages.Records())
}

func (s *Server) handleReplyMessage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var reply models.Reply
	if err := c.BodyParser(&reply); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	return s.respondMutation(c, s.messages.AddReply(id, reply))
}

func (s *Server) handleEditMessage(c *fiber.Ctx) error {
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
	return s.respondMutation(c, s.messages.EditField(id, body.Field, body.Value))
}

func (s *Server) handleDeleteMessage(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	return s.respondMutation(c, s.messages.Delete(id))
}

func (s *Server) handleClearMessages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"removed": s.messages.ClearAll()})
}

func (s *Server) handleExportMessages(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="messages.csv"`)
	return c.SendString(s.messages.ExportCSV())
}

func (s *Server) handleImportMessages(c *fiber.Ctx) error {
	res, err := s.messages.ImportCSV(string(c.Body()))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(res)
}

func (s *Server) handleDiagnoseMessages(c *fiber.Ctx) error {
	return c.JSON(s.messages.Diagnose())
}

func (s *Server) handleDedupMessages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"removed": s.messages.Dedup()})
}
