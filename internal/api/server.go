// Package api exposes the guest site over HTTP: a public surface for
// submissions and a token-guarded admin surface for moderation, sync and
// import/export.
package api

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"wedding-guestbook/internal/auth"
	"wedding-guestbook/internal/engine"
)

// Server wires the engines and the auth gate into a fiber app.
type Server struct {
	app      *fiber.App
	rsvps    *engine.RSVPEngine
	messages *engine.MessageEngine
	gate     *auth.Gate
	log      zerolog.Logger
}

// NewServer builds the HTTP surface on top of the given engines.
func NewServer(rsvps *engine.RSVPEngine, messages *engine.MessageEngine, gate *auth.Gate) *Server {
	s := &Server{
		app:      fiber.New(fiber.Config{DisableStartupMessage: true}),
		rsvps:    rsvps,
		messages: messages,
		gate:     gate,
		log:      zerolog.New(os.Stdout).With().Str("component", "api").Logger(),
	}
	s.routes()
	return s
}

// App returns the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server and flushes pending sync work.
func (s *Server) Shutdown() error {
	err := s.app.Shutdown()
	s.rsvps.Close()
	s.messages.Close()
	return err
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Post("/login", s.handleLogin)
	api.Post("/rsvps", s.handleSubmitRSVP)
	api.Get("/messages", s.handleListMessages)
	api.Post("/messages", s.handleSubmitMessage)
	api.Post("/messages/:id/like", s.handleLikeMessage)

	admin := api.Group("/admin", s.requireAuth)
	admin.Post("/logout", s.handleLogout)
	admin.Post("/reconcile", s.handleReconcile)

	// export routes go before the :id routes so "export" is not read as an id
	admin.Get("/rsvps", s.handleAdminListRSVPs)
	admin.Get("/rsvps/pending", s.handlePendingRSVPs)
	admin.Get("/rsvps/export", s.handleExportRSVPs)
	admin.Post("/rsvps/import", s.handleImportRSVPs)
	admin.Get("/rsvps/diagnose", s.handleDiagnoseRSVPs)
	admin.Post("/rsvps/dedup", s.handleDedupRSVPs)
	admin.Post("/rsvps/:id/approve", s.handleApproveRSVP)
	admin.Post("/rsvps/:id/unapprove", s.handleUnapproveRSVP)
	admin.Post("/rsvps/:id/toggle-attendance", s.handleToggleAttendance)
	admin.Patch("/rsvps/:id", s.handleEditRSVP)
	admin.Delete("/rsvps/:id", s.handleDeleteRSVP)
	admin.Delete("/rsvps", s.handleClearRSVPs)

	admin.Get("/messages", s.handleAdminListMessages)
	admin.Get("/messages/export", s.handleExportMessages)
	admin.Post("/messages/import", s.handleImportMessages)
	admin.Get("/messages/diagnose", s.handleDiagnoseMessages)
	admin.Post("/messages/dedup", s.handleDedupMessages)
	admin.Post("/messages/:id/replies", s.handleReplyMessage)
	admin.Patch("/messages/:id", s.handleEditMessage)
	admin.Delete("/messages/:id", s.handleDeleteMessage)
	admin.Delete("/messages", s.handleClearMessages)
}

// requireAuth admits requests carrying a live session token.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || !s.gate.Check(auth.SessionToken(token)) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	c.Locals("session", auth.SessionToken(token))
	return c.Next()
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var body struct {
		Secret string `json:"secret"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	token, err := s.gate.Verify(body.Secret)
	if err != nil {
		s.log.Warn().Str("ip", c.IP()).Msg("failed admin login")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.JSON(fiber.Map{"token": token})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if token, ok := c.Locals("session").(auth.SessionToken); ok {
		s.gate.Revoke(token)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleReconcile(c *fiber.Ctx) error {
	s.rsvps.Reconcile(c.UserContext())
	s.messages.Reconcile(c.UserContext())
	return c.JSON(fiber.Map{
		"rsvps":    len(s.rsvps.Records()),
		"messages": len(s.messages.Records()),
	})
}
