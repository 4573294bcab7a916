package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/services"
)

type SessionHandler struct {
	registry services.SessionRegistry
}

func NewSessionHandler(registry services.SessionRegistry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	session := h.registry.Create(c.UserContext())

	return c.Status(fiber.StatusCreated).JSON(models.SessionResponse{
		ID:    session.ID(),
		State: session.State(),
	})
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	session, err := lookupSession(c, h.registry)
	if err != nil {
		return err
	}

	msgs, err := session.Transcript(c.UserContext())
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(models.SessionResponse{
		ID:        session.ID(),
		State:     session.State(),
		Documents: session.Documents(),
		Messages:  msgs,
	})
}

// HandleEnd handles DELETE /sessions/:id
func (h *SessionHandler) HandleEnd(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session ID format")
	}

	if err := h.registry.End(c.UserContext(), id); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return errorResponse(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleTranscript handles GET /sessions/:id/messages
func (h *SessionHandler) HandleTranscript(c *fiber.Ctx) error {
	session, err := lookupSession(c, h.registry)
	if err != nil {
		return err
	}

	msgs, err := session.Transcript(c.UserContext())
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"state":    session.State(),
		"messages": msgs,
	})
}
