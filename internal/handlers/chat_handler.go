package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/services"
)

type ChatHandler struct {
	registry services.SessionRegistry
	logger   *zap.Logger
}

func NewChatHandler(registry services.SessionRegistry, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		registry: registry,
		logger:   logger,
	}
}

// HandleChat handles POST /sessions/:id/messages. With ?stream=true the reply
// is sent as server-sent events.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	session, err := lookupSession(c, h.registry)
	if err != nil {
		return err
	}

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.Content) == "" {
		return errorResponse(c, fiber.StatusBadRequest, services.ErrEmptyInput)
	}

	if session.State() == models.StateAwaitingCV {
		return errorResponse(c, fiber.StatusConflict, services.ErrCVRequired)
	}

	if c.QueryBool("stream") {
		return h.stream(c, session, req.Content)
	}

	turn, err := session.Ask(c.UserContext(), req.Content, nil)
	if err != nil {
		code := statusFor(err)
		if code == fiber.StatusInternalServerError {
			code = fiber.StatusBadGateway
		}
		return errorResponse(c, code, err)
	}

	return c.JSON(fiber.Map{
		"state": session.State(),
		"turn":  turn,
	})
}

func (h *ChatHandler) stream(c *fiber.Ctx, session *services.Session, content string) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// The writer runs after the handler returns, so it cannot use the request context.
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		turn, err := session.Ask(context.Background(), content, func(chunk string) {
			h.writeEvent(w, "chunk", fiber.Map{"content": chunk})
		})
		if err != nil {
			h.writeEvent(w, "error", fiber.Map{"error": err.Error(), "code": statusFor(err)})
			return
		}

		h.writeEvent(w, "done", fiber.Map{"state": session.State(), "turn": turn})
	}))

	return nil
}

func (h *ChatHandler) writeEvent(w *bufio.Writer, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("❌ Failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	if err := w.Flush(); err != nil {
		h.logger.Debug("client went away during stream", zap.Error(err))
	}
}
