package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Sessions *SessionHandler
	Uploads  *UploadHandler
	Chat     *ChatHandler
	Search   *SearchHandler
}

func RegisterRoutes(app *fiber.App, h Handlers) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/sessions", h.Sessions.HandleCreate)
	api.Get("/sessions/:id", h.Sessions.HandleGet)
	api.Delete("/sessions/:id", h.Sessions.HandleEnd)
	api.Post("/sessions/:id/documents", h.Uploads.HandleUpload)
	api.Get("/sessions/:id/messages", h.Sessions.HandleTranscript)
	api.Post("/sessions/:id/messages", h.Chat.HandleChat)
	api.Get("/sessions/:id/search", h.Search.HandleSearch)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Candidate Assistant API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"DELETE /api/v1/sessions/:id",
				"POST /api/v1/sessions/:id/documents",
				"GET /api/v1/sessions/:id/messages",
				"POST /api/v1/sessions/:id/messages",
				"GET /api/v1/sessions/:id/search",
			},
		})
	})
}
