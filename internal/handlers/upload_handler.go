package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/services"
)

type UploadHandler struct {
	registry services.SessionRegistry
	reader   services.UploadReader
}

func NewUploadHandler(registry services.SessionRegistry, reader services.UploadReader) *UploadHandler {
	return &UploadHandler{
		registry: registry,
		reader:   reader,
	}
}

// HandleUpload handles POST /sessions/:id/documents. Each document field is
// processed on its own; one failing file does not reject the others.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	session, err := lookupSession(c, h.registry)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	var (
		results []models.UploadResult
		failed  int
	)

	for _, kind := range models.DocumentKinds {
		files, exists := form.File[string(kind)]
		if !exists || len(files) == 0 {
			continue
		}
		file := files[0]

		result := models.UploadResult{Kind: kind}

		data, err := h.reader.ReadFile(file)
		if err == nil {
			result.Document, err = session.Upload(c.UserContext(), kind, file.Filename, data)
		}
		if err != nil {
			if errors.Is(err, services.ErrSessionEnded) {
				return fiber.NewError(fiber.StatusGone, err.Error())
			}
			result.Error = err.Error()
			failed++
		}

		results = append(results, result)
	}

	if len(results) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No documents uploaded. Use the fields 'cv', 'recommendation_letter', 'interests' or 'job_description'.",
		})
	}

	status := fiber.StatusCreated
	if failed == len(results) {
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(models.UploadResponse{
		State:     session.State(),
		Documents: results,
	})
}
