package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/service"
	"github.com/avatarforge/api/pkg/response"
)

type ExportHandler struct {
	service   *service.ExportService
	sessions  *service.EditorService
	validator *validator.Validate
}

func NewExportHandler(svc *service.ExportService, sessions *service.EditorService, v *validator.Validate) *ExportHandler {
	return &ExportHandler{
		service:   svc,
		sessions:  sessions,
		validator: v,
	}
}

// Export handles POST /api/sessions/:sessionId/export
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	var req model.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Export(h.sessions, c.Params("sessionId"), &req)
	if err != nil {
		return sessionError(c, err)
	}

	return response.OK(c, result)
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
