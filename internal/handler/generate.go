package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/service"
	"github.com/avatarforge/api/internal/store"
	"github.com/avatarforge/api/pkg/response"
)

type GenerateHandler struct {
	service   *service.GenerationService
	validator *validator.Validate
}

func NewGenerateHandler(svc *service.GenerationService, v *validator.Validate) *GenerateHandler {
	return &GenerateHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /api/sessions/:sessionId/generate
func (h *GenerateHandler) Start(c *fiber.Ctx) error {
	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Generate(c.Context(), c.Params("sessionId"), &req)
	if err != nil {
		return sessionError(c, err)
	}

	return response.Accepted(c, result)
}

// List handles GET /api/sessions/:sessionId/tasks
func (h *GenerateHandler) List(c *fiber.Ctx) error {
	result, err := h.service.ListTasks(c.Params("sessionId"))
	if err != nil {
		return sessionError(c, err)
	}
	return response.OK(c, result)
}

// Status handles GET /api/sessions/:sessionId/tasks/:taskId
func (h *GenerateHandler) Status(c *fiber.Ctx) error {
	task, err := h.service.GetTask(c.Params("sessionId"), c.Params("taskId"))
	if err != nil {
		if err == store.ErrTaskNotFound {
			return response.NotFound(c, "Task not found")
		}
		return sessionError(c, err)
	}
	return response.OK(c, task)
}

// Cancel handles POST /api/sessions/:sessionId/tasks/:taskId/cancel
func (h *GenerateHandler) Cancel(c *fiber.Ctx) error {
	task, err := h.service.Cancel(c.Params("sessionId"), c.Params("taskId"))
	if err != nil {
		if err == store.ErrTaskNotFound {
			return response.NotFound(c, "Task not found")
		}
		return sessionError(c, err)
	}
	return response.OK(c, task)
}
