package handler

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/service"
	"github.com/avatarforge/api/internal/store"
	"github.com/avatarforge/api/pkg/response"
)

type SessionHandler struct {
	service   *service.EditorService
	validator *validator.Validate
}

func NewSessionHandler(svc *service.EditorService, v *validator.Validate) *SessionHandler {
	return &SessionHandler{
		service:   svc,
		validator: v,
	}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	sess, err := h.service.CreateSession()
	if err != nil {
		if err == service.ErrTooManySessions {
			return response.Error(c, fiber.StatusServiceUnavailable, response.CodeServiceError, "Session limit reached", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Created(c, model.SessionResponse{
		SessionID:   sess.ID,
		State:       sess.Working(),
		ActiveIndex: sess.Variations.ActiveIndex(),
		Variations:  sess.Variations.Len(),
	})
}

// Get handles GET /api/sessions/:sessionId
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	result, err := h.service.State(c.Params("sessionId"))
	if err != nil {
		return sessionError(c, err)
	}
	return response.OK(c, result)
}

// UpdateCharacter handles PATCH /api/sessions/:sessionId/character
func (h *SessionHandler) UpdateCharacter(c *fiber.Ctx) error {
	var req model.UpdateCharacterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	state, err := h.service.UpdateCharacter(c.Params("sessionId"), &req)
	if err != nil {
		switch err {
		case store.ErrStaleEdit:
			return response.StaleEdit(c, "Active variation changed; edit discarded")
		case store.ErrIndexOutOfRange:
			return response.NotFound(c, "Variation not found")
		}
		return sessionError(c, err)
	}

	return response.OK(c, state)
}

// Geometry handles GET /api/sessions/:sessionId/geometry
func (h *SessionHandler) Geometry(c *fiber.Ctx) error {
	desc, err := h.service.Geometry(c.Params("sessionId"))
	if err != nil {
		return sessionError(c, err)
	}
	return response.OK(c, desc)
}

// ListVariations handles GET /api/sessions/:sessionId/variations
func (h *SessionHandler) ListVariations(c *fiber.Ctx) error {
	result, err := h.service.ListVariations(c.Params("sessionId"))
	if err != nil {
		return sessionError(c, err)
	}
	return response.OK(c, result)
}

// SelectVariation handles POST /api/sessions/:sessionId/variations/:index/select
func (h *SessionHandler) SelectVariation(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return response.ValidationError(c, "Invalid variation index", nil)
	}

	state, err := h.service.SelectVariation(c.Params("sessionId"), index)
	if err != nil {
		if err == store.ErrIndexOutOfRange {
			return response.NotFound(c, "Variation not found")
		}
		return sessionError(c, err)
	}

	return response.OK(c, state)
}

func sessionError(c *fiber.Ctx, err error) error {
	if err == service.ErrSessionNotFound {
		return response.NotFound(c, "Session not found")
	}
	return response.ServiceError(c, err.Error())
}
