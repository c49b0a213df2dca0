package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/pkg/utils"
	"github.com/trackmap-service/internal/pkg/validator"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/usecase/dto"
)

// InteractionHandler - mouse event endpoint
type InteractionHandler struct {
	interactionUC *usecase.InteractionUseCase
	logger        *zap.Logger
}

// NewInteractionHandler - creates a new InteractionHandler
func NewInteractionHandler(interactionUC *usecase.InteractionUseCase, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactionUC: interactionUC,
		logger:        logger,
	}
}

// Mouse godoc
// @Summary Send a mouse event
// @Description Dispatches one mouse event (down, move, up or click) into the session's interaction machine. Ctrl starts the distance ruler; drags edit the bound geozone
// @Tags Interaction
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.MouseRequest true "Mouse event"
// @Success 200 {object} utils.SuccessResponse{data=dto.MouseResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/mouse [post]
func (h *InteractionHandler) Mouse(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.MouseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.interactionUC.HandleMouse(id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}
