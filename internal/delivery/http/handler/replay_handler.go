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

// ReplayHandler - replay control endpoint
type ReplayHandler struct {
	replayUC *usecase.ReplayUseCase
	logger   *zap.Logger
}

// NewReplayHandler - creates a new ReplayHandler
func NewReplayHandler(replayUC *usecase.ReplayUseCase, logger *zap.Logger) *ReplayHandler {
	return &ReplayHandler{
		replayUC: replayUC,
		logger:   logger,
	}
}

// Control godoc
// @Summary Control replay
// @Description Drives the replay protocol: a positive flag starts or resumes, repeating it pauses, zero stops. Flag 2 and above opens the popup of each replayed point
// @Tags Replay
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.ReplayRequest true "Replay flag"
// @Success 200 {object} utils.SuccessResponse{data=dto.ReplayResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/replay [post]
func (h *ReplayHandler) Control(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ReplayRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.replayUC.Control(id, req.Flag)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}
