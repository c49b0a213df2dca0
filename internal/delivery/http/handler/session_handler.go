package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/pkg/utils"
	"github.com/trackmap-service/internal/usecase"
)

// SessionHandler - session lifecycle and scene read endpoints
type SessionHandler struct {
	sceneUC *usecase.SceneUseCase
	logger  *zap.Logger
}

// NewSessionHandler - creates a new SessionHandler
func NewSessionHandler(sceneUC *usecase.SceneUseCase, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sceneUC: sceneUC,
		logger:  logger,
	}
}

// sessionID parses the :id path parameter.
func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidSessionID
	}
	return id, nil
}

// Create godoc
// @Summary Create a map session
// @Description Creates a new tracking-map session and returns its identifier and initial state
// @Tags Sessions
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=session.State}
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	state := h.sceneUC.CreateSession()
	return utils.SendSuccess(c, state, nil)
}

// Get godoc
// @Summary Get session state
// @Description Returns the session projection: replay state, feed sequence, cursor readout and counters
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=session.State}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	state, err := h.sceneUC.GetState(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, state, nil)
}

// Delete godoc
// @Summary Delete a session
// @Description Closes the session, stops any running replay and drops the cached scene
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.sceneUC.DeleteSession(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"deleted": true}, nil)
}

// GetScene godoc
// @Summary Get the rendered scene
// @Description Returns the scene snapshot: center, zoom, open popup and every drawn layer
// @Tags Scene
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=scene.Snapshot}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/scene [get]
func (h *SessionHandler) GetScene(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	snap, err := h.sceneUC.Snapshot(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, snap, nil)
}

// ClearScene godoc
// @Summary Clear the rendered scene
// @Description Wipes pushpins, routes, shapes and the ruler; geozones under edit stay
// @Tags Scene
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/scene [delete]
func (h *SessionHandler) ClearScene(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.sceneUC.Clear(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"cleared": true}, nil)
}

// GetDetail godoc
// @Summary Get the detail report
// @Description Returns the denormalized event rows of the installed feed
// @Tags Scene
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.DetailResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/detail [get]
func (h *SessionHandler) GetDetail(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	detail, err := h.sceneUC.Detail(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, detail, &utils.Meta{Total: detail.Total})
}
