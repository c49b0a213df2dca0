package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/pkg/utils"
	"github.com/trackmap-service/internal/pkg/validator"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/usecase/dto"
)

// GeozoneHandler - geofence CRUD and session edit binding
type GeozoneHandler struct {
	geozoneUC *usecase.GeozoneUseCase
	logger    *zap.Logger
}

// NewGeozoneHandler - creates a new GeozoneHandler
func NewGeozoneHandler(geozoneUC *usecase.GeozoneUseCase, logger *zap.Logger) *GeozoneHandler {
	return &GeozoneHandler{
		geozoneUC: geozoneUC,
		logger:    logger,
	}
}

func geozoneID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"param": param,
		})
	}
	return id, nil
}

// Create godoc
// @Summary Create a geofence
// @Description Stores a new geofence. Points is a "lat/lon,lat/lon,..." list; empty items keep their slot
// @Tags Geozones
// @Accept json
// @Produce json
// @Param request body dto.CreateGeozoneRequest true "Geofence"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeozoneResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/geozones [post]
func (h *GeozoneHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateGeozoneRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.geozoneUC.Create(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// List godoc
// @Summary List an account's geofences
// @Tags Geozones
// @Produce json
// @Param account_id query string true "Account ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeozoneListResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/geozones [get]
func (h *GeozoneHandler) List(c *fiber.Ctx) error {
	accountID := c.Query("account_id")
	if accountID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"param": "account_id",
		}))
	}

	resp, err := h.geozoneUC.List(c.Context(), accountID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, &utils.Meta{Total: resp.Total})
}

// Get godoc
// @Summary Get a geofence
// @Tags Geozones
// @Produce json
// @Param id path string true "Geozone ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeozoneResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/geozones/{id} [get]
func (h *GeozoneHandler) Get(c *fiber.Ctx) error {
	id, err := geozoneID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.geozoneUC.Get(c.Context(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// Update godoc
// @Summary Update a geofence
// @Tags Geozones
// @Accept json
// @Produce json
// @Param id path string true "Geozone ID"
// @Param request body dto.UpdateGeozoneRequest true "Geofence"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeozoneResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/geozones/{id} [put]
func (h *GeozoneHandler) Update(c *fiber.Ctx) error {
	id, err := geozoneID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdateGeozoneRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.geozoneUC.Update(c.Context(), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// Delete godoc
// @Summary Delete a geofence
// @Tags Geozones
// @Produce json
// @Param id path string true "Geozone ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/geozones/{id} [delete]
func (h *GeozoneHandler) Delete(c *fiber.Ctx) error {
	id, err := geozoneID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.geozoneUC.Delete(c.Context(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"deleted": true}, nil)
}

// BeginEdit godoc
// @Summary Edit a geofence in a session
// @Description Draws the geofence into the session in edit mode; mouse drags and clicks commit vertex changes back to storage
// @Tags Geozones
// @Produce json
// @Param id path string true "Session ID"
// @Param zone_id path string true "Geozone ID"
// @Success 200 {object} utils.SuccessResponse{data=dto.GeozoneResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/geozones/{zone_id}/edit [post]
func (h *GeozoneHandler) BeginEdit(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	zoneID, err := geozoneID(c, "zone_id")
	if err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.geozoneUC.BeginEdit(c.Context(), id, zoneID)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}

// EndEdit godoc
// @Summary Leave geofence edit mode
// @Tags Geozones
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/geozones/edit [delete]
func (h *GeozoneHandler) EndEdit(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.geozoneUC.EndEdit(id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"editing": false}, nil)
}
