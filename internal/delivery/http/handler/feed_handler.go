package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/pkg/utils"
	"github.com/trackmap-service/internal/usecase"
)

// FeedHandler - feed ingest endpoint
type FeedHandler struct {
	feedUC *usecase.FeedUseCase
	logger *zap.Logger
}

// NewFeedHandler - creates a new FeedHandler
func NewFeedHandler(feedUC *usecase.FeedUseCase, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feedUC: feedUC,
		logger: logger,
	}
}

// Ingest godoc
// @Summary Ingest a tracking feed
// @Description Decodes a raw feed body (JSON or XML, detected from the first byte) and replaces the session's rendered scene with it
// @Tags Feed
// @Accept json,xml
// @Produce json
// @Param id path string true "Session ID"
// @Param body body string true "Raw feed body"
// @Success 200 {object} utils.SuccessResponse{data=dto.FeedIngestResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/feed [post]
func (h *FeedHandler) Ingest(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	body := c.Body()
	if len(body) == 0 {
		return utils.SendError(c, errors.ErrEmptyFeed)
	}

	resp, err := h.feedUC.Ingest(c.Context(), id, body)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, resp, nil)
}
