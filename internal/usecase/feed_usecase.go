package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/domain/repository"
	"github.com/trackmap-service/internal/feed"
	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase/dto"
)

// FeedUseCase - the ingest pipeline: decode a raw feed body, stamp it
// with the session's next sequence, install it atomically, refresh the
// snapshot cache and announce the update on the scene stream.
type FeedUseCase struct {
	sessions   *session.Store
	cacheRepo  repository.CacheRepository
	streamRepo repository.StreamRepository
	decoder    *feed.Decoder
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewFeedUseCase - creates a new FeedUseCase
func NewFeedUseCase(
	sessions *session.Store,
	cacheRepo repository.CacheRepository,
	streamRepo repository.StreamRepository,
	decoder *feed.Decoder,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *FeedUseCase {
	return &FeedUseCase{
		sessions:   sessions,
		cacheRepo:  cacheRepo,
		streamRepo: streamRepo,
		decoder:    decoder,
		logger:     logger,
		cacheTTL:   cacheTTL,
	}
}

// Ingest runs one full update cycle for the session. Only one ingest may
// run per session at a time; a second caller gets ErrFeedInFlight
// instead of queueing. Draw failures do not abort the install; they are
// aggregated into the response warnings and the published event.
func (uc *FeedUseCase) Ingest(ctx context.Context, sessionID uuid.UUID, payload []byte) (*dto.FeedIngestResponse, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	if !s.TryBeginUpdate() {
		return nil, errors.ErrFeedInFlight
	}
	defer s.EndUpdate()

	f, err := uc.decoder.Decode(payload)
	if err != nil {
		uc.logger.Warn("Failed to decode feed",
			zap.String("session_id", sessionID.String()),
			zap.Int("payload_bytes", len(payload)),
			zap.Error(err))
		return nil, errors.ErrInvalidFeed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}
	f.Sequence = s.NextSequence()

	installed, installErr := s.InstallFeed(f, domain.RecenterZoom)
	if !installed {
		return &dto.FeedIngestResponse{
			SessionID: sessionID,
			Sequence:  f.Sequence,
		}, nil
	}

	warnings := ""
	if installErr != nil {
		warnings = installErr.Error()
		uc.logger.Warn("Feed installed with draw failures",
			zap.String("session_id", sessionID.String()),
			zap.Error(installErr))
	}

	actions := uc.executeActions(s, f)
	uc.cacheSnapshot(ctx, s)
	uc.publishUpdated(ctx, sessionID, f, warnings)

	uc.logger.Info("Feed ingested",
		zap.String("session_id", sessionID.String()),
		zap.Uint64("sequence", f.Sequence),
		zap.Int("datasets", len(f.Datasets)),
		zap.Int("pushpins", f.PushpinCount()))

	return &dto.FeedIngestResponse{
		SessionID:    sessionID,
		Sequence:     f.Sequence,
		Installed:    true,
		DatasetCount: len(f.Datasets),
		PushpinCount: f.PushpinCount(),
		Warnings:     warnings,
		Actions:      actions,
	}, nil
}

// executeActions applies server-side feed actions and collects the
// client directives for the response. A failing action is skipped.
func (uc *FeedUseCase) executeActions(s *session.Session, f *domain.Feed) []domain.Action {
	var clientActions []domain.Action
	for _, a := range f.Actions {
		if err := s.ExecuteAction(a); err != nil {
			uc.logger.Warn("Feed action skipped",
				zap.String("command", a.Command),
				zap.String("arg", a.Arg),
				zap.Error(err))
			continue
		}
		switch a.Command {
		case domain.ActionAlert, domain.ActionGotoURL, domain.ActionAutoUpdate:
			clientActions = append(clientActions, a)
		}
	}
	return clientActions
}

// cacheSnapshot refreshes the session's cached scene. Cache trouble is
// logged and otherwise ignored; the live session stays authoritative.
func (uc *FeedUseCase) cacheSnapshot(ctx context.Context, s *session.Session) {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		uc.logger.Error("Failed to marshal scene snapshot",
			zap.String("session_id", s.ID.String()), zap.Error(err))
		return
	}
	if err := uc.cacheRepo.SetScene(ctx, s.ID, data, uc.cacheTTL); err != nil {
		uc.logger.Warn("Failed to cache scene snapshot",
			zap.String("session_id", s.ID.String()), zap.Error(err))
	}
}

func (uc *FeedUseCase) publishUpdated(ctx context.Context, sessionID uuid.UUID, f *domain.Feed, warnings string) {
	event := &domain.SceneUpdatedEvent{
		SessionID:    sessionID,
		Sequence:     f.Sequence,
		DatasetCount: len(f.Datasets),
		PushpinCount: f.PushpinCount(),
		Error:        warnings,
	}
	if err := uc.streamRepo.PublishToStream(ctx, domain.StreamSceneUpdated, event); err != nil {
		uc.logger.Error("Failed to publish scene update",
			zap.String("session_id", sessionID.String()), zap.Error(err))
	}
}
