package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/domain/repository"
	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/scene"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase/dto"
)

// SceneUseCase - session lifecycle and scene read projections.
type SceneUseCase struct {
	sessions  *session.Store
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewSceneUseCase - creates a new SceneUseCase
func NewSceneUseCase(
	sessions *session.Store,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *SceneUseCase {
	return &SceneUseCase{
		sessions:  sessions,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// CreateSession registers a new map session and returns its state.
func (uc *SceneUseCase) CreateSession() session.State {
	return uc.sessions.Create().State()
}

// GetState returns the session projection.
func (uc *SceneUseCase) GetState(sessionID uuid.UUID) (session.State, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return session.State{}, errors.ErrSessionNotFound
	}
	return s.State(), nil
}

// DeleteSession closes the session and drops its cached snapshot.
func (uc *SceneUseCase) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	if !uc.sessions.Delete(sessionID) {
		return errors.ErrSessionNotFound
	}
	if err := uc.cacheRepo.DeleteScene(ctx, sessionID); err != nil {
		uc.logger.Warn("Failed to drop cached scene",
			zap.String("session_id", sessionID.String()), zap.Error(err))
	}
	return nil
}

// Snapshot returns the rendered scene. A session not held by this
// instance is served from the snapshot cache if a worker published one.
func (uc *SceneUseCase) Snapshot(ctx context.Context, sessionID uuid.UUID) (*scene.Snapshot, error) {
	if s, ok := uc.sessions.Get(sessionID); ok {
		return s.Snapshot(), nil
	}

	data, err := uc.cacheRepo.GetScene(ctx, sessionID)
	if err != nil {
		uc.logger.Warn("Scene cache read failed",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, errors.ErrSessionNotFound
	}
	if data == nil {
		return nil, errors.ErrSessionNotFound
	}

	var snap scene.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		uc.logger.Error("Cached scene snapshot is corrupt",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		return nil, errors.ErrCacheError
	}
	return &snap, nil
}

// Detail returns the detail report of the installed feed. A session with
// no feed yields an empty report, not an error.
func (uc *SceneUseCase) Detail(sessionID uuid.UUID) (*dto.DetailResponse, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, errors.ErrSessionNotFound
	}

	f := s.Feed()
	if f == nil {
		return &dto.DetailResponse{Rows: []*domain.DetailRow{}}, nil
	}
	return &dto.DetailResponse{
		Rows:         f.DetailRows,
		DeviceBreaks: f.DeviceBreaks,
		Total:        len(f.DetailRows),
	}, nil
}

// Clear wipes the rendered scene by installing an empty feed, keeping
// the sequence monotonic so an in-flight stale feed cannot resurrect the
// old scene.
func (uc *SceneUseCase) Clear(ctx context.Context, sessionID uuid.UUID) error {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return errors.ErrSessionNotFound
	}

	empty := &domain.Feed{Sequence: s.NextSequence()}
	if _, err := s.InstallFeed(empty, domain.RecenterNone); err != nil {
		return err
	}
	if err := uc.cacheRepo.DeleteScene(ctx, sessionID); err != nil {
		uc.logger.Warn("Failed to drop cached scene",
			zap.String("session_id", sessionID.String()), zap.Error(err))
	}
	return nil
}
