package usecase

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase/dto"
)

var replayStateNames = map[domain.ReplayState]string{
	domain.ReplayStopped: "stopped",
	domain.ReplayPaused:  "paused",
	domain.ReplayRunning: "running",
}

// ReplayUseCase - replay engine control.
type ReplayUseCase struct {
	sessions *session.Store
	logger   *zap.Logger
}

// NewReplayUseCase - creates a new ReplayUseCase
func NewReplayUseCase(sessions *session.Store, logger *zap.Logger) *ReplayUseCase {
	return &ReplayUseCase{
		sessions: sessions,
		logger:   logger,
	}
}

// Control drives the replay protocol: a positive flag starts or resumes,
// repeating it pauses, zero stops.
func (uc *ReplayUseCase) Control(sessionID uuid.UUID, flag int) (*dto.ReplayResponse, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, errors.ErrSessionNotFound
	}

	state, err := s.Replay(flag)
	if err != nil {
		return nil, errors.ErrReplayUnavailable.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		})
	}

	uc.logger.Debug("Replay control",
		zap.String("session_id", sessionID.String()),
		zap.Int("flag", flag),
		zap.String("state", replayStateNames[state]))

	return &dto.ReplayResponse{
		State:     int(state),
		StateName: replayStateNames[state],
	}, nil
}
