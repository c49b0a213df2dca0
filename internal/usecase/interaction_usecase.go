package usecase

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/interaction"
	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase/dto"
)

// InteractionUseCase - mouse events against a session's scene: the
// distance ruler and geozone drag gestures.
type InteractionUseCase struct {
	sessions *session.Store
	logger   *zap.Logger
}

// NewInteractionUseCase - creates a new InteractionUseCase
func NewInteractionUseCase(sessions *session.Store, logger *zap.Logger) *InteractionUseCase {
	return &InteractionUseCase{
		sessions: sessions,
		logger:   logger,
	}
}

// HandleMouse dispatches one mouse event and reports whether it was
// captured, plus the refreshed cursor readout.
func (uc *InteractionUseCase) HandleMouse(sessionID uuid.UUID, req dto.MouseRequest) (*dto.MouseResponse, error) {
	s, ok := uc.sessions.Get(sessionID)
	if !ok {
		return nil, errors.ErrSessionNotFound
	}

	mods := interaction.Modifiers{
		Alt:   req.Modifiers.Alt,
		Ctrl:  req.Modifiers.Ctrl,
		Shift: req.Modifiers.Shift,
	}
	captured, err := s.HandleMouse(req.Event, domain.GeoPoint{Lat: req.Lat, Lon: req.Lon}, mods)
	if err != nil {
		return nil, errors.ErrInvalidMouseEvent.WithDetails(map[string]interface{}{
			"event": req.Event,
		})
	}

	st := s.State()
	return &dto.MouseResponse{
		Captured:    captured,
		RulerMeters: st.RulerMeters,
		Cursor:      st.Cursor,
	}, nil
}
