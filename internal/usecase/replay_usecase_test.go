package usecase_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	apperrors "github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/usecase/dto"
)

func installedSessionFeed() *domain.Feed {
	return &domain.Feed{
		Datasets: []*domain.Dataset{{
			Type: domain.DatasetDevice,
			ID:   "unit",
			Pushpins: []*domain.Pushpin{
				{RecordIndex: 1, Point: domain.GeoPoint{Lat: 10, Lon: 20}, Show: true,
					Event: &domain.EventRecord{Description: "unit", Point: domain.GeoPoint{Lat: 10, Lon: 20}}},
				{RecordIndex: 2, Point: domain.GeoPoint{Lat: 10.1, Lon: 20.1}, Show: true,
					Event: &domain.EventRecord{Description: "unit", Point: domain.GeoPoint{Lat: 10.1, Lon: 20.1}}},
			},
		}},
		Sequence: 1,
	}
}

func TestReplayUseCase_Control(t *testing.T) {
	logger := zap.NewNop()

	t.Run("unknown session", func(t *testing.T) {
		uc := usecase.NewReplayUseCase(newTestSessions(), logger)
		_, err := uc.Control(uuid.New(), 1)
		assert.Equal(t, apperrors.ErrSessionNotFound, err)
	})

	t.Run("no installed feed", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		uc := usecase.NewReplayUseCase(sessions, logger)

		_, err := uc.Control(s.ID, 1)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrReplayUnavailable.Code, appErr.Code)
	})

	t.Run("start pause stop cycle", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		_, err := s.InstallFeed(installedSessionFeed(), domain.RecenterNone)
		require.NoError(t, err)

		uc := usecase.NewReplayUseCase(sessions, logger)

		resp, err := uc.Control(s.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "running", resp.StateName)

		resp, err = uc.Control(s.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "paused", resp.StateName)

		resp, err = uc.Control(s.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, "stopped", resp.StateName)
	})
}

func TestInteractionUseCase_HandleMouse(t *testing.T) {
	logger := zap.NewNop()

	t.Run("unknown session", func(t *testing.T) {
		uc := usecase.NewInteractionUseCase(newTestSessions(), logger)
		_, err := uc.HandleMouse(uuid.New(), dto.MouseRequest{Event: "down"})
		assert.Equal(t, apperrors.ErrSessionNotFound, err)
	})

	t.Run("unknown event name", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		uc := usecase.NewInteractionUseCase(sessions, logger)

		_, err := uc.HandleMouse(s.ID, dto.MouseRequest{Event: "hover"})
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrInvalidMouseEvent.Code, appErr.Code)
	})

	t.Run("ctrl drag measures distance", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		uc := usecase.NewInteractionUseCase(sessions, logger)

		resp, err := uc.HandleMouse(s.ID, dto.MouseRequest{
			Event: "down", Lat: 10, Lon: 20,
			Modifiers: dto.MouseModifiers{Ctrl: true},
		})
		require.NoError(t, err)
		assert.True(t, resp.Captured)

		resp, err = uc.HandleMouse(s.ID, dto.MouseRequest{Event: "move", Lat: 10.1, Lon: 20})
		require.NoError(t, err)
		assert.InDelta(t, 11120, resp.RulerMeters, 20)
		assert.Equal(t, domain.GeoPoint{Lat: 10.1, Lon: 20}, resp.Cursor)

		_, err = uc.HandleMouse(s.ID, dto.MouseRequest{Event: "up", Lat: 10.1, Lon: 20})
		require.NoError(t, err)
	})
}
