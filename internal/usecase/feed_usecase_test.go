package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/feed"
	apperrors "github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/replay"
	"github.com/trackmap-service/internal/scene"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase"
)

func newTestSessions() *session.Store {
	return session.NewStore(session.Config{
		Scene: scene.Config{
			DefaultCenter:  domain.GeoPoint{Lat: 40, Lon: -3},
			DefaultZoom:    4,
			MinZoneRadiusM: 100,
			MaxZoneRadiusM: 30000,
		},
		Replay: replay.Config{IntervalMS: 100},
	}, zap.NewNop())
}

func newTestDecoder() *feed.Decoder {
	return feed.NewDecoder(feed.Options{
		MaxPushpins:  100,
		ShowPushpins: true,
		ShowRoute:    true,
		DefaultIcon:  domain.Icon{URL: "images/pp/pin30_blue.png", Size: [2]int{18, 30}, Anchor: [2]int{9, 30}},
	}, zap.NewNop())
}

const ingestPayload = `{
  "JMapData": {
    "isFleet": false,
    "Time": {"timestamp": 1700000500, "timezone": "UTC"},
    "DataSets": [
      {"type": "device", "id": "truck1", "route": "true", "Points": [
        "truck1|Truck 1|1700000000|2023/11/14|22:13:20|UTC|InMotion|0|41.3851|2.1734|0|0|10.0|7|45.0|90.0|10.0|100.0|0|0|Street",
        "truck1|Truck 1|1700000100|2023/11/14|22:15:00|UTC|InMotion|0|41.3900|2.1800|0|0|10.0|7|30.0|180.0|10.0|100.0|0|0|Street"
      ]}
    ],
    "Actions": [{"cmd": "alert", "arg": "hello"}]
  }
}`

func TestFeedUseCase_Ingest(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("success installs the feed and fans out", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		mockCache := &MockCacheRepository{}
		mockStream := &MockStreamRepository{}

		mockCache.On("SetScene", mock.Anything, s.ID, mock.Anything, mock.Anything).Return(nil)
		mockStream.On("PublishToStream", mock.Anything, domain.StreamSceneUpdated,
			mock.MatchedBy(func(ev *domain.SceneUpdatedEvent) bool {
				return ev.SessionID == s.ID && ev.Sequence == 1 && ev.PushpinCount == 2
			})).Return(nil)

		uc := usecase.NewFeedUseCase(sessions, mockCache, mockStream, newTestDecoder(), logger, time.Minute)

		resp, err := uc.Ingest(ctx, s.ID, []byte(ingestPayload))
		require.NoError(t, err)
		assert.True(t, resp.Installed)
		assert.Equal(t, uint64(1), resp.Sequence)
		assert.Equal(t, 1, resp.DatasetCount)
		assert.Equal(t, 2, resp.PushpinCount)
		assert.Empty(t, resp.Warnings)

		// the alert directive passes through to the client
		require.Len(t, resp.Actions, 1)
		assert.Equal(t, domain.ActionAlert, resp.Actions[0].Command)

		snap := s.Snapshot()
		require.Contains(t, snap.Layers, "pushpins")
		assert.Len(t, snap.Layers["pushpins"].Markers, 2)

		mockCache.AssertExpectations(t)
		mockStream.AssertExpectations(t)
	})

	t.Run("unknown session", func(t *testing.T) {
		uc := usecase.NewFeedUseCase(newTestSessions(), &MockCacheRepository{}, &MockStreamRepository{}, newTestDecoder(), logger, time.Minute)

		resp, err := uc.Ingest(ctx, uuid.New(), []byte(ingestPayload))
		assert.Nil(t, resp)
		assert.Equal(t, apperrors.ErrSessionNotFound, err)
	})

	t.Run("undecodable payload", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		mockCache := &MockCacheRepository{}
		mockStream := &MockStreamRepository{}
		uc := usecase.NewFeedUseCase(sessions, mockCache, mockStream, newTestDecoder(), logger, time.Minute)

		resp, err := uc.Ingest(ctx, s.ID, []byte("{this is not a feed"))
		assert.Nil(t, resp)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrInvalidFeed.Code, appErr.Code)

		mockStream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache trouble is not fatal", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		mockCache := &MockCacheRepository{}
		mockStream := &MockStreamRepository{}

		mockCache.On("SetScene", mock.Anything, s.ID, mock.Anything, mock.Anything).
			Return(apperrors.ErrCacheError)
		mockStream.On("PublishToStream", mock.Anything, domain.StreamSceneUpdated, mock.Anything).Return(nil)

		uc := usecase.NewFeedUseCase(sessions, mockCache, mockStream, newTestDecoder(), logger, time.Minute)

		resp, err := uc.Ingest(ctx, s.ID, []byte(ingestPayload))
		require.NoError(t, err)
		assert.True(t, resp.Installed)
	})

	t.Run("second concurrent ingest is rejected", func(t *testing.T) {
		sessions := newTestSessions()
		s := sessions.Create()
		uc := usecase.NewFeedUseCase(sessions, &MockCacheRepository{}, &MockStreamRepository{}, newTestDecoder(), logger, time.Minute)

		require.True(t, s.TryBeginUpdate())
		defer s.EndUpdate()

		resp, err := uc.Ingest(ctx, s.ID, []byte(ingestPayload))
		assert.Nil(t, resp)
		assert.Equal(t, apperrors.ErrFeedInFlight, err)
	})
}
