package feedingest_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/feed"
	"github.com/trackmap-service/internal/replay"
	"github.com/trackmap-service/internal/scene"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/worker/feedingest"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetScene(ctx context.Context, sessionID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) SetScene(ctx context.Context, sessionID uuid.UUID, data []byte, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, data, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) DeleteScene(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func newTestStore() *session.Store {
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

const feedPayload = `{
  "JMapData": {
    "isFleet": false,
    "Time": {"timestamp": 1700000500, "timezone": "UTC"},
    "DataSets": [
      {"type": "device", "id": "truck1", "route": "true", "Points": [
        "truck1|Truck 1|1700000000|2023/11/14|22:13:20|UTC|InMotion|0|41.3851|2.1734|0|0|10.0|7|45.0|90.0|10.0|100.0|0|0|Street"
      ]}
    ]
  }
}`

func newWorker(mockStream *MockStreamRepository, mockCache *MockCacheRepository) (*feedingest.FeedIngestWorker, *session.Store) {
	logger := zap.NewNop()
	sessions := newTestStore()
	feedUC := usecase.NewFeedUseCase(sessions, mockCache, mockStream, newTestDecoder(), logger, time.Minute)
	w := feedingest.NewFeedIngestWorker(mockStream, sessions, feedUC, "test-group", logger)
	return w, sessions
}

// TestFeedIngestWorker_Name tests the worker name
func TestFeedIngestWorker_Name(t *testing.T) {
	w, _ := newWorker(&MockStreamRepository{}, &MockCacheRepository{})
	assert.Equal(t, "feed-ingest", w.Name())
}

// TestFeedIngestWorker_Stop tests graceful stop
func TestFeedIngestWorker_Stop(t *testing.T) {
	w, _ := newWorker(&MockStreamRepository{}, &MockCacheRepository{})

	err := w.Stop()
	assert.NoError(t, err)

	// Calling stop multiple times should be safe
	err = w.Stop()
	assert.NoError(t, err)
}

// TestFeedIngestWorker_ContextCancellation tests worker stops on context cancellation
func TestFeedIngestWorker_ContextCancellation(t *testing.T) {
	mockStream := &MockStreamRepository{}
	w, _ := newWorker(mockStream, &MockCacheRepository{})

	messages := make(chan domain.StreamMessage)
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamFeedIngest, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamFeedIngest, "test-group", mock.AnythingOfType("string")).
		Return(messages, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	mockStream.AssertExpectations(t)
}

// TestFeedIngestWorker_ProcessMessage tests the full ingest path for one message
func TestFeedIngestWorker_ProcessMessage(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockCache := &MockCacheRepository{}
	w, sessions := newWorker(mockStream, mockCache)

	sessionID := uuid.New()
	eventJSON, err := json.Marshal(&domain.FeedIngestEvent{
		SessionID: sessionID,
		Payload:   feedPayload,
	})
	require.NoError(t, err)

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "1234567890-0", Data: string(eventJSON)}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamFeedIngest, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamFeedIngest, "test-group", mock.AnythingOfType("string")).
		Return(messages, nil)
	mockCache.On("SetScene", mock.Anything, sessionID, mock.Anything, mock.Anything).
		Return(nil)
	mockStream.On("PublishToStream", mock.Anything, domain.StreamSceneUpdated,
		mock.MatchedBy(func(ev *domain.SceneUpdatedEvent) bool {
			return ev.SessionID == sessionID && ev.PushpinCount == 1
		})).Return(nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamFeedIngest, "test-group", "1234567890-0").
		Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	// Give the worker time to drain the message, then stop it
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	// The session was adopted under the event's ID and holds the scene
	s, ok := sessions.Get(sessionID)
	require.True(t, ok)
	snap := s.Snapshot()
	require.Contains(t, snap.Layers, "pushpins")
	assert.Len(t, snap.Layers["pushpins"].Markers, 1)

	mockStream.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestFeedIngestWorker_BadMessageAcked tests that an unparseable message is ACKed and skipped
func TestFeedIngestWorker_BadMessageAcked(t *testing.T) {
	mockStream := &MockStreamRepository{}
	w, _ := newWorker(mockStream, &MockCacheRepository{})

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "1234567890-1", Data: "not json"}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamFeedIngest, "test-group").
		Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamFeedIngest, "test-group", mock.AnythingOfType("string")).
		Return(messages, nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamFeedIngest, "test-group", "1234567890-1").
		Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
	mockStream.AssertExpectations(t)
}
