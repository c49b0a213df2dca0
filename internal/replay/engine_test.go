package replay_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/replay"
)

// recordingSink captures replay output for assertions.
type recordingSink struct {
	mu         sync.Mutex
	added      []*domain.Pushpin
	cleared    int
	popups     []*domain.Pushpin
	highlights []int
}

func (s *recordingSink) ClearMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func (s *recordingSink) AddPushpin(pp *domain.Pushpin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, pp)
	return nil
}

func (s *recordingSink) ShowPopup(pp *domain.Pushpin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pp != nil {
		s.popups = append(s.popups, pp)
	}
}

func (s *recordingSink) HighlightRow(recordIndex int, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.highlights = append(s.highlights, recordIndex)
	}
}

func (s *recordingSink) addedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.added)
}

func (s *recordingSink) addedPoints() []domain.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	pts := make([]domain.GeoPoint, len(s.added))
	for i, pp := range s.added {
		pts[i] = pp.Point
	}
	return pts
}

func pin(recNdx int, lat, lon float64) *domain.Pushpin {
	return &domain.Pushpin{
		RecordIndex: recNdx,
		Point:       domain.GeoPoint{Lat: lat, Lon: lon},
		Show:        true,
	}
}

func TestEngine_PauseStateCycle(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100}, zap.NewNop())

	assert.Equal(t, domain.ReplayStopped, e.State())

	// flag=0 on a stopped engine stays stopped
	assert.Equal(t, domain.ReplayStopped, e.Pause(0))

	e.Load([]*domain.Pushpin{pin(1, 10, 20), pin(2, 11, 21)}, 1)

	// no timer scheduled: resume
	assert.Equal(t, domain.ReplayRunning, e.Pause(1))
	// timer active: pause
	assert.Equal(t, domain.ReplayPaused, e.Pause(1))
	// timer gone: resume again
	assert.Equal(t, domain.ReplayRunning, e.Pause(1))
	// flag=0 stops from any state
	assert.Equal(t, domain.ReplayStopped, e.Pause(0))
}

func TestEngine_WalksAllPointsThenStops(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100}, zap.NewNop())

	e.Load([]*domain.Pushpin{pin(1, 10, 20), pin(2, 11, 21), pin(3, 12, 22)}, 1)
	e.Pause(1)

	require.Eventually(t, func() bool {
		return e.State() == domain.ReplayStopped
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, 3, sink.addedCount())
	assert.Equal(t, []int{1, 2, 3}, sink.highlights)
}

func TestEngine_AutoSkipRadius(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100, AutoSkipRadiusM: 50}, zap.NewNop())

	p1 := pin(1, 10, 20)
	// ~11m north of p1: inside the 50m skip radius
	p2 := pin(2, 10.0001, 20)
	// ~2km away: outside
	p3 := pin(3, 10.02, 20)

	e.Load([]*domain.Pushpin{p1, p2, p3}, 1)
	e.Pause(1)

	require.Eventually(t, func() bool {
		return e.State() == domain.ReplayStopped
	}, 3*time.Second, 20*time.Millisecond)

	pts := sink.addedPoints()
	require.Len(t, pts, 2)
	assert.Equal(t, p1.Point, pts[0])
	assert.Equal(t, p3.Point, pts[1])
}

func TestEngine_LastPointNeverAutoSkipped(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100, AutoSkipRadiusM: 50}, zap.NewNop())

	p1 := pin(1, 10, 20)
	p2 := pin(2, 10.0001, 20) // inside skip radius but final

	e.Load([]*domain.Pushpin{p1, p2}, 1)
	e.Pause(1)

	require.Eventually(t, func() bool {
		return e.State() == domain.ReplayStopped
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, 2, sink.addedCount())
}

func TestEngine_InvalidCoordinatesSkipped(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100}, zap.NewNop())

	e.Load([]*domain.Pushpin{pin(1, 10, 20), pin(2, 0, 0), pin(3, 12, 22)}, 1)
	e.Pause(1)

	require.Eventually(t, func() bool {
		return e.State() == domain.ReplayStopped
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, 2, sink.addedCount())
}

func TestEngine_PopupModeShowsPopups(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100}, zap.NewNop())

	e.Load([]*domain.Pushpin{pin(1, 10, 20), pin(2, 11, 21)}, 2)
	e.Pause(2)

	require.Eventually(t, func() bool {
		return e.State() == domain.ReplayStopped
	}, 3*time.Second, 20*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.popups, 2)
	assert.Empty(t, sink.highlights)
}

func TestEngine_SinglePushpinModeClearsPrevious(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 100, SinglePushpin: true}, zap.NewNop())

	e.Load([]*domain.Pushpin{pin(1, 10, 20), pin(2, 11, 21), pin(3, 12, 22)}, 1)
	e.Pause(1)

	require.Eventually(t, func() bool {
		return e.State() == domain.ReplayStopped
	}, 3*time.Second, 20*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, 2, sink.cleared) // cleared before the 2nd and 3rd point
}

func TestEngine_StopMidReplay(t *testing.T) {
	sink := &recordingSink{}
	e := replay.New(sink, replay.Config{IntervalMS: 200}, zap.NewNop())

	pins := make([]*domain.Pushpin, 50)
	for i := range pins {
		pins[i] = pin(i+1, 10+float64(i), 20)
	}
	e.Load(pins, 1)
	e.Pause(1)

	time.Sleep(350 * time.Millisecond)
	e.Stop()
	assert.Equal(t, domain.ReplayStopped, e.State())

	n := sink.addedCount()
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, n, sink.addedCount(), "no ticks after stop")
}
