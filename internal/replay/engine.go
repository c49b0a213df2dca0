// Package replay drives the timed sequential reveal of a dataset's
// pushpins, simulating historical movement.
package replay

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/pkg/utils"
)

// MinIntervalMS is the floor on the tick interval, applied even when the
// configured interval is lower.
const MinIntervalMS = 100

// Sink receives replay output: marker placement, popups and detail-row
// highlighting. ShowPopup(nil) closes any open popup.
type Sink interface {
	ClearMarkers()
	AddPushpin(pp *domain.Pushpin) error
	ShowPopup(pp *domain.Pushpin)
	HighlightRow(recordIndex int, on bool)
}

// Config - replay behavior knobs.
type Config struct {
	// IntervalMS between ticks; clamped to MinIntervalMS.
	IntervalMS int

	// AutoSkipRadiusM skips points within this distance of the previous
	// point. The final point is never skipped. Zero disables skipping.
	AutoSkipRadiusM float64

	// SinglePushpin clears previously drawn markers before each new
	// point.
	SinglePushpin bool
}

// Engine is an explicit replay state machine driven by a cancellable
// self-rescheduling one-shot timer.
type Engine struct {
	mu     sync.Mutex
	logger *zap.Logger
	sink   Sink
	cfg    Config

	state    domain.ReplayState
	pushpins []*domain.Pushpin
	index    int
	flag     int

	timer *time.Timer
	// gen invalidates ticks scheduled before a stop or pause.
	gen uint64

	lastShown  *domain.Pushpin
	lastRecNdx int
}

// New creates a replay engine. A nil logger is replaced with a no-op
// logger.
func New(sink Sink, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IntervalMS < MinIntervalMS {
		cfg.IntervalMS = MinIntervalMS
	}
	return &Engine{
		logger:     logger,
		sink:       sink,
		cfg:        cfg,
		state:      domain.ReplayStopped,
		lastRecNdx: -1,
	}
}

// State returns the current replay state.
func (e *Engine) State() domain.ReplayState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Load installs the pushpin list to replay and marks the replay as in
// progress. The walk starts on the next Pause call with a positive flag.
func (e *Engine) Load(pushpins []*domain.Pushpin, flag int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelTimerLocked()
	e.pushpins = pushpins
	e.index = 0
	e.flag = flag
	e.state = domain.ReplayPaused
}

// Pause drives the pause/resume/stop protocol:
//   - flag <= 0 or nothing loaded: full stop, state Stopped.
//   - no timer scheduled: treated as resume - hide any popup, clear the
//     row highlight, start ticking, state Running.
//   - timer active: cancel it, keep the cursor, state Paused.
func (e *Engine) Pause(flag int) domain.ReplayState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if flag <= 0 || len(e.pushpins) == 0 {
		e.stopLocked()
		return e.state
	}

	if e.timer == nil {
		e.flag = flag
		e.sink.ShowPopup(nil) // nil closes any open popup
		e.unhighlightLocked()
		e.scheduleLocked(MinIntervalMS * time.Millisecond)
		e.state = domain.ReplayRunning
		return e.state
	}

	e.cancelTimerLocked()
	e.state = domain.ReplayPaused
	return e.state
}

// Stop cancels the replay and clears the cursor and queued pushpins.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	e.cancelTimerLocked()
	e.pushpins = nil
	e.index = 0
	e.state = domain.ReplayStopped
	e.unhighlightLocked()
	e.lastShown = nil
}

func (e *Engine) cancelTimerLocked() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) scheduleLocked(d time.Duration) {
	gen := e.gen
	e.timer = time.AfterFunc(d, func() { e.tick(gen) })
}

func (e *Engine) unhighlightLocked() {
	if e.lastRecNdx >= 0 {
		e.sink.HighlightRow(e.lastRecNdx, false)
		e.lastRecNdx = -1
	}
}

// tick advances the cursor by one rendered point and reschedules itself.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.state != domain.ReplayRunning {
		return // cancelled while the timer was firing
	}
	e.timer = nil

	// Skip invalid coordinates and points within the auto-skip radius of
	// their predecessor. The last point is never auto-skipped.
	for {
		if e.index >= len(e.pushpins) {
			e.stopLocked()
			return
		}
		pp := e.pushpins[e.index]
		if pp.Point.IsOrigin() {
			e.index++
			continue
		}
		if e.cfg.AutoSkipRadiusM > 0 && e.index > 0 && e.index+1 < len(e.pushpins) {
			prev := e.pushpins[e.index-1]
			if !prev.Point.IsOrigin() &&
				utils.HaversineDistanceMeters(prev.Point, pp.Point) <= e.cfg.AutoSkipRadiusM {
				e.index++
				continue
			}
		}
		break
	}

	pp := e.pushpins[e.index]
	e.index++

	if e.cfg.SinglePushpin && e.lastShown != nil {
		e.sink.ClearMarkers()
	}
	if err := e.sink.AddPushpin(pp); err != nil {
		e.logger.Warn("Failed to draw replay pushpin",
			zap.Int("index", e.index-1), zap.Error(err))
	}
	e.lastShown = pp

	if e.flag >= 2 {
		e.sink.ShowPopup(pp)
	} else {
		e.unhighlightLocked()
		if pp.RecordIndex > 0 {
			e.sink.HighlightRow(pp.RecordIndex, true)
			e.lastRecNdx = pp.RecordIndex
		}
	}

	e.scheduleLocked(time.Duration(e.cfg.IntervalMS) * time.Millisecond)
}
