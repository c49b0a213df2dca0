// Package session composes the scene, interaction and replay engines
// behind one mutex-serialized object identified by UUID. All map state
// lives here; nothing is package-global.
package session

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/interaction"
	"github.com/trackmap-service/internal/replay"
	"github.com/trackmap-service/internal/scene"
)

// Mouse event names accepted by HandleMouse.
const (
	MouseEventDown  = "down"
	MouseEventMove  = "move"
	MouseEventUp    = "up"
	MouseEventClick = "click"
)

// Config - per-session engine configuration.
type Config struct {
	Scene       scene.Config
	Replay      replay.Config
	Interaction interaction.Config

	// ViewWidthPx sizes the logical snapshot viewport.
	ViewWidthPx int
}

// State is the session projection returned to read endpoints.
type State struct {
	ID            uuid.UUID          `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	ReplayState   domain.ReplayState `json:"replay_state"`
	Sequence      uint64             `json:"sequence"`
	GeozoneMode   bool               `json:"geozone_mode"`
	RulerMeters   float64            `json:"ruler_m,omitempty"`
	Cursor        domain.GeoPoint    `json:"cursor"`
	CursorMeters  float64            `json:"cursor_m,omitempty"` // last distance readout
	DatasetCount  int                `json:"dataset_count"`
	PushpinCount  int                `json:"pushpin_count"`
	HighlightedAt int                `json:"highlighted_at"` // record index, -1 when none
}

// Session owns the map state for one client. All operations serialize on
// the session mutex; the replay timer reaches the shared renderer
// through its own lock.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu      sync.Mutex
	logger  *zap.Logger
	snap    *scene.SnapshotRenderer
	scene   *scene.Scene
	machine *interaction.Machine
	engine  *replay.Engine
	editor  *forwardingEditor
	readout *recordingReadout
	rows    *rowTracker

	feed      *domain.Feed
	installed uint64

	seq      atomic.Uint64
	inFlight atomic.Bool
	lastUsed atomic.Int64
}

// New creates a session with freshly wired engines under a minted ID.
func New(cfg Config, logger *zap.Logger) *Session {
	return NewWithID(uuid.New(), cfg, logger)
}

// NewWithID creates a session under an externally assigned ID, e.g. one
// carried by a stream message.
func NewWithID(id uuid.UUID, cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session_id", id.String()))

	snap := scene.NewSnapshotRenderer(cfg.ViewWidthPx, cfg.Scene.DefaultCenter, 0.2, cfg.Scene.DefaultZoom)
	sc := scene.New(snap, cfg.Scene, logger)
	editor := &forwardingEditor{}
	readout := &recordingReadout{}
	rows := &rowTracker{last: -1}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		logger:    logger,
		snap:      snap,
		scene:     sc,
		machine:   interaction.New(sc, editor, readout, cfg.Interaction, logger),
		editor:    editor,
		readout:   readout,
		rows:      rows,
	}
	s.engine = replay.New(&sceneSink{snap: snap, rows: rows}, cfg.Replay, logger)
	s.Touch()
	return s
}

// NextSequence hands out the next feed sequence stamp.
func (s *Session) NextSequence() uint64 { return s.seq.Add(1) }

// TryBeginUpdate reserves the single in-flight feed update slot. The
// caller must EndUpdate when done. A false return means an update is
// already running and this one should be skipped.
func (s *Session) TryBeginUpdate() bool { return s.inFlight.CompareAndSwap(false, true) }

// EndUpdate releases the in-flight slot.
func (s *Session) EndUpdate() { s.inFlight.Store(false) }

// Touch refreshes the idle timer.
func (s *Session) Touch() { s.lastUsed.Store(time.Now().UnixNano()) }

// IdleFor reports how long the session has been unused.
func (s *Session) IdleFor() time.Duration {
	return time.Since(time.Unix(0, s.lastUsed.Load()))
}

// InstallFeed atomically replaces the rendered scene with the decoded
// feed: stop replay, clear everything, draw datasets, routes, POI and
// shapes. A feed whose sequence is not newer than the installed one is
// discarded and false is returned.
func (s *Session) InstallFeed(f *domain.Feed, recenter domain.RecenterMode) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Touch()

	if f.Sequence != 0 && f.Sequence <= s.installed {
		s.logger.Warn("Discarding stale feed",
			zap.Uint64("sequence", f.Sequence), zap.Uint64("installed", s.installed))
		return false, nil
	}

	s.engine.Stop()
	s.rows.clear()
	s.scene.ClearAll()

	var errs []string
	for _, ds := range f.Datasets {
		if _, err := s.scene.DrawPushpins(ds.Pushpins, recenter, 0); err != nil {
			errs = append(errs, err.Error())
		}
		if ds.ShowRoute && len(ds.Route) >= 2 {
			if err := s.scene.DrawRoute(ds.Route, ds.RouteColor); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	if err := s.scene.DrawPOI(f.POIPins); err != nil {
		errs = append(errs, err.Error())
	}
	for _, sh := range f.Shapes {
		if _, err := s.scene.DrawShape(sh); err != nil {
			errs = append(errs, err.Error())
		}
	}

	s.feed = f
	if f.Sequence != 0 {
		s.installed = f.Sequence
	}

	if len(errs) > 0 {
		return true, fmt.Errorf("feed installed with draw failures: %s", strings.Join(errs, "; "))
	}
	return true, nil
}

// Feed returns the currently installed feed, or nil.
func (s *Session) Feed() *domain.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed
}

// Snapshot returns the rendered scene projection.
func (s *Session) Snapshot() *scene.Snapshot {
	s.Touch()
	return s.snap.Snapshot()
}

// State returns the session projection.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		ReplayState:   s.engine.State(),
		Sequence:      s.installed,
		GeozoneMode:   s.scene.GeozoneMode(),
		RulerMeters:   s.machine.RulerDistanceMeters(),
		HighlightedAt: s.rows.current(),
	}
	st.Cursor, st.CursorMeters = s.readout.snapshot()
	if s.feed != nil {
		st.DatasetCount = len(s.feed.Datasets)
		st.PushpinCount = s.feed.PushpinCount()
	}
	return st
}

// Replay drives the replay protocol. A positive flag on a stopped engine
// loads the last dataset's pushpins first; afterwards the flag follows
// the pause/resume/stop semantics of the engine.
func (s *Session) Replay(flag int) (domain.ReplayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Touch()

	if flag > 0 && s.engine.State() == domain.ReplayStopped {
		pushpins := s.replaySet()
		if len(pushpins) == 0 {
			return domain.ReplayStopped, fmt.Errorf("no pushpins to replay")
		}
		// replay owns the pushpin layer while running
		s.snap.ClearLayer(scene.LayerPushpins)
		s.engine.Load(pushpins, flag)
	}
	return s.engine.Pause(flag), nil
}

// replaySet picks the replayed dataset: the last non-POI dataset wins.
func (s *Session) replaySet() []*domain.Pushpin {
	if s.feed == nil {
		return nil
	}
	for i := len(s.feed.Datasets) - 1; i >= 0; i-- {
		if len(s.feed.Datasets[i].Pushpins) > 0 {
			return s.feed.Datasets[i].Pushpins
		}
	}
	return nil
}

// HandleMouse dispatches one mouse event into the interaction machine.
// Returns whether the event was captured.
func (s *Session) HandleMouse(event string, p domain.GeoPoint, mods interaction.Modifiers) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Touch()

	switch event {
	case MouseEventDown:
		return s.machine.MouseDown(p, mods), nil
	case MouseEventMove:
		s.machine.MouseMove(p)
		return s.machine.Drag() != domain.DragNone, nil
	case MouseEventUp:
		s.machine.MouseUp(p)
		return false, nil
	case MouseEventClick:
		return s.machine.Click(p), nil
	default:
		return false, fmt.Errorf("unknown mouse event %q", event)
	}
}

// EditGeozone enters geozone-edit mode for the zone and routes vertex
// commits to the editor collaborator.
func (s *Session) EditGeozone(zone *domain.Geozone, editor interaction.ZoneEditor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Touch()
	s.editor.set(editor)
	s.scene.DrawGeozone(zone, false)
}

// Zone returns the geozone under edit, or nil.
func (s *Session) Zone() *domain.Geozone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene.Zone()
}

// ExitGeozone leaves edit mode and detaches the editor collaborator.
func (s *Session) ExitGeozone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Touch()
	s.editor.set(nil)
	s.scene.ExitGeozoneMode()
}

// Close stops the replay timer and clears the scene.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Stop()
	s.scene.ClearAll()
	s.feed = nil
}

// forwardingEditor lets the bound ZoneEditor change per edit operation
// while the interaction machine keeps one stable reference.
type forwardingEditor struct {
	mu     sync.Mutex
	target interaction.ZoneEditor
}

func (f *forwardingEditor) set(ed interaction.ZoneEditor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.target = ed
}

func (f *forwardingEditor) CommitVertex(index int, lat, lon, radiusM float64) {
	f.mu.Lock()
	ed := f.target
	f.mu.Unlock()
	if ed != nil {
		ed.CommitVertex(index, lat, lon, radiusM)
	}
}

func (f *forwardingEditor) SelectVertex(index int) {
	f.mu.Lock()
	ed := f.target
	f.mu.Unlock()
	if ed != nil {
		ed.SelectVertex(index)
	}
}

// recordingReadout keeps the latest cursor measurement for read
// endpoints.
type recordingReadout struct {
	mu       sync.Mutex
	latLon   domain.GeoPoint
	distance float64
}

func (r *recordingReadout) ShowLatLon(p domain.GeoPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latLon = p
}

func (r *recordingReadout) ShowDistance(meters float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.distance = meters
}

func (r *recordingReadout) snapshot() (domain.GeoPoint, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latLon, r.distance
}

// rowTracker remembers the replay-highlighted detail row.
type rowTracker struct {
	mu   sync.Mutex
	last int
}

func (t *rowTracker) HighlightRow(recordIndex int, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if on {
		t.last = recordIndex
	} else if t.last == recordIndex {
		t.last = -1
	}
}

func (t *rowTracker) current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

func (t *rowTracker) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = -1
}

// sceneSink adapts the snapshot renderer and row tracker to the replay
// engine's output port.
type sceneSink struct {
	snap *scene.SnapshotRenderer
	rows *rowTracker
}

func (s *sceneSink) ClearMarkers() {
	s.snap.ClearLayer(scene.LayerPushpins)
}

func (s *sceneSink) AddPushpin(pp *domain.Pushpin) error {
	return s.snap.AddMarker(scene.LayerPushpins, pp, scene.PopupText(pp))
}

func (s *sceneSink) ShowPopup(pp *domain.Pushpin) {
	s.snap.ShowPopup(pp)
}

func (s *sceneSink) HighlightRow(recordIndex int, on bool) {
	s.rows.HighlightRow(recordIndex, on)
}
