// Package interaction implements the mouse-driven editing protocol:
// the distance ruler and geofence move/resize/relocate gestures.
package interaction

import (
	"math"

	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/pkg/utils"
	"github.com/trackmap-service/internal/scene"
)

// Modifiers - keyboard modifier state accompanying a mouse event.
type Modifiers struct {
	Alt   bool `json:"alt"`
	Ctrl  bool `json:"ctrl"`
	Shift bool `json:"shift"`
}

// ZoneEditor is the geozone-form collaborator: it receives committed
// vertex values and selection changes.
type ZoneEditor interface {
	// CommitVertex receives the final lat/lon/radius for a vertex after
	// a drag or relocation.
	CommitVertex(index int, lat, lon, radiusM float64)

	// SelectVertex signals that a different vertex became primary.
	SelectVertex(index int)
}

// NopZoneEditor is used when no form collaborator is attached.
type NopZoneEditor struct{}

func (NopZoneEditor) CommitVertex(int, float64, float64, float64) {}
func (NopZoneEditor) SelectVertex(int)                            {}

// Config - interaction knobs.
type Config struct {
	// PolygonVertexCount is the N of the synthesized N-gon when a
	// polygon zone with no points is relocated by click.
	PolygonVertexCount int
}

// Synthesized polygon geometry.
const (
	ngonRadiusMeters = 450.0
	ngonShrinkFactor = 0.8

	// sweptMinDeltaMeters floors the swept-zone relocation guard.
	sweptMinDeltaMeters = 5000.0
	sweptDeltaFactor    = 1.5
)

// Machine is the mouse-drag state machine for one session. Callers must
// serialize access.
type Machine struct {
	logger  *zap.Logger
	scene   *scene.Scene
	editor  ZoneEditor
	readout scene.Readout
	cfg     Config

	drag domain.DragType

	rulerStart domain.GeoPoint
	rulerEnd   domain.GeoPoint
	rulerSet   bool

	// centerOffset keeps the grabbed vertex from snapping to the
	// pointer: offset = pointer - vertex at mouse-down.
	centerOffset domain.GeoPoint
	dragRadius   float64
}

// New creates an interaction machine bound to a scene. Nil editor,
// readout or logger fall back to no-ops.
func New(sc *scene.Scene, editor ZoneEditor, readout scene.Readout, cfg Config, logger *zap.Logger) *Machine {
	if editor == nil {
		editor = NopZoneEditor{}
	}
	if readout == nil {
		readout = scene.NopReadout{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PolygonVertexCount < 3 {
		cfg.PolygonVertexCount = 8
	}
	return &Machine{
		logger:  logger,
		scene:   sc,
		editor:  editor,
		readout: readout,
		cfg:     cfg,
	}
}

// Drag returns the current drag mode.
func (m *Machine) Drag() domain.DragType { return m.drag }

// RulerDistanceMeters returns the current ruler measurement, or 0 when
// no ruler is set.
func (m *Machine) RulerDistanceMeters() float64 {
	if !m.rulerSet {
		return 0
	}
	return utils.HaversineDistanceMeters(m.rulerStart, m.rulerEnd)
}

// MouseDown starts a drag. Returns true when the event is captured;
// false lets the map widget handle it (native panning).
func (m *Machine) MouseDown(p domain.GeoPoint, mods Modifiers) bool {
	// Alt, or Ctrl+Shift together, always fall through to native
	// panning.
	if mods.Alt || (mods.Ctrl && mods.Shift) {
		m.drag = domain.DragNone
		return false
	}

	if mods.Ctrl {
		m.drag = domain.DragRuler
		m.scene.Renderer().ClearLayer(scene.LayerRuler)
		m.rulerStart = p
		m.rulerEnd = p
		m.rulerSet = true
		m.readout.ShowDistance(0)
		m.scene.Renderer().SetDragPanning(false)
		return true
	}

	zone := m.scene.Zone()
	if m.scene.GeozoneMode() && zone != nil && zone.Editable {
		hitRadius := m.scene.VertexHitRadius()

		if prim := zone.PrimaryPoint(); prim != nil && prim.IsValid() &&
			utils.HaversineDistanceMeters(p, prim.Point) <= hitRadius {
			if mods.Shift {
				m.drag = domain.DragGeozoneRadius
				m.scene.Renderer().ClearLayer(scene.LayerRuler)
				m.dragRadius = zone.RadiusMeters
			} else {
				m.drag = domain.DragGeozoneCenter
				m.centerOffset = domain.GeoPoint{
					Lat: p.Lat - prim.Point.Lat,
					Lon: p.Lon - prim.Point.Lon,
				}
			}
			m.scene.Renderer().SetDragPanning(false)
			return true
		}

		// A grab on any other vertex promotes it to primary.
		if !mods.Shift {
			for _, zp := range zone.ValidPoints() {
				if zp.Index == zone.PrimaryIndex {
					continue
				}
				if utils.HaversineDistanceMeters(p, zp.Point) <= hitRadius {
					zone.PrimaryIndex = zp.Index
					m.editor.SelectVertex(zp.Index)
					m.scene.DrawGeozone(zone, false)
					m.drag = domain.DragGeozoneCenter
					m.centerOffset = domain.GeoPoint{
						Lat: p.Lat - zp.Point.Lat,
						Lon: p.Lon - zp.Point.Lon,
					}
					m.scene.Renderer().SetDragPanning(false)
					return true
				}
			}
		}
	}

	m.drag = domain.DragNone
	m.scene.Renderer().SetDragPanning(true)
	return false
}

// MouseMove updates the active drag. The lat/lon readout is refreshed on
// every move regardless of drag state.
func (m *Machine) MouseMove(p domain.GeoPoint) {
	m.readout.ShowLatLon(p)
	zone := m.scene.Zone()

	switch m.drag {
	case domain.DragRuler:
		m.rulerEnd = p
		m.readout.ShowDistance(utils.HaversineDistanceMeters(m.rulerStart, m.rulerEnd))
		r := m.scene.Renderer()
		r.ClearLayer(scene.LayerRuler)
		if err := r.AddPolyline(scene.LayerRuler,
			[]domain.GeoPoint{m.rulerStart, m.rulerEnd}, scene.RulerStyle); err != nil {
			m.logger.Warn("Failed to draw ruler", zap.Error(err))
		}

	case domain.DragGeozoneRadius:
		if zone == nil {
			return
		}
		prim := zone.PrimaryPoint()
		if prim == nil {
			return
		}
		radius := math.Round(utils.HaversineDistanceMeters(prim.Point, p))
		radius = m.scene.ClampZoneRadius(radius)
		m.dragRadius = radius
		// Only the primary circle is redrawn during a radius drag.
		m.scene.RedrawPrimaryCircle(prim.Point, radius)
		m.readout.ShowDistance(radius)

	case domain.DragGeozoneCenter:
		if zone == nil {
			return
		}
		prim := zone.PrimaryPoint()
		if prim == nil {
			return
		}
		prim.Point = domain.GeoPoint{
			Lat: p.Lat - m.centerOffset.Lat,
			Lon: p.Lon - m.centerOffset.Lon,
		}
		// Full redraw during a center drag keeps every dependent
		// primitive consistent for multi-geometry types.
		m.scene.DrawGeozone(zone, true)
	}
}

// MouseUp ends a drag. Geozone drags commit the primary vertex (and
// radius, for a resize) and trigger a full redraw. The ruler is left on
// the map; it persists until the next ruler drag or an explicit clear.
func (m *Machine) MouseUp(p domain.GeoPoint) {
	if m.drag.IsGeozone() {
		zone := m.scene.Zone()
		if zone != nil {
			if m.drag == domain.DragGeozoneRadius && m.dragRadius > 0 {
				zone.RadiusMeters = m.dragRadius
			}
			if prim := zone.PrimaryPoint(); prim != nil {
				m.editor.CommitVertex(zone.PrimaryIndex, prim.Point.Lat, prim.Point.Lon, zone.RadiusMeters)
			}
			m.scene.DrawGeozone(zone, false)
		}
		m.drag = domain.DragNone
		m.scene.Renderer().SetDragPanning(true)
		return
	}

	if m.drag == domain.DragRuler {
		m.drag = domain.DragNone
		m.scene.Renderer().SetDragPanning(true)
	}
}

// Click relocates the geofence when the click lands outside every
// vertex. Clicks inside a vertex radius are no-ops, preventing
// accidental relocation.
func (m *Machine) Click(p domain.GeoPoint) bool {
	zone := m.scene.Zone()
	if !m.scene.GeozoneMode() || zone == nil || !zone.Editable {
		return false
	}

	hitRadius := m.scene.VertexHitRadius()
	for _, zp := range zone.ValidPoints() {
		if utils.HaversineDistanceMeters(p, zp.Point) <= hitRadius {
			return false
		}
	}

	switch zone.Type {
	case domain.ZonePointRadius:
		return m.relocatePrimary(zone, p)

	case domain.ZonePolygon:
		valid := zone.ValidPoints()
		if len(valid) == 0 {
			m.synthesizePolygon(zone, p)
		} else {
			m.translatePolygon(zone, p)
		}
		m.commitAll(zone)
		m.scene.DrawGeozone(zone, false)
		return true

	case domain.ZoneSweptPointRadius:
		relocated := m.relocateSwept(zone, p)
		// The swept zone is always reparsed and redrawn after a click,
		// even when the relocation guard rejected it.
		m.scene.DrawGeozone(zone, false)
		return relocated

	default:
		return m.relocatePrimary(zone, p)
	}
}

func (m *Machine) relocatePrimary(zone *domain.Geozone, p domain.GeoPoint) bool {
	prim := zone.PrimaryPoint()
	if prim == nil {
		return false
	}
	prim.Point = p
	m.editor.CommitVertex(zone.PrimaryIndex, p.Lat, p.Lon, zone.RadiusMeters)
	m.scene.DrawGeozone(zone, false)
	return true
}

// synthesizePolygon builds a regular N-gon around the click point. The
// vertex at heading 0 and the ones in the 170..190 band are shrunk to
// 80% radius, giving the zone a deliberately asymmetric default shape.
func (m *Machine) synthesizePolygon(zone *domain.Geozone, center domain.GeoPoint) {
	n := m.cfg.PolygonVertexCount
	step := 360.0 / float64(n)
	points := make([]domain.ZonePoint, 0, n)
	for i := 0; i < n; i++ {
		deg := float64(i) * step
		radius := ngonRadiusMeters
		if deg == 0 || (deg > 170 && deg < 190) {
			radius *= ngonShrinkFactor
		}
		points = append(points, domain.ZonePoint{
			Index: i,
			Point: utils.DestinationPoint(center, radius, deg),
		})
	}
	zone.Points = points
	if zone.PrimaryIndex < 0 || zone.PrimaryIndex >= n {
		zone.PrimaryIndex = 0
	}
}

// translatePolygon rigid-translates every valid vertex by the delta
// between the click and the primary vertex.
func (m *Machine) translatePolygon(zone *domain.Geozone, p domain.GeoPoint) {
	prim := zone.PrimaryPoint()
	if prim == nil || !prim.IsValid() {
		return
	}
	dLat := p.Lat - prim.Point.Lat
	dLon := p.Lon - prim.Point.Lon
	for i := range zone.Points {
		if !zone.Points[i].IsValid() {
			continue
		}
		zone.Points[i].Point.Lat += dLat
		zone.Points[i].Point.Lon += dLon
	}
}

// relocateSwept moves the primary vertex to the click point unless the
// click is implausibly far from the zone. The distance guard measures
// every valid vertex against the first valid vertex.
func (m *Machine) relocateSwept(zone *domain.Geozone, p domain.GeoPoint) bool {
	valid := zone.ValidPoints()
	prim := zone.PrimaryPoint()

	if len(valid) == 0 || prim == nil || !prim.IsValid() {
		if prim == nil {
			return false
		}
		prim.Point = p
		m.editor.CommitVertex(zone.PrimaryIndex, p.Lat, p.Lon, zone.RadiusMeters)
		return true
	}

	maxGap := 0.0
	first := valid[0].Point
	for _, zp := range valid[1:] {
		if d := utils.HaversineDistanceMeters(first, zp.Point); d > maxGap {
			maxGap = d
		}
	}
	maxDelta := sweptDeltaFactor * math.Max(maxGap, sweptMinDeltaMeters)

	if utils.HaversineDistanceMeters(prim.Point, p) > maxDelta {
		return false
	}
	prim.Point = p
	m.editor.CommitVertex(zone.PrimaryIndex, p.Lat, p.Lon, zone.RadiusMeters)
	return true
}

func (m *Machine) commitAll(zone *domain.Geozone) {
	for _, zp := range zone.ValidPoints() {
		m.editor.CommitVertex(zp.Index, zp.Point.Lat, zp.Point.Lon, zone.RadiusMeters)
	}
}
