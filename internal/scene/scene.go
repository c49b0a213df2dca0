package scene

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/pkg/utils"
)

// Config - scene behavior knobs, sourced from configuration.
type Config struct {
	DefaultCenter  domain.GeoPoint
	DefaultZoom    int
	MinZoneRadiusM float64
	MaxZoneRadiusM float64

	// PointRadiusDefaultM / SweptRadiusDefaultM replace a NaN radius for
	// the respective zone types.
	PointRadiusDefaultM float64
	SweptRadiusDefaultM float64

	// HandleSizePx is the on-screen radius of polygon drag handles.
	HandleSizePx float64
}

// boundsPadMeters - a drawn pushpin box is padded by two synthetic
// points this far north and south of its center, so even a single point
// yields a non-zero fit box.
const boundsPadMeters = 400.0

// metersPerDegreeLat approximates one degree of latitude.
const metersPerDegreeLat = 111320.0

const defaultShapeColor = "#0000FF"

type routeSegment struct {
	points []domain.GeoPoint
	color  string
}

// Scene owns the currently rendered set for one map session. Callers
// must serialize access (sessions hold a scene behind their own mutex).
type Scene struct {
	logger *zap.Logger
	r      Renderer
	cfg    Config

	routes []routeSegment

	// geozoneMode suppresses pushpin drawing while a geofence is being
	// edited.
	geozoneMode bool
	zone        *domain.Geozone
}

// New creates a scene bound to a renderer. A nil logger is replaced with
// a no-op logger.
func New(r Renderer, cfg Config, logger *zap.Logger) *Scene {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MinZoneRadiusM <= 0 {
		cfg.MinZoneRadiusM = 100
	}
	if cfg.MaxZoneRadiusM <= 0 {
		cfg.MaxZoneRadiusM = 30000
	}
	if cfg.PointRadiusDefaultM <= 0 {
		cfg.PointRadiusDefaultM = 5000
	}
	if cfg.SweptRadiusDefaultM <= 0 {
		cfg.SweptRadiusDefaultM = 1000
	}
	if cfg.HandleSizePx <= 0 {
		cfg.HandleSizePx = 15
	}
	return &Scene{logger: logger, r: r, cfg: cfg}
}

// GeozoneMode reports whether geofence editing is active.
func (s *Scene) GeozoneMode() bool { return s.geozoneMode }

// Zone returns the geozone currently under edit, or nil.
func (s *Scene) Zone() *domain.Geozone { return s.zone }

// Config returns the scene configuration.
func (s *Scene) Config() Config { return s.cfg }

// Renderer returns the bound rendering collaborator.
func (s *Scene) Renderer() Renderer { return s.r }

// ClearAll removes every rendered artifact and resets accumulated route
// state. Idempotent.
func (s *Scene) ClearAll() {
	s.r.HidePopup()
	s.r.ClearLayer(LayerPushpins)
	s.r.ClearLayer(LayerPOI)
	s.r.ClearLayer(LayerRoutes)
	s.r.ClearLayer(LayerShapes)
	s.r.ClearLayer(LayerRuler)
	s.routes = nil
}

// DrawPushpins renders the visible pushpins of a dataset and applies the
// recenter policy. Returns deferred=true when replayFlag >= 1: the
// caller hands the set to the replay engine instead.
//
// Drawing is best-effort: failures for individual pushpins are collected
// and surfaced as one aggregated error after all pushpins were
// attempted.
func (s *Scene) DrawPushpins(pushpins []*domain.Pushpin, recenter domain.RecenterMode, replayFlag int) (deferred bool, err error) {
	if s.geozoneMode {
		return false, nil
	}

	bounds := domain.NewBounds()
	visible := make([]*domain.Pushpin, 0, len(pushpins))
	for _, pp := range pushpins {
		if pp.Show && !pp.Point.IsOrigin() {
			visible = append(visible, pp)
			bounds.Extend(pp.Point)
		}
	}

	if bounds.IsValid() {
		// Pad with two synthetic points north and south of center so a
		// single pushpin still produces a non-zero fit box.
		center := bounds.Center()
		bounds.Extend(utils.DestinationPoint(center, boundsPadMeters, 0))
		bounds.Extend(utils.DestinationPoint(center, boundsPadMeters, 180))
	}

	if recenter != domain.RecenterNone {
		switch {
		case len(visible) == 0:
			s.r.SetCenter(s.cfg.DefaultCenter, s.cfg.DefaultZoom)
		case recenter == domain.RecenterLast || recenter == domain.RecenterPan:
			s.r.SetCenter(visible[len(visible)-1].Point, KeepZoom)
		default:
			s.r.SetCenter(bounds.Center(), s.r.BoundsZoom(bounds))
		}
	}

	if len(visible) == 0 {
		return false, nil
	}

	if replayFlag >= 1 {
		return true, nil
	}

	var failed []string
	for _, pp := range visible {
		if addErr := s.r.AddMarker(LayerPushpins, pp, PopupText(pp)); addErr != nil {
			failed = append(failed, addErr.Error())
		}
	}
	if len(failed) > 0 {
		err = fmt.Errorf("failed to draw %d of %d pushpins: %s",
			len(failed), len(visible), strings.Join(failed, "; "))
		s.logger.Warn("Pushpin drawing partially failed", zap.Error(err))
	}
	return false, err
}

// DrawPOI renders POI markers on their own layer. No recenter, no
// replay.
func (s *Scene) DrawPOI(pushpins []*domain.Pushpin) error {
	var failed []string
	for _, pp := range pushpins {
		if pp.Point.IsOrigin() {
			continue
		}
		if err := s.r.AddMarker(LayerPOI, pp, PopupText(pp)); err != nil {
			failed = append(failed, err.Error())
		}
	}
	if len(failed) > 0 {
		err := fmt.Errorf("failed to draw %d poi markers: %s", len(failed), strings.Join(failed, "; "))
		s.logger.Warn("POI drawing partially failed", zap.Error(err))
		return err
	}
	return nil
}

// DrawRoute appends a route segment and redraws all accumulated
// segments. Each call is additive; ClearAll resets the accumulation.
func (s *Scene) DrawRoute(points []domain.GeoPoint, color string) error {
	if len(points) < 2 {
		return nil
	}
	s.routes = append(s.routes, routeSegment{points: points, color: color})

	s.r.ClearLayer(LayerRoutes)
	var firstErr error
	for _, seg := range s.routes {
		style := ShapeStyle{StrokeColor: seg.color, StrokeOpacity: 1.0, StrokeWeight: 2}
		if err := s.r.AddPolyline(LayerRoutes, seg.points, style); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// DrawShape renders one decorative shape. A leading "!" on the type
// clears existing shapes first; an empty or bare "!" type only clears.
// Returns whether a shape was actually drawn.
func (s *Scene) DrawShape(shape *domain.Shape) (bool, error) {
	shapeType := strings.TrimSpace(shape.Type)
	if shapeType == "" || shapeType == "!" {
		s.r.ClearLayer(LayerShapes)
		return false, nil
	}
	if strings.HasPrefix(shapeType, "!") {
		s.r.ClearLayer(LayerShapes)
		shapeType = shapeType[1:]
	}
	if len(shape.Vertices) == 0 {
		return false, nil
	}

	color := shape.Color
	if color == "" {
		color = defaultShapeColor
	}
	style := ShapeStyle{StrokeColor: color, StrokeOpacity: 0.8, StrokeWeight: 1, FillColor: color, FillOpacity: 0.1}

	bounds := domain.NewBounds()
	drew := false

	switch shapeType {
	case domain.ShapeCircle:
		for _, v := range shape.Vertices {
			if err := s.r.AddCircle(LayerShapes, v, shape.RadiusMeters, style); err != nil {
				return false, err
			}
			s.extendByRadius(bounds, v, shape.RadiusMeters)
			drew = true
		}

	case domain.ShapeRectangle:
		if len(shape.Vertices) < 2 {
			return false, nil
		}
		a, b := shape.Vertices[0], shape.Vertices[1]
		minLat, maxLat := math.Min(a.Lat, b.Lat), math.Max(a.Lat, b.Lat)
		minLon, maxLon := math.Min(a.Lon, b.Lon), math.Max(a.Lon, b.Lon)
		corners := []domain.GeoPoint{
			{Lat: maxLat, Lon: minLon},
			{Lat: maxLat, Lon: maxLon},
			{Lat: minLat, Lon: maxLon},
			{Lat: minLat, Lon: minLon},
		}
		if err := s.r.AddPolygon(LayerShapes, corners, style); err != nil {
			return false, err
		}
		for _, c := range corners {
			bounds.Extend(c)
		}
		drew = true

	case domain.ShapePolygon:
		if len(shape.Vertices) < 3 {
			return false, nil
		}
		if err := s.r.AddPolygon(LayerShapes, shape.Vertices, style); err != nil {
			return false, err
		}
		for _, v := range shape.Vertices {
			bounds.Extend(v)
		}
		drew = true

	case domain.ShapeCenter:
		// Bounds contribution only, nothing visible.
		for _, v := range shape.Vertices {
			bounds.Extend(v)
		}
		drew = true

	case domain.ShapeCorridor:
		// Not implemented by the rendering contract yet.
		s.logger.Debug("Corridor shape not supported, skipped")
		return false, nil

	default:
		return false, nil
	}

	if drew && shape.PushpinIndex >= 0 && bounds.IsValid() {
		marker := &domain.Pushpin{
			RecordIndex:  -1,
			DatasetIndex: -1,
			Point:        bounds.Center(),
			Icon:         IconByIndex(shape.PushpinIndex),
			Show:         true,
		}
		marker.SetPopup(shape.Description)
		if err := s.r.AddMarker(LayerShapes, marker, shape.Description); err != nil {
			s.logger.Warn("Failed to place shape marker", zap.Error(err))
		}
	}

	if shape.ZoomTo && bounds.IsValid() {
		s.r.SetCenter(bounds.Center(), s.r.BoundsZoom(bounds))
	}

	return drew, nil
}

// DrawGeozone renders an editable geofence and enables geozone-edit
// mode. While isDragging, the recenter step is skipped so the viewport
// does not jump under the pointer.
func (s *Scene) DrawGeozone(zone *domain.Geozone, isDragging bool) {
	s.geozoneMode = true
	s.zone = zone

	s.r.ClearLayer(LayerZones)

	valid := zone.ValidPoints()
	if len(valid) == 0 {
		if !isDragging {
			s.r.SetCenter(s.cfg.DefaultCenter, s.cfg.DefaultZoom)
		}
		return
	}

	bounds := domain.NewBounds()

	switch zone.Type {
	case domain.ZonePointRadius:
		radius := s.normalizeRadius(zone.RadiusMeters, s.cfg.PointRadiusDefaultM)
		zone.RadiusMeters = radius
		for _, zp := range valid {
			style := ZoneSecondaryStyle
			if zp.Index == zone.PrimaryIndex {
				style = ZonePrimaryStyle
			}
			if err := s.r.AddCircle(LayerZones, zp.Point, radius, style); err != nil {
				s.logger.Warn("Failed to draw zone circle", zap.Error(err))
			}
			s.extendByRadius(bounds, zp.Point, radius)
		}

	case domain.ZonePolygon:
		if len(valid) >= 3 {
			pts := make([]domain.GeoPoint, 0, len(valid))
			for _, zp := range valid {
				pts = append(pts, zp.Point)
			}
			if err := s.r.AddPolygon(LayerZones, pts, ZoneSecondaryStyle); err != nil {
				s.logger.Warn("Failed to draw zone polygon", zap.Error(err))
			}
		}
		handleM := s.handleRadiusMeters()
		for _, zp := range valid {
			style := ZoneSecondaryStyle
			if zp.Index == zone.PrimaryIndex {
				style = ZonePrimaryStyle
			}
			if err := s.r.AddCircle(LayerZones, zp.Point, handleM, style); err != nil {
				s.logger.Warn("Failed to draw zone handle", zap.Error(err))
			}
			bounds.Extend(zp.Point)
		}

	case domain.ZoneSweptPointRadius:
		radius := s.normalizeRadius(zone.RadiusMeters, s.cfg.SweptRadiusDefaultM)
		zone.RadiusMeters = radius
		for _, zp := range valid {
			style := ZoneSecondaryStyle
			if zp.Index == zone.PrimaryIndex {
				style = ZonePrimaryStyle
			}
			if err := s.r.AddCircle(LayerZones, zp.Point, radius, style); err != nil {
				s.logger.Warn("Failed to draw zone circle", zap.Error(err))
			}
			s.extendByRadius(bounds, zp.Point, radius)
		}
		// Corridor capsules between consecutive vertices, perpendicular
		// to the inter-vertex heading.
		for i := 0; i+1 < len(valid); i++ {
			a, b := valid[i].Point, valid[i+1].Point
			perp := utils.HeadingDegrees(a, b) - 90.0
			quad := []domain.GeoPoint{
				utils.DestinationPoint(a, radius, perp),
				utils.DestinationPoint(b, radius, perp),
				utils.DestinationPoint(b, radius, perp+180),
				utils.DestinationPoint(a, radius, perp+180),
			}
			if err := s.r.AddPolygon(LayerZones, quad, ZoneSecondaryStyle); err != nil {
				s.logger.Warn("Failed to draw corridor segment", zap.Error(err))
			}
		}

	case domain.ZoneBoundedRect:
		pts := make([]domain.GeoPoint, 0, len(valid))
		for _, zp := range valid {
			pts = append(pts, zp.Point)
			bounds.Extend(zp.Point)
		}
		if len(pts) >= 2 {
			rect := []domain.GeoPoint{
				{Lat: bounds.MaxLat, Lon: bounds.MinLon},
				{Lat: bounds.MaxLat, Lon: bounds.MaxLon},
				{Lat: bounds.MinLat, Lon: bounds.MaxLon},
				{Lat: bounds.MinLat, Lon: bounds.MinLon},
			}
			if err := s.r.AddPolygon(LayerZones, rect, ZonePrimaryStyle); err != nil {
				s.logger.Warn("Failed to draw zone rectangle", zap.Error(err))
			}
		}
	}

	if !isDragging && bounds.IsValid() {
		s.r.SetCenter(bounds.Center(), s.r.BoundsZoom(bounds))
	}
}

// RedrawPrimaryCircle redraws only the primary circle during a radius
// drag; the full zone redraw happens on commit.
func (s *Scene) RedrawPrimaryCircle(center domain.GeoPoint, radiusM float64) {
	if s.zone == nil {
		return
	}
	s.r.ClearLayer(LayerZones)
	if err := s.r.AddCircle(LayerZones, center, radiusM, ZonePrimaryStyle); err != nil {
		s.logger.Warn("Failed to redraw primary circle", zap.Error(err))
	}
}

// VertexHitRadius returns the pointer hit-test radius for zone vertices:
// the zone radius for radius-bearing types, the on-screen handle size
// for polygons.
func (s *Scene) VertexHitRadius() float64 {
	if s.zone == nil {
		return 0
	}
	if s.zone.Type == domain.ZonePolygon || s.zone.RadiusMeters <= 0 {
		return s.handleRadiusMeters()
	}
	return s.zone.RadiusMeters
}

// ExitGeozoneMode leaves geofence editing and clears the zone layer.
func (s *Scene) ExitGeozoneMode() {
	s.geozoneMode = false
	s.zone = nil
	s.r.ClearLayer(LayerZones)
}

// ClampZoneRadius clamps a radius to the configured zone radius range.
func (s *Scene) ClampZoneRadius(radiusM float64) float64 {
	return utils.ClampRadius(radiusM, s.cfg.MinZoneRadiusM, s.cfg.MaxZoneRadiusM)
}

func (s *Scene) normalizeRadius(radiusM, def float64) float64 {
	if math.IsNaN(radiusM) || radiusM <= 0 {
		radiusM = def
	}
	return s.ClampZoneRadius(radiusM)
}

// handleRadiusMeters sizes polygon drag handles to a fixed on-screen
// pixel radius at the current zoom.
func (s *Scene) handleRadiusMeters() float64 {
	widthPx, east, west := s.r.Viewport()
	dpp := utils.DegreesPerPixel(widthPx, east, west)
	if dpp <= 0 {
		return 50 // widget not ready, arbitrary visible size
	}
	return s.cfg.HandleSizePx * dpp * metersPerDegreeLat
}

// extendByRadius extends bounds with the circle's four cardinal extreme
// points (an approximation of the true circle extent).
func (s *Scene) extendByRadius(b *domain.Bounds, center domain.GeoPoint, radiusM float64) {
	b.Extend(center)
	for _, h := range []float64{0, 90, 180, 270} {
		b.Extend(utils.DestinationPoint(center, radiusM, h))
	}
}
