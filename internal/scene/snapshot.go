package scene

import (
	"math"
	"sync"

	"github.com/trackmap-service/internal/domain"
)

// Snapshot zoom limits for the headless renderer.
const (
	minSnapshotZoom = 1
	maxSnapshotZoom = 18
)

var layerNames = map[Layer]string{
	LayerPushpins: "pushpins",
	LayerPOI:      "poi",
	LayerRoutes:   "routes",
	LayerShapes:   "shapes",
	LayerZones:    "zones",
	LayerRuler:    "ruler",
}

// String returns the layer's wire name.
func (l Layer) String() string {
	if name, ok := layerNames[l]; ok {
		return name
	}
	return "unknown"
}

// SnapshotMarker - one placed marker in a scene snapshot.
type SnapshotMarker struct {
	Point       domain.GeoPoint `json:"point"`
	Icon        domain.Icon     `json:"icon"`
	Label       string          `json:"label,omitempty"`
	Popup       string          `json:"popup,omitempty"`
	RecordIndex int             `json:"record_index"`
}

// SnapshotLine - a polyline or polygon outline in a scene snapshot.
type SnapshotLine struct {
	Points []domain.GeoPoint `json:"points"`
	Style  ShapeStyle        `json:"style"`
}

// SnapshotCircle - a circle in a scene snapshot.
type SnapshotCircle struct {
	Center  domain.GeoPoint `json:"center"`
	RadiusM float64         `json:"radius_m"`
	Style   ShapeStyle      `json:"style"`
}

// LayerSnapshot groups the features drawn on one layer.
type LayerSnapshot struct {
	Markers  []SnapshotMarker `json:"markers,omitempty"`
	Lines    []SnapshotLine   `json:"lines,omitempty"`
	Polygons []SnapshotLine   `json:"polygons,omitempty"`
	Circles  []SnapshotCircle `json:"circles,omitempty"`
}

// Snapshot is the serializable projection of everything currently drawn.
type Snapshot struct {
	Center domain.GeoPoint           `json:"center"`
	Zoom   int                       `json:"zoom"`
	Popup  string                    `json:"popup,omitempty"`
	Layers map[string]*LayerSnapshot `json:"layers"`
}

// SnapshotRenderer is the headless Renderer used by the service: instead
// of driving a map widget it records every primitive, and the recorded
// snapshot is what scene read endpoints return. Safe for concurrent use;
// the replay timer and API calls share it.
type SnapshotRenderer struct {
	mu      sync.Mutex
	widthPx int
	east    float64
	west    float64

	center domain.GeoPoint
	zoom   int
	popup  string
	layers map[Layer]*LayerSnapshot
}

// NewSnapshotRenderer creates a recording renderer with a fixed logical
// viewport. The viewport only feeds zoom-dependent sizing; it does not
// clip drawing.
func NewSnapshotRenderer(widthPx int, center domain.GeoPoint, spanDeg float64, zoom int) *SnapshotRenderer {
	if widthPx <= 0 {
		widthPx = 1000
	}
	if spanDeg <= 0 {
		spanDeg = 0.2
	}
	return &SnapshotRenderer{
		widthPx: widthPx,
		east:    center.Lon + spanDeg/2,
		west:    center.Lon - spanDeg/2,
		center:  center,
		zoom:    zoom,
		layers:  make(map[Layer]*LayerSnapshot),
	}
}

func (r *SnapshotRenderer) layer(l Layer) *LayerSnapshot {
	ls, ok := r.layers[l]
	if !ok {
		ls = &LayerSnapshot{}
		r.layers[l] = ls
	}
	return ls
}

// ClearLayer removes every recorded feature on the layer.
func (r *SnapshotRenderer) ClearLayer(l Layer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.layers, l)
}

// AddMarker records a marker with its rendered popup text.
func (r *SnapshotRenderer) AddMarker(l Layer, pp *domain.Pushpin, popup string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layer(l).Markers = append(r.layer(l).Markers, SnapshotMarker{
		Point:       pp.Point,
		Icon:        pp.Icon,
		Label:       pp.Label,
		Popup:       popup,
		RecordIndex: pp.RecordIndex,
	})
	return nil
}

// AddPolyline records a styled polyline.
func (r *SnapshotRenderer) AddPolyline(l Layer, points []domain.GeoPoint, style ShapeStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pts := make([]domain.GeoPoint, len(points))
	copy(pts, points)
	r.layer(l).Lines = append(r.layer(l).Lines, SnapshotLine{Points: pts, Style: style})
	return nil
}

// AddPolygon records a styled polygon.
func (r *SnapshotRenderer) AddPolygon(l Layer, vertices []domain.GeoPoint, style ShapeStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	pts := make([]domain.GeoPoint, len(vertices))
	copy(pts, vertices)
	r.layer(l).Polygons = append(r.layer(l).Polygons, SnapshotLine{Points: pts, Style: style})
	return nil
}

// AddCircle records a styled circle.
func (r *SnapshotRenderer) AddCircle(l Layer, center domain.GeoPoint, radiusM float64, style ShapeStyle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layer(l).Circles = append(r.layer(l).Circles, SnapshotCircle{Center: center, RadiusM: radiusM, Style: style})
	return nil
}

// SetCenter recenters the logical viewport, preserving the longitude
// span. KeepZoom keeps the current zoom.
func (r *SnapshotRenderer) SetCenter(center domain.GeoPoint, zoom int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := r.east - r.west
	r.center = center
	r.east = center.Lon + span/2
	r.west = center.Lon - span/2
	if zoom != KeepZoom {
		r.zoom = zoom
	}
}

// BoundsZoom derives a discrete web-mercator-style zoom from the bounds
// span: one level per halving of the 360-degree world width.
func (r *SnapshotRenderer) BoundsZoom(b *domain.Bounds) int {
	span := math.Max(b.Width(), 2*b.Height())
	if span <= 0 {
		return maxSnapshotZoom
	}
	z := int(math.Floor(math.Log2(360.0 / span)))
	if z < minSnapshotZoom {
		z = minSnapshotZoom
	}
	if z > maxSnapshotZoom {
		z = maxSnapshotZoom
	}
	return z
}

// Viewport reports the logical view used for zoom-dependent sizing.
func (r *SnapshotRenderer) Viewport() (int, float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.widthPx, r.east, r.west
}

// ShowPopup records the open popup content.
func (r *SnapshotRenderer) ShowPopup(pp *domain.Pushpin) {
	if pp == nil {
		r.HidePopup()
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popup = PopupText(pp)
}

// HidePopup closes the recorded popup.
func (r *SnapshotRenderer) HidePopup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.popup = ""
}

// SetDragPanning is a no-op for the headless renderer.
func (r *SnapshotRenderer) SetDragPanning(bool) {}

// Snapshot returns a copy of the recorded scene.
func (r *SnapshotRenderer) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	layers := make(map[string]*LayerSnapshot, len(r.layers))
	for l, ls := range r.layers {
		cp := &LayerSnapshot{
			Markers:  append([]SnapshotMarker(nil), ls.Markers...),
			Lines:    append([]SnapshotLine(nil), ls.Lines...),
			Polygons: append([]SnapshotLine(nil), ls.Polygons...),
			Circles:  append([]SnapshotCircle(nil), ls.Circles...),
		}
		layers[l.String()] = cp
	}
	return &Snapshot{
		Center: r.center,
		Zoom:   r.zoom,
		Popup:  r.popup,
		Layers: layers,
	}
}
