package scene

import "github.com/trackmap-service/internal/domain"

// Layer identifies a feature layer on the rendering collaborator.
type Layer int

const (
	LayerPushpins Layer = iota
	LayerPOI
	LayerRoutes
	LayerShapes
	LayerZones
	LayerRuler
)

// ShapeStyle - stroke/fill styling for vector primitives.
type ShapeStyle struct {
	StrokeColor   string  `json:"stroke_color"`
	StrokeOpacity float64 `json:"stroke_opacity"`
	StrokeWeight  int     `json:"stroke_weight"`
	FillColor     string  `json:"fill_color,omitempty"`
	FillOpacity   float64 `json:"fill_opacity,omitempty"`
}

// Geozone and ruler styles.
var (
	ZonePrimaryStyle = ShapeStyle{
		StrokeColor: "#CC1111", StrokeOpacity: 0.80, StrokeWeight: 1,
		FillColor: "#11CC22", FillOpacity: 0.28,
	}
	ZoneSecondaryStyle = ShapeStyle{
		StrokeColor: "#11CC11", StrokeOpacity: 0.80, StrokeWeight: 1,
		FillColor: "#11CC22", FillOpacity: 0.18,
	}
	RulerStyle = ShapeStyle{
		StrokeColor: "#FF6422", StrokeOpacity: 1.0, StrokeWeight: 2,
	}
)

// KeepZoom passed to SetCenter keeps the current zoom level.
const KeepZoom = -1

// Renderer is the port to the map-widget collaborator. All operations
// are expected to degrade to no-ops when the widget is not ready; the
// scene never treats a missing collaborator as fatal.
type Renderer interface {
	// ClearLayer removes every feature on the given layer.
	ClearLayer(layer Layer)

	// AddMarker places a pushpin marker with its icon and popup content.
	AddMarker(layer Layer, pp *domain.Pushpin, popup string) error

	// AddPolyline draws a stroked line through the points.
	AddPolyline(layer Layer, points []domain.GeoPoint, style ShapeStyle) error

	// AddPolygon draws a closed styled polygon.
	AddPolygon(layer Layer, vertices []domain.GeoPoint, style ShapeStyle) error

	// AddCircle draws a styled circle of radiusM meters.
	AddCircle(layer Layer, center domain.GeoPoint, radiusM float64, style ShapeStyle) error

	// SetCenter recenters the viewport. zoom KeepZoom keeps the current
	// zoom level.
	SetCenter(center domain.GeoPoint, zoom int)

	// BoundsZoom returns the discrete zoom level at which the bounds fit
	// the viewport.
	BoundsZoom(b *domain.Bounds) int

	// Viewport reports the current view width in pixels and its east and
	// west longitude edges, used to size zoom-dependent drag handles.
	Viewport() (widthPx int, east, west float64)

	// ShowPopup opens the popup of a previously added marker; HidePopup
	// closes any open popup.
	ShowPopup(pp *domain.Pushpin)
	HidePopup()

	// SetDragPanning toggles the widget's native drag panning.
	SetDragPanning(enabled bool)
}

// DetailHighlighter is the detail-report collaborator: it receives row
// highlight signals keyed by feed-wide record index.
type DetailHighlighter interface {
	HighlightRow(recordIndex int, on bool)
}

// Readout receives live measurements during interaction.
type Readout interface {
	ShowLatLon(p domain.GeoPoint)
	ShowDistance(meters float64)
}

// NopHighlighter is used when no detail report is attached.
type NopHighlighter struct{}

func (NopHighlighter) HighlightRow(int, bool) {}

// NopReadout is used when no readout display is attached.
type NopReadout struct{}

func (NopReadout) ShowLatLon(domain.GeoPoint) {}
func (NopReadout) ShowDistance(float64)       {}
