package interaction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/interaction"
	"github.com/trackmap-service/internal/pkg/utils"
	"github.com/trackmap-service/internal/scene"
)

type circleCall struct {
	center  domain.GeoPoint
	radiusM float64
}

// fakeRenderer records rendering calls per layer.
type fakeRenderer struct {
	polylines map[scene.Layer][][]domain.GeoPoint
	polygons  map[scene.Layer]int
	circles   map[scene.Layer][]circleCall
	cleared   map[scene.Layer]int
	panning   []bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		polylines: make(map[scene.Layer][][]domain.GeoPoint),
		polygons:  make(map[scene.Layer]int),
		circles:   make(map[scene.Layer][]circleCall),
		cleared:   make(map[scene.Layer]int),
	}
}

func (f *fakeRenderer) ClearLayer(layer scene.Layer) {
	f.cleared[layer]++
	f.polylines[layer] = nil
	f.circles[layer] = nil
	f.polygons[layer] = 0
}

func (f *fakeRenderer) AddMarker(layer scene.Layer, pp *domain.Pushpin, popup string) error {
	return nil
}

func (f *fakeRenderer) AddPolyline(layer scene.Layer, points []domain.GeoPoint, style scene.ShapeStyle) error {
	f.polylines[layer] = append(f.polylines[layer], points)
	return nil
}

func (f *fakeRenderer) AddPolygon(layer scene.Layer, vertices []domain.GeoPoint, style scene.ShapeStyle) error {
	f.polygons[layer]++
	return nil
}

func (f *fakeRenderer) AddCircle(layer scene.Layer, center domain.GeoPoint, radiusM float64, style scene.ShapeStyle) error {
	f.circles[layer] = append(f.circles[layer], circleCall{center: center, radiusM: radiusM})
	return nil
}

func (f *fakeRenderer) SetCenter(center domain.GeoPoint, zoom int) {}
func (f *fakeRenderer) BoundsZoom(b *domain.Bounds) int            { return 12 }

// Viewport spans 0.1 degrees over 1000px, giving ~167m drag handles.
func (f *fakeRenderer) Viewport() (int, float64, float64) { return 1000, 0.1, 0.0 }

func (f *fakeRenderer) ShowPopup(pp *domain.Pushpin) {}
func (f *fakeRenderer) HidePopup()                   {}
func (f *fakeRenderer) SetDragPanning(enabled bool)  { f.panning = append(f.panning, enabled) }

type vertexCommit struct {
	index   int
	lat     float64
	lon     float64
	radiusM float64
}

// recEditor records committed vertices and selection changes.
type recEditor struct {
	commits    []vertexCommit
	selections []int
}

func (e *recEditor) CommitVertex(index int, lat, lon, radiusM float64) {
	e.commits = append(e.commits, vertexCommit{index: index, lat: lat, lon: lon, radiusM: radiusM})
}

func (e *recEditor) SelectVertex(index int) {
	e.selections = append(e.selections, index)
}

// recReadout records live measurement updates.
type recReadout struct {
	latlons   []domain.GeoPoint
	distances []float64
}

func (r *recReadout) ShowLatLon(p domain.GeoPoint) { r.latlons = append(r.latlons, p) }
func (r *recReadout) ShowDistance(meters float64)  { r.distances = append(r.distances, meters) }

func newHarness() (*fakeRenderer, *recEditor, *recReadout, *scene.Scene, *interaction.Machine) {
	r := newFakeRenderer()
	ed := &recEditor{}
	ro := &recReadout{}
	sc := scene.New(r, scene.Config{
		DefaultCenter:  domain.GeoPoint{Lat: 40, Lon: -3},
		DefaultZoom:    4,
		MinZoneRadiusM: 100,
		MaxZoneRadiusM: 30000,
	}, zap.NewNop())
	m := interaction.New(sc, ed, ro, interaction.Config{}, zap.NewNop())
	return r, ed, ro, sc, m
}

func pt(lat, lon float64) domain.GeoPoint { return domain.GeoPoint{Lat: lat, Lon: lon} }

func pointRadiusZone(radiusM float64, points ...domain.GeoPoint) *domain.Geozone {
	zps := make([]domain.ZonePoint, len(points))
	for i, p := range points {
		zps[i] = domain.ZonePoint{Index: i, Point: p}
	}
	return &domain.Geozone{
		Type:         domain.ZonePointRadius,
		RadiusMeters: radiusM,
		Points:       zps,
		Editable:     true,
	}
}

func TestMachine_ModifierPassThrough(t *testing.T) {
	_, _, _, _, m := newHarness()

	assert.False(t, m.MouseDown(pt(10, 20), interaction.Modifiers{Alt: true}))
	assert.Equal(t, domain.DragNone, m.Drag())

	assert.False(t, m.MouseDown(pt(10, 20), interaction.Modifiers{Ctrl: true, Shift: true}))
	assert.Equal(t, domain.DragNone, m.Drag())
}

func TestMachine_RulerLifecycle(t *testing.T) {
	r, _, ro, _, m := newHarness()

	start := pt(10, 20)
	end := pt(10.1, 20)

	require.True(t, m.MouseDown(start, interaction.Modifiers{Ctrl: true}))
	assert.Equal(t, domain.DragRuler, m.Drag())
	assert.Equal(t, []bool{false}, r.panning)
	require.NotEmpty(t, ro.distances)
	assert.Equal(t, 0.0, ro.distances[0])

	m.MouseMove(end)
	want := utils.HaversineDistanceMeters(start, end)
	assert.InDelta(t, want, ro.distances[len(ro.distances)-1], 0.01)
	require.Len(t, r.polylines[scene.LayerRuler], 1)
	assert.Equal(t, []domain.GeoPoint{start, end}, r.polylines[scene.LayerRuler][0])

	m.MouseUp(end)
	assert.Equal(t, domain.DragNone, m.Drag())
	assert.Equal(t, []bool{false, true}, r.panning)
	// the ruler line and its measurement survive mouse-up
	assert.Len(t, r.polylines[scene.LayerRuler], 1)
	assert.InDelta(t, want, m.RulerDistanceMeters(), 0.01)
}

func TestMachine_CenterDrag(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20))
	sc.DrawGeozone(zone, false)

	// grab ~445m from the vertex, inside the 1000m hit radius
	grab := pt(10.004, 20)
	require.True(t, m.MouseDown(grab, interaction.Modifiers{}))
	assert.Equal(t, domain.DragGeozoneCenter, m.Drag())

	// the grab offset is preserved: vertex lands at pointer minus offset
	m.MouseMove(pt(10.104, 20.05))
	prim := zone.PrimaryPoint()
	require.NotNil(t, prim)
	assert.InDelta(t, 10.1, prim.Point.Lat, 1e-9)
	assert.InDelta(t, 20.05, prim.Point.Lon, 1e-9)

	m.MouseUp(pt(10.104, 20.05))
	assert.Equal(t, domain.DragNone, m.Drag())
	require.Len(t, ed.commits, 1)
	assert.Equal(t, 0, ed.commits[0].index)
	assert.InDelta(t, 10.1, ed.commits[0].lat, 1e-9)
	assert.InDelta(t, 20.05, ed.commits[0].lon, 1e-9)
	assert.Equal(t, 1000.0, ed.commits[0].radiusM)
}

func TestMachine_RadiusDrag(t *testing.T) {
	r, ed, ro, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20))
	sc.DrawGeozone(zone, false)

	require.True(t, m.MouseDown(pt(10.004, 20), interaction.Modifiers{Shift: true}))
	assert.Equal(t, domain.DragGeozoneRadius, m.Drag())

	target := pt(10.02, 20)
	m.MouseMove(target)

	want := utils.HaversineDistanceMeters(pt(10, 20), target)
	// only the primary circle is shown during the drag
	require.Len(t, r.circles[scene.LayerZones], 1)
	assert.InDelta(t, want, r.circles[scene.LayerZones][0].radiusM, 1.0)
	assert.Equal(t, pt(10, 20), r.circles[scene.LayerZones][0].center)
	assert.InDelta(t, want, ro.distances[len(ro.distances)-1], 1.0)

	m.MouseUp(target)
	assert.InDelta(t, want, zone.RadiusMeters, 1.0)
	require.Len(t, ed.commits, 1)
	assert.InDelta(t, want, ed.commits[0].radiusM, 1.0)
}

func TestMachine_RadiusDragClampedToMax(t *testing.T) {
	_, _, _, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20))
	sc.DrawGeozone(zone, false)

	require.True(t, m.MouseDown(pt(10.004, 20), interaction.Modifiers{Shift: true}))
	m.MouseMove(pt(12, 20)) // ~222km out
	m.MouseUp(pt(12, 20))

	assert.Equal(t, 30000.0, zone.RadiusMeters)
}

func TestMachine_OtherVertexPromotion(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20), pt(10.05, 20))
	sc.DrawGeozone(zone, false)

	require.True(t, m.MouseDown(pt(10.05, 20), interaction.Modifiers{}))
	assert.Equal(t, domain.DragGeozoneCenter, m.Drag())
	assert.Equal(t, 1, zone.PrimaryIndex)
	assert.Equal(t, []int{1}, ed.selections)
}

func TestMachine_MissFallsBackToPanning(t *testing.T) {
	r, _, _, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20))
	sc.DrawGeozone(zone, false)

	assert.False(t, m.MouseDown(pt(11, 21), interaction.Modifiers{}))
	assert.Equal(t, domain.DragNone, m.Drag())
	assert.Equal(t, []bool{true}, r.panning)
}

func TestMachine_ClickInsideVertexIsNoOp(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20))
	sc.DrawGeozone(zone, false)

	assert.False(t, m.Click(pt(10.002, 20)))
	assert.Equal(t, pt(10, 20), zone.PrimaryPoint().Point)
	assert.Empty(t, ed.commits)
}

func TestMachine_ClickRelocatesPointRadius(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := pointRadiusZone(1000, pt(10, 20))
	sc.DrawGeozone(zone, false)

	require.True(t, m.Click(pt(10.5, 20.5)))
	assert.Equal(t, pt(10.5, 20.5), zone.PrimaryPoint().Point)
	require.Len(t, ed.commits, 1)
	assert.Equal(t, vertexCommit{index: 0, lat: 10.5, lon: 20.5, radiusM: 1000}, ed.commits[0])
}

func TestMachine_ClickSynthesizesPolygon(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := &domain.Geozone{Type: domain.ZonePolygon, Editable: true}
	sc.DrawGeozone(zone, false)

	center := pt(10, 20)
	require.True(t, m.Click(center))

	require.Len(t, zone.Points, 8)
	assert.Equal(t, 0, zone.PrimaryIndex)
	assert.Len(t, ed.commits, 8)

	// vertices at heading 0 and 180 are pulled in to 80% radius
	d0 := utils.HaversineDistanceMeters(center, zone.Points[0].Point)
	d90 := utils.HaversineDistanceMeters(center, zone.Points[2].Point)
	d180 := utils.HaversineDistanceMeters(center, zone.Points[4].Point)
	assert.InDelta(t, 360, d0, 1.0)
	assert.InDelta(t, 450, d90, 1.0)
	assert.InDelta(t, 360, d180, 1.0)
}

func TestMachine_ClickTranslatesPolygon(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := &domain.Geozone{
		Type: domain.ZonePolygon,
		Points: []domain.ZonePoint{
			{Index: 0, Point: pt(10, 20)},
			{Index: 1, Point: pt(10.01, 20)},
			{Index: 2, Point: pt(10, 20.01)},
		},
		Editable: true,
	}
	sc.DrawGeozone(zone, false)

	require.True(t, m.Click(pt(10.05, 20.05)))

	assert.InDelta(t, 10.05, zone.Points[0].Point.Lat, 1e-9)
	assert.InDelta(t, 20.05, zone.Points[0].Point.Lon, 1e-9)
	assert.InDelta(t, 10.06, zone.Points[1].Point.Lat, 1e-9)
	assert.InDelta(t, 20.05, zone.Points[1].Point.Lon, 1e-9)
	assert.InDelta(t, 10.05, zone.Points[2].Point.Lat, 1e-9)
	assert.InDelta(t, 20.06, zone.Points[2].Point.Lon, 1e-9)
	assert.Len(t, ed.commits, 3)
}

func TestMachine_SweptClickGuard(t *testing.T) {
	_, ed, _, sc, m := newHarness()

	zone := &domain.Geozone{
		Type:         domain.ZoneSweptPointRadius,
		RadiusMeters: 1000,
		Points: []domain.ZonePoint{
			{Index: 0, Point: pt(10, 20)},
			{Index: 1, Point: pt(10.01, 20)},
		},
		Editable: true,
	}
	sc.DrawGeozone(zone, false)

	// ~55km out: beyond 1.5 x max(vertex spread, 5000m)
	assert.False(t, m.Click(pt(10.5, 20)))
	assert.Equal(t, pt(10, 20), zone.PrimaryPoint().Point)
	assert.Empty(t, ed.commits)

	// ~5.5km out: within the guard, relocation accepted
	require.True(t, m.Click(pt(10.05, 20)))
	assert.Equal(t, pt(10.05, 20), zone.PrimaryPoint().Point)
	require.Len(t, ed.commits, 1)
	assert.Equal(t, 0, ed.commits[0].index)
}
