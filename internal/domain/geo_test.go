package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trackmap-service/internal/domain"
)

func TestBounds_Empty(t *testing.T) {
	b := domain.NewBounds()
	assert.False(t, b.IsValid())
	assert.Equal(t, 90.0, b.MinLat)
	assert.Equal(t, -90.0, b.MaxLat)
	assert.Equal(t, 180.0, b.MinLon)
	assert.Equal(t, -180.0, b.MaxLon)
}

func TestBounds_SinglePoint(t *testing.T) {
	b := domain.NewBounds()
	b.Extend(domain.GeoPoint{Lat: 41.4, Lon: 2.2})

	assert.True(t, b.IsValid())
	assert.Equal(t, 0.0, b.Width())
	assert.Equal(t, 0.0, b.Height())
	assert.Equal(t, domain.GeoPoint{Lat: 41.4, Lon: 2.2}, b.Center())
}

func TestBounds_ExtendMonotonic(t *testing.T) {
	b := domain.NewBounds()
	b.Extend(domain.GeoPoint{Lat: 10, Lon: 20})
	b.Extend(domain.GeoPoint{Lat: -5, Lon: 30})
	b.Extend(domain.GeoPoint{Lat: 2, Lon: 25}) // interior, no effect

	assert.Equal(t, -5.0, b.MinLat)
	assert.Equal(t, 10.0, b.MaxLat)
	assert.Equal(t, 20.0, b.MinLon)
	assert.Equal(t, 30.0, b.MaxLon)
	assert.Equal(t, domain.GeoPoint{Lat: 2.5, Lon: 25}, b.Center())
}

func TestCompassLabel(t *testing.T) {
	cases := []struct {
		heading float64
		label   string
	}{
		{0, "N"},
		{44, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{350, "N"},
		{-1, ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.label, domain.CompassLabel(c.heading), "heading %v", c.heading)
	}
}

func TestDragType_IsGeozone(t *testing.T) {
	assert.False(t, domain.DragNone.IsGeozone())
	assert.False(t, domain.DragRuler.IsGeozone())
	assert.True(t, domain.DragGeozoneCenter.IsGeozone())
	assert.True(t, domain.DragGeozoneRadius.IsGeozone())
}

func TestPushpin_PopupCachedOnce(t *testing.T) {
	p := &domain.Pushpin{}
	p.SetPopup("first")
	p.SetPopup("second")
	assert.Equal(t, "first", p.Popup())
}
