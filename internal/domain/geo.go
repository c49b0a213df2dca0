package domain

// GeoPoint - WGS-84 coordinate in decimal degrees
type GeoPoint struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// IsOrigin reports whether the point is the 0/0 "no fix" marker.
// Records without a GPS fix carry 0/0 rather than a null.
func (p GeoPoint) IsOrigin() bool {
	return p.Lat == 0 && p.Lon == 0
}

// Bounds - geographic bounding box accumulated from points.
//
// MinLon/MaxLon are not normalized across the ±180 seam: a bounds built
// from points on both sides of the antimeridian spans the long way around.
// DegreesPerPixel compensates for the seam, Bounds does not.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// NewBounds creates an empty bounds with inverted extremes, so the first
// Extend establishes the box.
func NewBounds() *Bounds {
	return &Bounds{
		MinLat: 90,
		MaxLat: -90,
		MinLon: 180,
		MaxLon: -180,
	}
}

// Extend grows the bounds to include the point. Monotonic: bounds never
// shrink.
func (b *Bounds) Extend(p GeoPoint) {
	if p.Lat < b.MinLat {
		b.MinLat = p.Lat
	}
	if p.Lat > b.MaxLat {
		b.MaxLat = p.Lat
	}
	if p.Lon < b.MinLon {
		b.MinLon = p.Lon
	}
	if p.Lon > b.MaxLon {
		b.MaxLon = p.Lon
	}
}

// IsValid reports whether at least one point has been extended into the
// bounds.
func (b *Bounds) IsValid() bool {
	return b.MinLat <= b.MaxLat && b.MinLon <= b.MaxLon
}

// Center returns the midpoint of the box per axis.
func (b *Bounds) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Width returns the longitude span in degrees.
func (b *Bounds) Width() float64 {
	return b.MaxLon - b.MinLon
}

// Height returns the latitude span in degrees.
func (b *Bounds) Height() float64 {
	return b.MaxLat - b.MinLat
}
