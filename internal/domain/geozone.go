package domain

import (
	"time"

	"github.com/google/uuid"
)

// ZoneType - geofence geometry discriminator
type ZoneType int

const (
	ZonePointRadius      ZoneType = 0
	ZoneBoundedRect      ZoneType = 1
	ZoneSweptPointRadius ZoneType = 2
	ZonePolygon          ZoneType = 3
)

// DragType - interaction drag mode. Geozone modes share the 0x10 bit so a
// single mask test answers "any geozone drag".
type DragType int

const (
	DragNone          DragType = 0x00
	DragRuler         DragType = 0x01
	DragGeozone       DragType = 0x10 // mask bit
	DragGeozoneCenter DragType = 0x11
	DragGeozoneRadius DragType = 0x12
)

// IsGeozone reports whether the drag type is any geozone edit mode.
func (d DragType) IsGeozone() bool {
	return d&DragGeozone != 0
}

// ZonePoint - one vertex of a geozone. Vertices at 0/0 are present but
// not valid; the slot ordering is significant.
type ZonePoint struct {
	Index int      `json:"index" db:"ndx"`
	Point GeoPoint `json:"point"`
}

// IsValid reports whether the vertex holds a real coordinate.
func (zp ZonePoint) IsValid() bool {
	return !zp.Point.IsOrigin()
}

// Geozone - editable geofence.
type Geozone struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	AccountID    string      `json:"account_id" db:"account_id"`
	Name         string      `json:"name" db:"name"`
	Type         ZoneType    `json:"type" db:"zone_type"`
	RadiusMeters float64     `json:"radius_m" db:"radius_m"`
	Color        string      `json:"color" db:"color"`
	Points       []ZonePoint `json:"points"`

	// PrimaryIndex designates the currently draggable vertex.
	PrimaryIndex int `json:"primary_index"`

	Editable bool `json:"editable"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PrimaryPoint returns the primary vertex, or nil when the index is out
// of range.
func (g *Geozone) PrimaryPoint() *ZonePoint {
	if g.PrimaryIndex < 0 || g.PrimaryIndex >= len(g.Points) {
		return nil
	}
	return &g.Points[g.PrimaryIndex]
}

// ValidPoints returns the vertices holding real coordinates, in slot
// order.
func (g *Geozone) ValidPoints() []ZonePoint {
	out := make([]ZonePoint, 0, len(g.Points))
	for _, zp := range g.Points {
		if zp.IsValid() {
			out = append(out, zp)
		}
	}
	return out
}
