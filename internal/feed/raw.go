package feed

import (
	"strings"

	"github.com/trackmap-service/internal/domain"
)

// rawFeed is the encoding-neutral intermediate both wire formats decode
// into. Building the domain feed from a single intermediate is what
// guarantees the two encodings yield identical entity sets.
type rawFeed struct {
	IsFleet   bool
	Time      rawTime
	LastEvent rawLastEvent
	Shapes    []rawShape
	DataSets  []rawDataSet
	Actions   []domain.Action
}

type rawTime struct {
	Timestamp int64
	TimeZone  string
	Year      int
	Month     int
	Day       int
	DateText  string
	TimeText  string
}

type rawLastEvent struct {
	rawTime
	Device  string
	Battery float64
	Signal  float64
	Summary string
}

type rawShape struct {
	Type        string
	RadiusM     float64
	Color       string
	Description string
	PPNdx       int
	Points      []string // "lat/lon" pairs
}

type rawDataSet struct {
	Type       string
	ID         string
	Route      bool
	RouteColor string
	TextColor  string
	Points     []string // pipe-delimited records
}

// parseShapePoints converts "lat/lon" pairs into vertices, skipping 0/0
// entries.
func parseShapePoints(pts []string) []domain.GeoPoint {
	out := make([]domain.GeoPoint, 0, len(pts))
	for _, p := range pts {
		ll := strings.SplitN(strings.TrimSpace(p), "/", 2)
		if len(ll) != 2 {
			continue
		}
		gp := domain.GeoPoint{Lat: parseFloat(ll[0]), Lon: parseFloat(ll[1])}
		if gp.IsOrigin() {
			continue
		}
		out = append(out, gp)
	}
	return out
}

// splitPointList splits a comma separated "lat/lon,lat/lon" list.
func splitPointList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}
