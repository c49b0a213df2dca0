package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trackmap-service/internal/domain"
)

// ParsePointList parses a "lat/lon,lat/lon,..." vertex list. Empty items
// keep their slot as invalid 0/0 vertices so vertex indexes stay stable
// across a round trip.
func ParsePointList(s string) ([]domain.ZonePoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	points := make([]domain.ZonePoint, 0, len(parts))
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			points = append(points, domain.ZonePoint{Index: i})
			continue
		}

		ll := strings.Split(part, "/")
		if len(ll) != 2 {
			return nil, fmt.Errorf("point %d: want lat/lon, got %q", i, part)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(ll[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: bad latitude %q", i, ll[0])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(ll[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("point %d: bad longitude %q", i, ll[1])
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("point %d: out of range %s/%s", i, ll[0], ll[1])
		}
		points = append(points, domain.ZonePoint{
			Index: i,
			Point: domain.GeoPoint{Lat: lat, Lon: lon},
		})
	}
	return points, nil
}

// FormatPointList renders vertices back to "lat/lon,..." form with five
// decimal places (about one meter). Invalid slots render as empty items.
func FormatPointList(points []domain.ZonePoint) string {
	parts := make([]string, len(points))
	for i, zp := range points {
		if !zp.IsValid() {
			continue
		}
		parts[i] = strconv.FormatFloat(zp.Point.Lat, 'f', 5, 64) +
			"/" + strconv.FormatFloat(zp.Point.Lon, 'f', 5, 64)
	}
	return strings.Join(parts, ",")
}
