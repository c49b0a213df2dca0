package utils

import (
	"math"

	"github.com/trackmap-service/internal/domain"
)

// EarthRadiusMeters is shared by distance and destination-point math so
// radius checks and distance checks agree.
const EarthRadiusMeters = 6371000.0

// HaversineDistanceMeters computes the great-circle distance between two
// points in meters.
func HaversineDistanceMeters(a, b domain.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	lat1Rad := a.Lat * math.Pi / 180.0
	lat2Rad := b.Lat * math.Pi / 180.0

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// DestinationPoint computes the point radiusMeters away from origin along
// headingDeg on a spherical Earth. Heading 0 = north, 90 = east,
// clockwise.
func DestinationPoint(origin domain.GeoPoint, radiusMeters, headingDeg float64) domain.GeoPoint {
	latRad := origin.Lat * math.Pi / 180.0
	lonRad := origin.Lon * math.Pi / 180.0
	crsRad := headingDeg * math.Pi / 180.0
	d := radiusMeters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(d) +
		math.Cos(latRad)*math.Sin(d)*math.Cos(crsRad))
	lon2 := lonRad + math.Atan2(
		math.Sin(crsRad)*math.Sin(d)*math.Cos(latRad),
		math.Cos(d)-math.Sin(latRad)*math.Sin(lat2))

	return domain.GeoPoint{
		Lat: lat2 * 180.0 / math.Pi,
		Lon: lon2 * 180.0 / math.Pi,
	}
}

// HeadingDegrees computes the initial great-circle bearing from a to b,
// 0 = north, clockwise, in [0, 360).
func HeadingDegrees(a, b domain.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	dLon := (b.Lon - a.Lon) * math.Pi / 180.0

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brg := math.Atan2(y, x) * 180.0 / math.Pi
	if brg < 0 {
		brg += 360.0
	}
	return brg
}

// DegreesPerPixel returns the longitude degrees covered by one pixel of a
// viewport spanning west..east. When east < west the viewport straddles
// the antimeridian and the span is widened by 360.
func DegreesPerPixel(viewWidthPx int, east, west float64) float64 {
	if viewWidthPx <= 0 {
		return 0
	}
	span := east - west
	if east < west {
		span += 360.0
	}
	return span / float64(viewWidthPx)
}

// ValidateCoordinates reports whether lat/lon are inside WGS-84 range.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius reports whether a zone radius in meters is inside the
// given clamp range.
func ValidateRadius(radiusM, minM, maxM float64) bool {
	return radiusM >= minM && radiusM <= maxM
}

// ClampRadius clamps a zone radius to [minM, maxM].
func ClampRadius(radiusM, minM, maxM float64) float64 {
	if radiusM < minM {
		return minM
	}
	if radiusM > maxM {
		return maxM
	}
	return radiusM
}
