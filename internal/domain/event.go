package domain

import (
	"math"
	"time"
)

// MotionState - motion classification carried on each event record
type MotionState int

const (
	MotionUndefined MotionState = -1
	MotionMoving    MotionState = 0
	MotionStopped   MotionState = 1
	MotionStopEvent MotionState = 2
)

// Compass point labels, clockwise from north in 45 degree buckets.
var compassLabels = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassLabel returns the 8-point compass label for a heading in degrees.
func CompassLabel(headingDeg float64) string {
	if headingDeg < 0 {
		return ""
	}
	ndx := int(math.Round(headingDeg/45.0)) % 8
	return compassLabels[ndx]
}

// KilometersPerMile converts between the wire's kph speeds and the
// mile-based popup display.
const KilometersPerMile = 1.609344

// MinCellAccuracyMeters - floor applied to the accuracy radius of
// cell-tower derived fixes.
const MinCellAccuracyMeters = 100.0

// EventRecord - one normalized telemetry sample decoded from a feed
// record line.
type EventRecord struct {
	// Identity within the decoded feed.
	RecordIndex  int `json:"record_index"`  // 1-based feed-wide sequence, -1 for POI
	DatasetIndex int `json:"dataset_index"` // owning dataset, -1 for POI

	DeviceID    string `json:"device_id"`
	Description string `json:"description"`

	Timestamp int64  `json:"timestamp"` // epoch seconds, 0 when absent
	DateText  string `json:"date"`
	TimeText  string `json:"time"`
	TimeZone  string `json:"timezone"`

	StatusCode string `json:"status"`
	IconIndex  int    `json:"icon_index"`

	Point    GeoPoint `json:"point"`
	ValidGPS bool     `json:"valid_gps"`

	GPSAgeSec    int64   `json:"gps_age,omitempty"`
	CreateAgeSec int64   `json:"create_age,omitempty"`
	AccuracyM    float64 `json:"accuracy_m,omitempty"`
	SatCount     int     `json:"sat_count,omitempty"`
	IsCellLoc    bool    `json:"is_cell_loc,omitempty"`

	SpeedKPH   float64 `json:"speed_kph"`
	HeadingDeg float64 `json:"heading"`
	Compass    string  `json:"compass"`
	AltitudeM  float64 `json:"altitude_m"`
	OdometerKM float64 `json:"odometer_km"`

	Motion    MotionState `json:"motion"`
	GPIOInput int64       `json:"gpio_input,omitempty"`

	Address  string   `json:"address"`
	Optional []string `json:"optional,omitempty"`

	// StopSec is the duration of a stop-event record. Finalized only
	// once the next moving record, or the feed's "today" epoch, is known.
	StopSec int64 `json:"stop_sec"`

	// Valid is false for short or unparseable records; such records
	// produce no entities.
	Valid bool `json:"-"`
}

// SpeedMPH returns the speed converted to miles per hour.
func (e *EventRecord) SpeedMPH() float64 {
	return e.SpeedKPH / KilometersPerMile
}

// IsStopped reports whether the record describes a non-moving vehicle.
func (e *EventRecord) IsStopped() bool {
	return e.Motion == MotionStopped || e.Motion == MotionStopEvent
}

// Time returns the record timestamp as time.Time in UTC.
func (e *EventRecord) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}
