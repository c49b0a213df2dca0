// Package feed decodes map feed responses into the domain model. A
// response body is either a JSON envelope (curly-brace prefixed) or an
// XML document; both carry the same pipe-delimited point records and must
// decode to identical entities.
package feed

import (
	"strconv"
	"strings"

	"github.com/trackmap-service/internal/domain"
)

// Pipe-delimited record field positions.
const (
	fldDeviceID = iota
	fldDescription
	fldTimestamp
	fldDate
	fldTime
	fldTimeZone
	fldStatusCode
	fldIconIndex
	fldLatitude
	fldLongitude
	fldGPSAge
	fldCreateAge
	fldAccuracy
	fldSatCount
	fldSpeedKPH
	fldHeading
	fldAltitude
	fldOdometerKM
	fldMotion
	fldGPIOInput
	fldAddress
	fldOptionalStart
)

// minRecordFields - records with fewer fields are invalid and dropped.
const minRecordFields = 10

// ParseEventRecord parses one pipe-delimited point record. Returns a
// record with Valid=false (and nothing else guaranteed) for short lines.
func ParseEventRecord(line string) *domain.EventRecord {
	ev := &domain.EventRecord{
		RecordIndex:  -1,
		DatasetIndex: -1,
		IconIndex:    -1,
		Motion:       domain.MotionUndefined,
	}

	fld := strings.Split(line, "|")
	if len(fld) < minRecordFields {
		return ev
	}

	ev.DeviceID = fieldAt(fld, fldDeviceID)
	ev.Description = fieldAt(fld, fldDescription)
	ev.Timestamp = parseInt64(fieldAt(fld, fldTimestamp))
	ev.DateText = fieldAt(fld, fldDate)
	ev.TimeText = fieldAt(fld, fldTime)
	ev.TimeZone = fieldAt(fld, fldTimeZone)
	ev.StatusCode = fieldAt(fld, fldStatusCode)
	ev.IconIndex = int(parseInt64(fieldAt(fld, fldIconIndex)))

	ev.Point = domain.GeoPoint{
		Lat: parseFloat(fieldAt(fld, fldLatitude)),
		Lon: parseFloat(fieldAt(fld, fldLongitude)),
	}
	ev.ValidGPS = !ev.Point.IsOrigin()

	ev.GPSAgeSec = parseInt64(fieldAt(fld, fldGPSAge))
	ev.CreateAgeSec = parseInt64(fieldAt(fld, fldCreateAge))
	if acc := parseFloat(fieldAt(fld, fldAccuracy)); acc > 0 {
		ev.AccuracyM = acc
	}

	// A negative satellite count marks a cell-tower derived fix. Those
	// carry an accuracy floor of 100m.
	sats := int(parseInt64(fieldAt(fld, fldSatCount)))
	if sats < 0 {
		ev.IsCellLoc = true
		ev.SatCount = 0
		if ev.AccuracyM < domain.MinCellAccuracyMeters {
			ev.AccuracyM = domain.MinCellAccuracyMeters
		}
	} else {
		ev.SatCount = sats
	}

	ev.SpeedKPH = parseFloat(fieldAt(fld, fldSpeedKPH))
	ev.HeadingDeg = parseFloat(fieldAt(fld, fldHeading))
	ev.Compass = domain.CompassLabel(ev.HeadingDeg)
	ev.AltitudeM = parseFloat(fieldAt(fld, fldAltitude))
	ev.OdometerKM = parseFloat(fieldAt(fld, fldOdometerKM))

	if m := fieldAt(fld, fldMotion); m != "" {
		ev.Motion = domain.MotionState(parseInt64(m))
	}
	ev.GPIOInput = parseInt64(fieldAt(fld, fldGPIOInput))
	ev.Address = stripQuotes(fieldAt(fld, fldAddress))

	if len(fld) > fldOptionalStart {
		ev.Optional = append(ev.Optional, fld[fldOptionalStart:]...)
	}

	ev.Valid = true
	return ev
}

func fieldAt(fld []string, ndx int) string {
	if ndx < len(fld) {
		return strings.TrimSpace(fld[ndx])
	}
	return ""
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
