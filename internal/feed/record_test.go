package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/feed"
)

const fullRecord = `truck1|Truck 1|1700000000|2023/11/14|22:13:20|UTC|InMotion|3|41.385100|2.173400|2|5|12.0|8|45.0|90.0|12.5|1520.7|0|0|"Carrer de Mallorca, Barcelona"|fuel:80%`

func TestParseEventRecord_FullRecord(t *testing.T) {
	ev := feed.ParseEventRecord(fullRecord)
	require.True(t, ev.Valid)

	assert.Equal(t, "truck1", ev.DeviceID)
	assert.Equal(t, "Truck 1", ev.Description)
	assert.Equal(t, int64(1700000000), ev.Timestamp)
	assert.Equal(t, "2023/11/14", ev.DateText)
	assert.Equal(t, "22:13:20", ev.TimeText)
	assert.Equal(t, "UTC", ev.TimeZone)
	assert.Equal(t, "InMotion", ev.StatusCode)
	assert.Equal(t, 3, ev.IconIndex)
	assert.Equal(t, domain.GeoPoint{Lat: 41.3851, Lon: 2.1734}, ev.Point)
	assert.True(t, ev.ValidGPS)
	assert.Equal(t, 12.0, ev.AccuracyM)
	assert.Equal(t, 8, ev.SatCount)
	assert.False(t, ev.IsCellLoc)
	assert.Equal(t, 45.0, ev.SpeedKPH)
	assert.Equal(t, 90.0, ev.HeadingDeg)
	assert.Equal(t, "E", ev.Compass)
	assert.Equal(t, 12.5, ev.AltitudeM)
	assert.Equal(t, 1520.7, ev.OdometerKM)
	assert.Equal(t, domain.MotionMoving, ev.Motion)
	assert.Equal(t, "Carrer de Mallorca, Barcelona", ev.Address) // quotes stripped
	assert.Equal(t, []string{"fuel:80%"}, ev.Optional)
}

func TestParseEventRecord_ShortRecordInvalid(t *testing.T) {
	ev := feed.ParseEventRecord("truck1|Truck 1|1700000000")
	assert.False(t, ev.Valid)

	ev = feed.ParseEventRecord("")
	assert.False(t, ev.Valid)
}

func TestParseEventRecord_MinimumFieldCount(t *testing.T) {
	// exactly 10 fields is the validity floor
	ev := feed.ParseEventRecord("d|D|1700000000|2023/11/14|22:13:20|UTC|Stat|0|10.0|20.0")
	assert.True(t, ev.Valid)
	assert.True(t, ev.ValidGPS)
	assert.Equal(t, domain.MotionUndefined, ev.Motion)
}

func TestParseEventRecord_CellTowerFix(t *testing.T) {
	// negative satellite count marks a cell fix with a 100m accuracy floor
	ev := feed.ParseEventRecord("d|D|1700000000|2023/11/14|22:13:20|UTC|Stat|0|10.0|20.0|0|0|40.0|-1|0.0|0.0|0.0|0.0|1|0|addr")
	require.True(t, ev.Valid)
	assert.True(t, ev.IsCellLoc)
	assert.Equal(t, 0, ev.SatCount)
	assert.Equal(t, 100.0, ev.AccuracyM)
	assert.Equal(t, domain.MotionStopped, ev.Motion)
}

func TestParseEventRecord_NoGPSFix(t *testing.T) {
	ev := feed.ParseEventRecord("d|D|1700000000|2023/11/14|22:13:20|UTC|Stat|0|0.0|0.0")
	require.True(t, ev.Valid)
	assert.False(t, ev.ValidGPS)
}

func TestParseEventRecord_GarbageNumbersDefaultToZero(t *testing.T) {
	ev := feed.ParseEventRecord("d|D|notanumber|2023/11/14|22:13:20|UTC|Stat|x|abc|20.0")
	require.True(t, ev.Valid)
	assert.Equal(t, int64(0), ev.Timestamp)
	assert.Equal(t, 0.0, ev.Point.Lat)
	assert.Equal(t, 20.0, ev.Point.Lon)
	assert.True(t, ev.ValidGPS) // lon alone is enough
}
