package scene

import (
	"fmt"
	"strings"

	"github.com/trackmap-service/internal/domain"
)

// FormatStopDuration renders a stop duration as "Dd HHh MMm", dropping
// the day part when zero.
func FormatStopDuration(stopSec int64) string {
	if stopSec < 0 {
		stopSec = 0
	}
	days := stopSec / 86400
	hours := (stopSec % 86400) / 3600
	mins := (stopSec % 3600) / 60
	if days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm", days, hours, mins)
	}
	return fmt.Sprintf("%02dh %02dm", hours, mins)
}

// PopupText renders the popup body for a pushpin and caches it on the
// pushpin. The content is computed at most once; later calls return the
// cached text.
func PopupText(pp *domain.Pushpin) string {
	if cached := pp.Popup(); cached != "" {
		return cached
	}
	ev := pp.Event
	if ev == nil {
		return ""
	}

	var b strings.Builder

	if pp.RecordIndex > 0 {
		fmt.Fprintf(&b, "#%d ", pp.RecordIndex)
	}
	fmt.Fprintf(&b, "%s", ev.Description)
	if ev.StatusCode != "" {
		fmt.Fprintf(&b, ": %s", ev.StatusCode)
	}
	b.WriteByte('\n')

	if ev.Timestamp > 0 {
		fmt.Fprintf(&b, "%s %s", ev.DateText, ev.TimeText)
		if ev.TimeZone != "" {
			fmt.Fprintf(&b, " [%s]", ev.TimeZone)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%.5f/%.5f", ev.Point.Lat, ev.Point.Lon)
	if ev.IsCellLoc {
		fmt.Fprintf(&b, " [cell ±%.0fm]", ev.AccuracyM)
	} else if ev.SatCount > 0 {
		fmt.Fprintf(&b, " [%d sats]", ev.SatCount)
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Speed: %.1f km/h", ev.SpeedKPH)
	if ev.SpeedKPH > 0 && ev.Compass != "" {
		fmt.Fprintf(&b, " %s", ev.Compass)
	}
	b.WriteByte('\n')

	if ev.StopSec > 0 {
		fmt.Fprintf(&b, "Stopped: %s\n", FormatStopDuration(ev.StopSec))
	}
	if ev.AltitudeM != 0 {
		fmt.Fprintf(&b, "Altitude: %.0f m\n", ev.AltitudeM)
	}
	if ev.Address != "" {
		fmt.Fprintf(&b, "%s\n", ev.Address)
	}
	for _, opt := range ev.Optional {
		if opt != "" {
			fmt.Fprintf(&b, "%s\n", opt)
		}
	}

	text := strings.TrimRight(b.String(), "\n")
	pp.SetPopup(text)
	return text
}
