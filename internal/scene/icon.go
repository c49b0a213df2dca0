// Package scene owns the rendered map state: the pushpin entity model
// (icons, popups) and the scene operations that drive the rendering
// collaborator.
package scene

import (
	"fmt"
	"math"
	"sync"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/feed"
)

// Marker imagery. Sizes follow the stock pushpin asset set.
var (
	pinSize   = [2]int{18, 30}
	pinAnchor = [2]int{9, 30}
	dotSize   = [2]int{28, 28}
	dotAnchor = [2]int{14, 14}
)

func pinIcon(name string) domain.Icon {
	return domain.Icon{
		URL:    "images/pp/pin30_" + name + ".png",
		Size:   pinSize,
		Anchor: pinAnchor,
	}
}

func dotIcon(name string) domain.Icon {
	return domain.Icon{
		URL:    "images/pp/" + name + ".png",
		Size:   dotSize,
		Anchor: dotAnchor,
	}
}

// DefaultIcon is the fixed fallback ("icon 0") used when a selector is
// missing, fails, or returns nothing.
var DefaultIcon = pinIcon("black")

// indexedIcons is the stock color wheel addressed by a record's icon
// index.
var indexedIcons = []domain.Icon{
	pinIcon("black"),
	pinIcon("blue"),
	pinIcon("green"),
	pinIcon("red"),
	pinIcon("yellow"),
	pinIcon("gray"),
	pinIcon("orange"),
	pinIcon("purple"),
	pinIcon("brown"),
	pinIcon("white"),
}

// IconByIndex returns the indexed stock icon, or the default for an out
// of range index.
func IconByIndex(ndx int) domain.Icon {
	if ndx < 0 || ndx >= len(indexedIcons) {
		return DefaultIcon
	}
	return indexedIcons[ndx]
}

// Speed thresholds for the heading selector, in km/h.
const (
	speedStoppedKPH = 5.0
	speedSlowKPH    = 32.0
)

// Registry maps selector names to icon strategies. Selection is always a
// registered-function lookup; names come from configuration, functions
// never do.
type Registry struct {
	mu        sync.RWMutex
	selectors map[string]feed.IconSelector
}

// NewRegistry creates a registry pre-populated with the built-in
// strategies.
func NewRegistry() *Registry {
	r := &Registry{selectors: make(map[string]feed.IconSelector)}
	r.selectors["default"] = selectDefault
	r.selectors["indexed"] = selectIndexed
	r.selectors["heading"] = selectHeading
	r.selectors["device"] = selectDeviceName
	return r
}

// Register adds a named strategy. Registering an existing name is an
// error; strategies are installed once at startup.
func (r *Registry) Register(name string, sel feed.IconSelector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.selectors[name]; ok {
		return fmt.Errorf("icon selector %q already registered", name)
	}
	r.selectors[name] = sel
	return nil
}

// Lookup returns the named strategy, falling back to the default
// strategy for unknown names.
func (r *Registry) Lookup(name string) feed.IconSelector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sel, ok := r.selectors[name]; ok {
		return sel
	}
	return selectDefault
}

func selectDefault(_ *domain.EventRecord, _ bool) domain.Icon {
	return DefaultIcon
}

func selectIndexed(ev *domain.EventRecord, _ bool) domain.Icon {
	return IconByIndex(ev.IconIndex)
}

// selectHeading picks a marker by motion state and heading bucket:
// stopped vehicles get a red dot, slow movement a yellow arrow, normal
// movement a green arrow, both bucketed into the 8 compass directions.
func selectHeading(ev *domain.EventRecord, _ bool) domain.Icon {
	switch {
	case ev.Motion == domain.MotionStopEvent:
		return dotIcon("red_dot")
	case ev.Motion == domain.MotionStopped:
		return pinIcon("red")
	case ev.SpeedKPH < speedStoppedKPH:
		return dotIcon("red_dot")
	case ev.SpeedKPH < speedSlowKPH:
		return dotIcon(fmt.Sprintf("yellow_h%d", headingBucket(ev.HeadingDeg)))
	default:
		return dotIcon(fmt.Sprintf("green_h%d", headingBucket(ev.HeadingDeg)))
	}
}

// selectDeviceName renders the device description as the marker label on
// a neutral pin.
func selectDeviceName(ev *domain.EventRecord, isFleet bool) domain.Icon {
	icon := pinIcon("blue")
	if isFleet && ev.Description != "" {
		// Label is attached by the pushpin builder; the icon itself is
		// the neutral fleet pin.
		icon.BackURL = "images/pp/label47_fill.png"
		icon.BackSize = [2]int{47, 32}
		icon.BackAnchor = [2]int{3, 32}
	}
	return icon
}

func headingBucket(headingDeg float64) int {
	return int(math.Round(headingDeg/45.0)) % 8
}

// Battery level display thresholds.
var batteryLevels = []struct {
	min  float64
	name string
}{
	{0.90, "Batt100"},
	{0.70, "Batt090"},
	{0.50, "Batt070"},
	{0.25, "Batt050"},
	{0.00, "Batt025"},
}

// BatteryIconURL maps a 0..1 battery level onto the stock battery
// gauge images.
func BatteryIconURL(level float64) string {
	if level <= 0 {
		return "images/Batt/Batt000.png"
	}
	for _, b := range batteryLevels {
		if level >= b.min {
			return "images/Batt/" + b.name + ".png"
		}
	}
	return "images/Batt/Batt000.png"
}
