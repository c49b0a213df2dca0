package domain

// Dataset type discriminators on the wire.
const (
	DatasetDevice = "device"
	DatasetGroup  = "group"
	DatasetPOI    = "poi"
)

// Action commands understood by the feed executor.
const (
	ActionAutoUpdate = "autoupdate"
	ActionAlert      = "alert"
	ActionGotoURL    = "gotourl"
	ActionShowPP     = "showpp"
	ActionZoomPP     = "zoompp"
)

// Action - directive attached to a feed response.
type Action struct {
	Command string `json:"cmd"`
	Arg     string `json:"arg"`
}

// FeedTime - server clock snapshot carried in the feed header. The epoch
// stands in for "now" when closing stop durations at end of feed.
type FeedTime struct {
	Timestamp int64  `json:"timestamp"`
	TimeZone  string `json:"timezone"`
	Year      int    `json:"year,omitempty"`
	Month     int    `json:"month,omitempty"`
	Day       int    `json:"day,omitempty"`
	DateText  string `json:"date,omitempty"`
	TimeText  string `json:"time,omitempty"`
}

// LastEvent - most recent event metadata for the queried device.
type LastEvent struct {
	Timestamp int64   `json:"timestamp"`
	TimeZone  string  `json:"timezone"`
	Year      int     `json:"year,omitempty"`
	Month     int     `json:"month,omitempty"`
	Day       int     `json:"day,omitempty"`
	Battery   float64 `json:"battery,omitempty"` // 0..1
	Signal    float64 `json:"signal,omitempty"`  // 0..1
	Summary   string  `json:"summary,omitempty"` // "date|time|batt|sig"
}

// Feed - one fully decoded server response: the complete render set for
// an update cycle.
type Feed struct {
	IsFleet   bool      `json:"is_fleet"`
	Today     FeedTime  `json:"today"`
	LastEvent LastEvent `json:"last_event"`

	Datasets   []*Dataset   `json:"datasets"`
	POIPins    []*Pushpin   `json:"poi_pins,omitempty"`
	Shapes     []*Shape     `json:"shapes,omitempty"`
	DetailRows []*DetailRow `json:"detail_rows,omitempty"`
	Actions    []Action     `json:"actions,omitempty"`

	// DeviceBreaks is true when the detail table should visually separate
	// rows by device: more than one dataset and at least one dataset with
	// more than one point.
	DeviceBreaks bool `json:"device_breaks"`

	// Sequence is the monotonic ingest sequence stamped by the session;
	// installs with a stale sequence are discarded.
	Sequence uint64 `json:"sequence"`
}

// PushpinCount returns the total pushpin count across datasets.
func (f *Feed) PushpinCount() int {
	n := 0
	for _, ds := range f.Datasets {
		n += len(ds.Pushpins)
	}
	return n
}
