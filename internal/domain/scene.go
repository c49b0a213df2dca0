package domain

// RecenterMode - viewport policy applied after drawing a pushpin set
type RecenterMode int

const (
	RecenterNone RecenterMode = 0 // leave the viewport untouched
	RecenterLast RecenterMode = 1 // center on the final pushpin, keep zoom
	RecenterZoom RecenterMode = 2 // center on the box centroid, fit zoom
	RecenterPan  RecenterMode = 3 // same as RecenterLast
)

// ReplayState - lifecycle of the replay engine
type ReplayState int

const (
	ReplayStopped ReplayState = 0
	ReplayPaused  ReplayState = 1
	ReplayRunning ReplayState = 2
)

// Icon - marker imagery and geometry for one pushpin.
type Icon struct {
	URL        string `json:"url"`
	Size       [2]int `json:"size"`
	Anchor     [2]int `json:"anchor"`
	ShadowURL  string `json:"shadow_url,omitempty"`
	ShadowSize [2]int `json:"shadow_size,omitempty"`
	BackURL    string `json:"back_url,omitempty"` // background image drawn under the marker
	BackSize   [2]int `json:"back_size,omitempty"`
	BackAnchor [2]int `json:"back_anchor,omitempty"`
}

// Pushpin - visual marker bound to one event record or POI.
type Pushpin struct {
	RecordIndex  int `json:"record_index"`  // 1-based, -1 for POI
	DatasetIndex int `json:"dataset_index"` // -1 for POI
	PushpinIndex int `json:"pushpin_index"` // index within the dataset's pushpin list

	Event *EventRecord `json:"event"`

	Point     GeoPoint `json:"point"`
	AccRadius float64  `json:"acc_radius_m,omitempty"` // accuracy circle, 0 = none
	IsCellLoc bool     `json:"is_cell_loc,omitempty"`

	Icon       Icon   `json:"icon"`
	Label      string `json:"label,omitempty"`
	HoverPopup bool   `json:"hover_popup,omitempty"` // carried, no behavior attached
	Show       bool   `json:"show"`

	// popup is rendered lazily and cached; Pushpins are effectively
	// immutable once the popup has been read.
	popup string
}

// Popup returns the cached popup content, or "" if not yet rendered.
func (p *Pushpin) Popup() string { return p.popup }

// SetPopup installs the rendered popup content once. Later calls are
// ignored.
func (p *Pushpin) SetPopup(s string) {
	if p.popup == "" {
		p.popup = s
	}
}

// Dataset - one device/group/POI sequence of pushpins plus its route.
type Dataset struct {
	Type       string     `json:"type"` // "device", "group" or "poi"
	ID         string     `json:"id"`
	Pushpins   []*Pushpin `json:"pushpins"`
	Route      []GeoPoint `json:"route,omitempty"`
	RouteColor string     `json:"route_color,omitempty"`
	TextColor  string     `json:"text_color,omitempty"`
	ShowRoute  bool       `json:"show_route"`
	Partial    bool       `json:"partial"` // true when truncated to the pushpin cap
}

// ShapeType values understood by DrawShape.
const (
	ShapeCircle    = "circle"
	ShapeRectangle = "rectangle"
	ShapePolygon   = "polygon"
	ShapeCorridor  = "corridor"
	ShapeCenter    = "center"
)

// Shape - decorative (non-editable) shape from the feed.
type Shape struct {
	Type         string     `json:"type"`
	RadiusMeters float64    `json:"radius_m"`
	Vertices     []GeoPoint `json:"vertices"`
	Color        string     `json:"color"`
	ZoomTo       bool       `json:"zoom_to"`
	Description  string     `json:"description,omitempty"`
	PushpinIndex int        `json:"pushpin_index"` // -1 = no center marker
}

// DetailRow - denormalized event projection for the detail report
// collaborator.
type DetailRow struct {
	RecordIndex  int    `json:"record_index"`
	DatasetIndex int    `json:"dataset_index"`
	PushpinIndex int    `json:"pushpin_index"` // -1 when the row has no pushpin
	Device       string `json:"device"`
	Index        int    `json:"index"`
	Code         string `json:"code"`
	Timestamp    int64  `json:"timestamp"`
	DateTime     string `json:"date_time"`
	TimeZone     string `json:"timezone"`
	LatLon       string `json:"lat_lon"`
	SatCount     int    `json:"sat_count"`
	Speed        string `json:"speed"`
	Heading      string `json:"heading"`
	Compass      string `json:"compass"`
	Altitude     string `json:"altitude"`
	Address      string `json:"address"`
	Optional     string `json:"optional,omitempty"`
	Color        string `json:"color,omitempty"`
}
