package dto

// ReplayRequest - replay control flag: 0 stops, 1 toggles pause/resume,
// 2 and above also opens the popup of each replayed point
type ReplayRequest struct {
	Flag int `json:"flag" validate:"min=0,max=9"`
}

// MouseModifiers - keyboard modifier state sent with a mouse event
type MouseModifiers struct {
	Alt   bool `json:"alt"`
	Ctrl  bool `json:"ctrl"`
	Shift bool `json:"shift"`
}

// MouseRequest - one mouse event in map coordinates
type MouseRequest struct {
	Event     string         `json:"event" validate:"required,oneof=down move up click"`
	Lat       float64        `json:"lat" validate:"min=-90,max=90"`
	Lon       float64        `json:"lon" validate:"min=-180,max=180"`
	Modifiers MouseModifiers `json:"modifiers"`
}

// CreateGeozoneRequest - new geofence. Points is a "lat/lon,lat/lon,..."
// list; empty items keep their slot so vertex indexes stay stable.
type CreateGeozoneRequest struct {
	AccountID    string  `json:"account_id" validate:"required,min=1,max=64"`
	Name         string  `json:"name" validate:"required,min=1,max=64"`
	Type         int     `json:"type" validate:"min=0,max=3"`
	RadiusMeters float64 `json:"radius_m" validate:"omitempty,min=0"`
	Color        string  `json:"color" validate:"omitempty,hexcolor"`
	Points       string  `json:"points"`
	PrimaryIndex int     `json:"primary_index" validate:"omitempty,min=0"`
	Editable     *bool   `json:"editable,omitempty"`
}

// UpdateGeozoneRequest - geofence mutation; same shape as create minus
// the owning account
type UpdateGeozoneRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=64"`
	Type         int     `json:"type" validate:"min=0,max=3"`
	RadiusMeters float64 `json:"radius_m" validate:"omitempty,min=0"`
	Color        string  `json:"color" validate:"omitempty,hexcolor"`
	Points       string  `json:"points"`
	PrimaryIndex int     `json:"primary_index" validate:"omitempty,min=0"`
	Editable     *bool   `json:"editable,omitempty"`
}

// EditGeozoneRequest - binds a stored geozone to a session for
// mouse-driven editing
type EditGeozoneRequest struct {
	GeozoneID string `json:"geozone_id" validate:"required,uuid"`
}
