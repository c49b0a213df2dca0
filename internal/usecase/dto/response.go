package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/trackmap-service/internal/domain"
)

// FeedIngestResponse - outcome of one feed ingest cycle. Actions carries
// the client-side directives (alert, gotourl, autoupdate) untouched.
type FeedIngestResponse struct {
	SessionID    uuid.UUID       `json:"session_id"`
	Sequence     uint64          `json:"sequence"`
	Installed    bool            `json:"installed"`
	DatasetCount int             `json:"dataset_count"`
	PushpinCount int             `json:"pushpin_count"`
	Warnings     string          `json:"warnings,omitempty"`
	Actions      []domain.Action `json:"actions,omitempty"`
}

// DetailResponse - detail report rows of the installed feed
type DetailResponse struct {
	Rows         []*domain.DetailRow `json:"rows"`
	DeviceBreaks bool                `json:"device_breaks"`
	Total        int                 `json:"total"`
}

// ReplayResponse - replay engine state after a control call
type ReplayResponse struct {
	State     int    `json:"state"`
	StateName string `json:"state_name"`
}

// MouseResponse - interaction outcome plus the current cursor readout
type MouseResponse struct {
	Captured    bool            `json:"captured"`
	RulerMeters float64         `json:"ruler_m,omitempty"`
	Cursor      domain.GeoPoint `json:"cursor"`
}

// GeozoneResponse - stored geofence with its point list formatted back
// to "lat/lon,lat/lon,..." form
type GeozoneResponse struct {
	ID           uuid.UUID `json:"id"`
	AccountID    string    `json:"account_id"`
	Name         string    `json:"name"`
	Type         int       `json:"type"`
	RadiusMeters float64   `json:"radius_m"`
	Color        string    `json:"color,omitempty"`
	Points       string    `json:"points"`
	PrimaryIndex int       `json:"primary_index"`
	Editable     bool      `json:"editable"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GeozoneListResponse - an account's geofences
type GeozoneListResponse struct {
	Geozones []GeozoneResponse `json:"geozones"`
	Total    int               `json:"total"`
}
