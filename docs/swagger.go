// Package docs TrackMap Service API.
//
// Vehicle tracking map service. Ingests tracker feeds (JSON or XML),
// maintains per-session map scenes and drives replay, mouse interaction
// and geofence editing.
//
// Capabilities:
// - Feed ingest with dual JSON/XML decoding and scene installation
// - Session scene snapshots with pushpin, route, POI and geofence layers
// - Track replay with pause/resume and auto-skip
// - Mouse-driven distance ruler and geofence vertex editing
// - Geofence CRUD persisted in PostgreSQL
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//	- application/xml
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
