package errors

import "net/http"

var (
	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Map session not found",
		http.StatusNotFound,
	)

	ErrInvalidSessionID = New(
		"INVALID_SESSION_ID",
		"Session ID is not a valid UUID",
		http.StatusBadRequest,
	)

	ErrInvalidFeed = New(
		"INVALID_FEED",
		"Feed payload could not be decoded",
		http.StatusBadRequest,
	)

	ErrEmptyFeed = New(
		"EMPTY_FEED",
		"Feed payload is empty",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidZoneType = New(
		"INVALID_ZONE_TYPE",
		"Unknown geozone type",
		http.StatusBadRequest,
	)

	ErrGeozoneNotFound = New(
		"GEOZONE_NOT_FOUND",
		"Geozone not found",
		http.StatusNotFound,
	)

	ErrInvalidMouseEvent = New(
		"INVALID_MOUSE_EVENT",
		"Unknown mouse event",
		http.StatusBadRequest,
	)

	ErrReplayUnavailable = New(
		"REPLAY_UNAVAILABLE",
		"No feed installed to replay",
		http.StatusConflict,
	)

	ErrFeedInFlight = New(
		"FEED_IN_FLIGHT",
		"A feed update is already being processed for this session",
		http.StatusConflict,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrStreamError = New(
		"STREAM_ERROR",
		"Stream operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
