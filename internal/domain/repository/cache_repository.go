package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CacheRepository defines cache access methods
type CacheRepository interface {
	// Get reads a value by key; nil on cache miss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// Exists checks for key presence
	Exists(ctx context.Context, key string) (bool, error)

	// GetScene reads the serialized scene snapshot for a session
	GetScene(ctx context.Context, sessionID uuid.UUID) ([]byte, error)

	// SetScene stores the serialized scene snapshot for a session
	SetScene(ctx context.Context, sessionID uuid.UUID, data []byte, ttl time.Duration) error

	// DeleteScene removes a session's cached snapshot
	DeleteScene(ctx context.Context, sessionID uuid.UUID) error
}
