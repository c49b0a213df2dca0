package repository

import (
	"context"

	"github.com/trackmap-service/internal/domain"
)

// StreamRepository - Redis Streams access
type StreamRepository interface {
	// ConsumeStream reads messages from a stream
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage acknowledges a processed message
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// CreateConsumerGroup creates a consumer group
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream publishes a message to a stream
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
