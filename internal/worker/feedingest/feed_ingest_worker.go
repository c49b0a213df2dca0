package feedingest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/trackmap-service/internal/domain"
	"github.com/trackmap-service/internal/domain/repository"
	"github.com/trackmap-service/internal/pkg/errors"
	"github.com/trackmap-service/internal/session"
	"github.com/trackmap-service/internal/usecase"
	"github.com/trackmap-service/internal/worker"
)

// FeedIngestWorker consumes raw feed payloads from stream:feed:ingest,
// runs them through the ingest pipeline and ACKs. Sessions named by an
// event are adopted into the local store when not yet present.
type FeedIngestWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	sessions     *session.Store
	feedUC       *usecase.FeedUseCase
	consumerName string
}

// NewFeedIngestWorker creates a new FeedIngestWorker
func NewFeedIngestWorker(
	streamRepo repository.StreamRepository,
	sessions *session.Store,
	feedUC *usecase.FeedUseCase,
	consumerGroup string,
	logger *zap.Logger,
) *FeedIngestWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &FeedIngestWorker{
		BaseWorker:   worker.NewBaseWorker("feed-ingest", consumerGroup, logger),
		streamRepo:   streamRepo,
		sessions:     sessions,
		feedUC:       feedUC,
		consumerName: consumerName,
	}
}

// Start runs the consume loop until Stop or context cancellation
func (w *FeedIngestWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting FeedIngestWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamFeedIngest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	messages, err := w.streamRepo.ConsumeStream(ctx, domain.StreamFeedIngest, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		logger.Error("Failed to open stream consumer", zap.Error(err))
		return fmt.Errorf("failed to open stream consumer: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream consumer closed")
				return nil
			}
			w.handleMessage(ctx, msg)
		}
	}
}

// handleMessage processes a single stream message. Unparseable messages
// are ACKed so they do not wedge the group; an ingest already in flight
// for the session leaves the message pending for redelivery.
func (w *FeedIngestWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	event, err := w.parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	w.sessions.GetOrCreate(event.SessionID)

	resp, err := w.feedUC.Ingest(ctx, event.SessionID, []byte(event.Payload))
	if err != nil {
		if stderrors.Is(err, errors.ErrFeedInFlight) {
			logger.Debug("Session busy, leaving message pending",
				zap.String("message_id", msg.ID),
				zap.String("session_id", event.SessionID.String()))
			return
		}
		logger.Warn("Feed ingest failed, skipping message",
			zap.String("message_id", msg.ID),
			zap.String("session_id", event.SessionID.String()),
			zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	logger.Info("Feed processed",
		zap.String("session_id", event.SessionID.String()),
		zap.Uint64("sequence", resp.Sequence),
		zap.Bool("installed", resp.Installed),
		zap.Int("pushpins", resp.PushpinCount))

	w.ack(ctx, msg.ID)
}

// parseMessage decodes a stream message into a FeedIngestEvent
func (w *FeedIngestWorker) parseMessage(msg domain.StreamMessage) (*domain.FeedIngestEvent, error) {
	var event domain.FeedIngestEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Payload == "" {
		return nil, fmt.Errorf("empty payload")
	}
	return &event, nil
}

func (w *FeedIngestWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamFeedIngest, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}
