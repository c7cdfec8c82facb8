package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"novara/internal/queue"
)

const (
	// DefaultWorkerCount is the default number of worker goroutines
	DefaultWorkerCount = 2

	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second

	readBackoff = time.Second
)

// Manager orchestrates worker goroutines that consume the marketplace stream.
type Manager struct {
	consumer    queue.Consumer
	handler     *Handler
	workerCount int
	batchSize   int64
	blockTime   time.Duration
	logger      zerolog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// ManagerConfig holds configuration for the worker manager.
type ManagerConfig struct {
	WorkerCount  int           // Number of worker goroutines
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// NewManager creates a new worker manager.
func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig, logger zerolog.Logger) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: cfg.WorkerCount,
		batchSize:   cfg.BatchSize,
		blockTime:   cfg.BlockTimeout,
		logger:      logger.With().Str("component", "worker_manager").Logger(),
	}
}

// Start ensures the consumer group exists and spins up the workers.
// Call Stop() to gracefully shut down.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamMarketplace, queue.ConsumerGroupActivity); err != nil {
		return err
	}

	ctx, m.cancel = context.WithCancel(ctx)
	for i := 1; i <= m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(ctx, i, consumerNameForWorker(i))
	}

	m.logger.Info().
		Int("workers", m.workerCount).
		Str("stream", queue.StreamMarketplace).
		Str("group", queue.ConsumerGroupActivity).
		Msg("workers started")
	return nil
}

// Stop cancels the workers and blocks until all of them have returned.
func (m *Manager) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
	m.logger.Info().Msg("workers stopped")
}

func (m *Manager) runWorker(ctx context.Context, workerID int, consumerName string) {
	defer m.wg.Done()

	log := m.logger.With().Int("worker", workerID).Str("consumer", consumerName).Logger()

	// messages left in flight by a previous run come first
	m.processPending(ctx, log, consumerName)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			m.processMessages(ctx, log, consumerName)
		}
	}
}

func (m *Manager) processPending(ctx context.Context, log zerolog.Logger, consumerName string) {
	for {
		messages, err := m.consumer.ReadPending(ctx, queue.StreamMarketplace, queue.ConsumerGroupActivity, consumerName, m.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("failed to read pending messages")
			return
		}
		if len(messages) == 0 {
			return
		}
		log.Info().Int("count", len(messages)).Msg("recovering pending messages")
		m.handleMessages(ctx, log, messages)
	}
}

func (m *Manager) processMessages(ctx context.Context, log zerolog.Logger, consumerName string) {
	messages, err := m.consumer.Read(ctx, queue.StreamMarketplace, queue.ConsumerGroupActivity, consumerName, m.batchSize, m.blockTime)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Error().Err(err).Msg("failed to read messages")
		select {
		case <-ctx.Done():
		case <-time.After(readBackoff):
		}
		return
	}

	m.handleMessages(ctx, log, messages)
}

// handleMessages processes a batch and acknowledges every message, including
// ones whose handler failed, so a poison message cannot block the group.
func (m *Manager) handleMessages(ctx context.Context, log zerolog.Logger, messages []queue.Message) {
	for _, msg := range messages {
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Str("type", msg.Event.Type).Msg("handler failed")
		}

		if err := m.consumer.Ack(ctx, queue.StreamMarketplace, queue.ConsumerGroupActivity, msg.ID); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("failed to ack message")
		}
	}
}

// consumerNameForWorker is unique per host and worker so pending entries are
// reclaimed by the same worker after a restart.
func consumerNameForWorker(workerID int) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "novara"
	}
	return fmt.Sprintf("%s-worker-%d", host, workerID)
}
