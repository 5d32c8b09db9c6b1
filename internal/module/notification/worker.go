package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fedpay/server/internal/shared/metrics"
)

const workerBatchSize = 50

// Worker polls the queue and delivers pending notifications. Delivery
// is best effort: each notification gets up to maxAttempts tries before
// it is marked failed.
type Worker struct {
	repo        Repository
	senders     map[string]Sender
	interval    time.Duration
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewWorker creates a new delivery worker.
func NewWorker(repo Repository, senders []Sender, interval time.Duration, maxAttempts int, m *metrics.Metrics, logger *zap.Logger) *Worker {
	byChannel := make(map[string]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &Worker{
		repo:        repo,
		senders:     byChannel,
		interval:    interval,
		maxAttempts: maxAttempts,
		metrics:     m,
		logger:      logger,
	}
}

// Run polls until the context is cancelled. Intended to run in its own
// goroutine.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("notification worker started",
		zap.Duration("interval", w.interval),
		zap.Int("max_attempts", w.maxAttempts))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		case <-ticker.C:
			if err := w.ProcessBatch(ctx); err != nil {
				w.logger.Error("notification batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessBatch delivers one batch of pending notifications.
func (w *Worker) ProcessBatch(ctx context.Context) error {
	pending, err := w.repo.ListPending(ctx, workerBatchSize)
	if err != nil {
		return err
	}

	for _, n := range pending {
		w.deliver(ctx, n)
	}
	return nil
}

// deliver tries one notification and records the attempt.
func (w *Worker) deliver(ctx context.Context, n *Notification) {
	attempt := &Attempt{
		ID:             uuid.New(),
		NotificationID: n.ID,
		Channel:        n.Channel,
	}
	n.Attempts++

	sender, ok := w.senders[n.Channel]
	var sendErr error
	if !ok {
		// No sender will ever exist for this row; fail it outright.
		sendErr = fmt.Errorf("%w: %s", ErrUnknownChannel, n.Channel)
		n.Attempts = w.maxAttempts
	} else {
		sendErr = sender.Send(ctx, n)
	}

	if sendErr == nil {
		now := time.Now()
		attempt.Success = true
		n.Status = StatusSent
		n.SentAt = &now
		w.metrics.NotificationsSent.WithLabelValues(n.Channel, "sent").Inc()
	} else {
		attempt.Error = sendErr.Error()
		if n.Attempts >= w.maxAttempts {
			n.Status = StatusFailed
			w.metrics.NotificationsSent.WithLabelValues(n.Channel, "failed").Inc()
			w.logger.Warn("notification failed permanently",
				zap.String("notification_id", n.ID.String()),
				zap.String("channel", n.Channel),
				zap.Int("attempts", n.Attempts),
				zap.Error(sendErr))
		} else {
			w.logger.Info("notification attempt failed",
				zap.String("notification_id", n.ID.String()),
				zap.Int("attempt", n.Attempts),
				zap.Error(sendErr))
		}
	}

	if err := w.repo.RecordAttempt(ctx, n, attempt); err != nil {
		w.logger.Error("record notification attempt failed",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err))
	}
}
