package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EnqueueInput is the input for queueing a notification.
type EnqueueInput struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
	Metadata  map[string]any
}

// Service queues outbound notifications for the delivery worker.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Enqueue adds a notification to the delivery queue.
func (s *Service) Enqueue(ctx context.Context, in *EnqueueInput) (*Notification, error) {
	if in.Channel != ChannelWhatsApp && in.Channel != ChannelEmail {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, in.Channel)
	}

	n := &Notification{
		ID:        uuid.New(),
		Channel:   in.Channel,
		Recipient: in.Recipient,
		Subject:   in.Subject,
		Body:      in.Body,
		Metadata:  in.Metadata,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("notification enqueued",
		zap.String("notification_id", n.ID.String()),
		zap.String("channel", n.Channel))
	return n, nil
}

// Get returns a notification by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.repo.GetByID(ctx, id)
}
