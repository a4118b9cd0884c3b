package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/events"
)

// NotificationService fans domain events out for operator visibility: each
// event is logged and, when Redis is configured, republished on a channel
// for downstream consumers.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	redis      *redis.Client
	channel    string
}

// NewNotificationService creates the service. A nil Redis client disables
// republishing but keeps the log trail.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, client *redis.Client, channel string) *NotificationService {
	if channel == "" {
		channel = "reimbursement.events"
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		redis:      client,
		channel:    channel,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketSubmitted, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketFinalized, n.handleEvent)
	n.dispatcher.Subscribe(events.EventEmployeeRoleChanged, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("domain event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Any("payload", event.Payload))
	n.republish(ctx, event)
	return nil
}

func (n *NotificationService) republish(ctx context.Context, event events.Event) {
	if n.redis == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("event marshal failed", zap.Error(err))
		return
	}
	if err := n.redis.Publish(ctx, n.channel, body).Err(); err != nil {
		n.logger.Warn("event republish failed", zap.Error(err))
	}
}
