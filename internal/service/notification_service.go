package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/observability"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	bridge     *events.RedisBridge
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles the outbound channels.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Bridge     *events.RedisBridge
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		bridge:     deps.Bridge,
		metrics:    deps.Metrics,
		logger:     nopIfNil(deps.Logger),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes the synchronous bookkeeping handler to every
// event type. Outbound delivery goes through Deliver.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	events.SubscribeAll(n.dispatcher, n.record)
}

// Dispatcher exposes the dispatcher the service listens on.
func (n *NotificationService) Dispatcher() events.Dispatcher {
	return n.dispatcher
}

func (n *NotificationService) record(_ context.Context, event events.Event) error {
	n.metrics.RecordEvent(string(event.Type))
	n.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

// Deliver pushes event to the outbound channels.
func (n *NotificationService) Deliver(ctx context.Context, event events.Event) error {
	n.sendWebhookNotificationStub(event)
	return n.bridge.Forward(ctx, event)
}

func (n *NotificationService) sendWebhookNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
