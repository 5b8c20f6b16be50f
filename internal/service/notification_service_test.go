package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/observability"
)

type recordingPublisher struct {
	channels []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, _ []byte) error {
	p.channels = append(p.channels, channel)
	return p.err
}

func TestNotificationService_RecordsAndDelivers(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	pub := &recordingPublisher{}
	svc := NewNotificationService(config.NotificationConfig{WebhookURL: "http://hooks.local"}, NotificationDependencies{
		Dispatcher: dispatcher,
		Bridge:     events.NewRedisBridge(pub, "workforce.events"),
		Metrics:    metrics,
	})
	svc.RegisterHandlers()

	ev := events.New(events.EventLeaveRequested, "leave-1", "w1", nil)
	if err := dispatcher.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := metrics.Snapshot().Events[string(events.EventLeaveRequested)]; got != 1 {
		t.Errorf("event count = %d, want 1", got)
	}
	if len(pub.channels) != 0 {
		t.Errorf("publishing must not deliver synchronously")
	}

	if err := svc.Deliver(context.Background(), ev); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "workforce.events" {
		t.Errorf("channels = %v", pub.channels)
	}

	pub.err = errors.New("connection refused")
	if err := svc.Deliver(context.Background(), ev); err == nil {
		t.Errorf("expected delivery error")
	}
}

func TestNotificationService_NoBridge(t *testing.T) {
	svc := NewNotificationService(config.NotificationConfig{}, NotificationDependencies{})
	svc.RegisterHandlers()
	if err := svc.Deliver(context.Background(), events.New(events.EventLeaveReviewed, "l1", "m1", nil)); err != nil {
		t.Errorf("Deliver without bridge: %v", err)
	}
}
