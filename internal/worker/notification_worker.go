package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/events"
)

// DefaultQueueSize bounds the number of events waiting for delivery.
const DefaultQueueSize = 256

// ErrQueueFull is returned to the dispatcher when an event cannot be queued.
var ErrQueueFull = errors.New("notification queue full")

// Notifier is the outbound side of the notification pipeline.
// service.NotificationService satisfies it.
type Notifier interface {
	RegisterHandlers()
	Dispatcher() events.Dispatcher
	Deliver(ctx context.Context, event events.Event) error
}

// NotificationWorker moves outbound delivery off the request path. Events are
// queued by a dispatcher subscription and delivered by one goroutine in
// publish order.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// StartNotificationWorker registers the notifier's handlers, subscribes the
// queue to every event type and starts delivering. Stop must be called on
// shutdown to flush what is queued.
func StartNotificationWorker(ctx context.Context, notifier Notifier, queueSize int, logger *zap.Logger) *NotificationWorker {
	if notifier == nil {
		return nil
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, queueSize),
		done:     make(chan struct{}),
	}

	notifier.RegisterHandlers()
	if d := notifier.Dispatcher(); d != nil {
		events.SubscribeAll(d, w.enqueue)
	}

	go w.run(context.WithoutCancel(ctx))
	return w
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping event", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
		return ErrQueueFull
	}
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer close(w.done)
	for event := range w.queue {
		if err := w.notifier.Deliver(ctx, event); err != nil {
			w.logger.Warn("event delivery failed",
				zap.String("event_id", event.ID),
				zap.String("type", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Stop refuses new events, delivers the queued ones and waits for the
// goroutine to exit or ctx to end.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
