package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/workforce-service/internal/events"
)

type fakeNotifier struct {
	dispatcher events.Dispatcher
	registered bool
	release    chan struct{}
	fail       bool

	mu        sync.Mutex
	delivered []string
}

func (f *fakeNotifier) RegisterHandlers()             { f.registered = true }
func (f *fakeNotifier) Dispatcher() events.Dispatcher { return f.dispatcher }

func (f *fakeNotifier) Deliver(_ context.Context, e events.Event) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.delivered = append(f.delivered, e.SubjectID)
	f.mu.Unlock()
	if f.fail {
		return errors.New("redis down")
	}
	return nil
}

func (f *fakeNotifier) got() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delivered...)
}

func stopWithin(t *testing.T, w *NotificationWorker) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestNotificationWorker_DeliversInOrder(t *testing.T) {
	n := &fakeNotifier{dispatcher: events.NewInMemoryDispatcher()}
	w := StartNotificationWorker(context.Background(), n, 8, nil)
	if !n.registered {
		t.Fatalf("handlers not registered")
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := n.dispatcher.Publish(context.Background(), events.New(events.EventLeaveRequested, id, "w1", nil)); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	stopWithin(t, w)

	got := n.got()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("delivered = %v", got)
	}

	// events after Stop are ignored
	if err := n.dispatcher.Publish(context.Background(), events.New(events.EventLeaveRequested, "d", "w1", nil)); err != nil {
		t.Errorf("publish after stop: %v", err)
	}
	if len(n.got()) != 3 {
		t.Errorf("event delivered after stop")
	}
}

func TestNotificationWorker_QueueFull(t *testing.T) {
	n := &fakeNotifier{dispatcher: events.NewInMemoryDispatcher(), release: make(chan struct{})}
	w := StartNotificationWorker(context.Background(), n, 1, nil)

	var full int
	for i := 0; i < 5; i++ {
		err := n.dispatcher.Publish(context.Background(), events.New(events.EventWorkItemAssigned, "item", "m1", nil))
		if errors.Is(err, ErrQueueFull) {
			full++
		}
	}
	if full == 0 {
		t.Errorf("expected at least one rejected event")
	}
	close(n.release)
	stopWithin(t, w)
}

func TestNotificationWorker_DeliveryErrorKeepsRunning(t *testing.T) {
	n := &fakeNotifier{dispatcher: events.NewInMemoryDispatcher(), fail: true}
	w := StartNotificationWorker(context.Background(), n, 4, nil)
	_ = n.dispatcher.Publish(context.Background(), events.New(events.EventLeaveReviewed, "l1", "m1", nil))
	_ = n.dispatcher.Publish(context.Background(), events.New(events.EventLeaveReviewed, "l2", "m1", nil))
	stopWithin(t, w)
	if len(n.got()) != 2 {
		t.Errorf("delivered = %v", n.got())
	}
}

func TestStartNotificationWorker_Nil(t *testing.T) {
	w := StartNotificationWorker(context.Background(), nil, 0, nil)
	if w != nil {
		t.Fatalf("expected nil worker")
	}
	if err := w.Stop(context.Background()); err != nil {
		t.Errorf("Stop on nil: %v", err)
	}
}
