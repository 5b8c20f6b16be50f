package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Publisher sends raw payloads to a named channel. persistence.Redis
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisBridge forwards events as JSON onto a pub/sub channel so other
// processes can follow them.
type RedisBridge struct {
	publisher Publisher
	channel   string
}

// NewRedisBridge builds a bridge. It returns nil when publisher is nil or
// channel is empty, and a nil bridge drops events.
func NewRedisBridge(publisher Publisher, channel string) *RedisBridge {
	if publisher == nil || channel == "" {
		return nil
	}
	return &RedisBridge{publisher: publisher, channel: channel}
}

// Channel reports where events are published.
func (b *RedisBridge) Channel() string {
	if b == nil {
		return ""
	}
	return b.channel
}

// Forward publishes event.
func (b *RedisBridge) Forward(ctx context.Context, event Event) error {
	if b == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := b.publisher.Publish(ctx, b.channel, payload); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
