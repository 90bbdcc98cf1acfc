// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/poll"
)

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }
func (Nop) Close() error                            { return nil }

// New connects the publisher selected by cfg.EventsBackend.
func New(ctx context.Context, cfg cliparse.Config) (Publisher, error) {
	switch cfg.EventsBackend {
	case cliparse.EventsRedis:
		return DialRedis(ctx, cfg.RedisURL, cfg.RedisChannel)
	case cliparse.EventsAMQP:
		return DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
	case cliparse.EventsNone, "":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
}

const publishTimeout = 5 * time.Second

// Forwarder decouples the store's synchronous listeners from a slow publisher.
type Forwarder struct {
	pub   Publisher
	queue chan Envelope
}

func NewForwarder(pub Publisher, buffer int) *Forwarder {
	return &Forwarder{pub: pub, queue: make(chan Envelope, buffer)}
}

// Listener enqueues events without blocking. When the queue is full the event
// is dropped and logged.
func (f *Forwarder) Listener() poll.Listener {
	return func(e poll.Event) {
		select {
		case f.queue <- NewEnvelope(e):
		default:
			slog.Warn("event queue full, dropping event", "type", e.Kind, "poll_id", e.PollID)
		}
	}
}

// Run publishes queued events until ctx is done, then drains what is left.
func (f *Forwarder) Run(ctx context.Context) {
	for {
		select {
		case env := <-f.queue:
			f.publish(ctx, env)
		case <-ctx.Done():
			for {
				select {
				case env := <-f.queue:
					f.publish(context.Background(), env)
				default:
					return
				}
			}
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, env Envelope) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := f.pub.Publish(ctx, env); err != nil {
		slog.Error("failed to publish event", "type", env.Type, "poll_id", env.PollID, "error", err)
	}
}
