package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/go-redis/redis/v8"
)

// Stream delivers decoded events until Close is called or the subscribing
// context ends. C is closed afterwards.
type Stream[T any] struct {
	C <-chan T

	pubsub *redis.PubSub
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Close unsubscribes and waits for the reader to stop. Safe to call more than once.
func (s *Stream[T]) Close() {
	s.once.Do(func() {
		s.cancel()
		s.pubsub.Close()
	})
	<-s.done
}

// Subscription is a stream of table changes.
type Subscription = Stream[ChangeEvent]

// AuthSubscription is a stream of session events.
type AuthSubscription = Stream[SessionEvent]

// Hub fans events out through Redis pub/sub so every replica sees them.
type Hub struct {
	client *redis.Client
	log    *logger.Logger
}

func NewHub(client *redis.Client, log *logger.Logger) *Hub {
	return &Hub{client: client, log: log.Component("realtime")}
}

// Publish announces a change on ev.Table.
func (h *Hub) Publish(ctx context.Context, ev ChangeEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return h.publish(ctx, ChangeChannel(ev.Table), ev)
}

// Subscribe listens for changes on one table.
func (h *Hub) Subscribe(ctx context.Context, table string) (*Subscription, error) {
	return subscribe[ChangeEvent](ctx, h, ChangeChannel(table))
}

// PublishSession announces an auth-state change.
func (h *Hub) PublishSession(ctx context.Context, ev SessionEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	return h.publish(ctx, AuthChannel, ev)
}

// SubscribeSessions listens for auth-state changes.
func (h *Hub) SubscribeSessions(ctx context.Context) (*AuthSubscription, error) {
	return subscribe[SessionEvent](ctx, h, AuthChannel)
}

func (h *Hub) publish(ctx context.Context, channel string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode event for %s: %w", channel, err)
	}
	if err := h.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}
	return nil
}

func subscribe[T any](ctx context.Context, h *Hub, channel string) (*Stream[T], error) {
	pubsub := h.client.Subscribe(ctx, channel)
	// Wait for the subscription confirmation so no event published after
	// this call returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan T, 16)
	s := &Stream[T]{C: out, pubsub: pubsub, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev T
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					h.log.WithError(err).Warnf("dropping malformed event on %s", channel)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return s, nil
}
