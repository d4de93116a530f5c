package websocket

import (
	"context"
	"fmt"
	"strings"
	"sync"

	redis "github.com/redis/go-redis/v9"
)

// Broker carries published events to every hub subscribed to it. A hub
// delivers to its local sockets only what comes back from the broker, so the
// same path serves one instance or many.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe calls deliver for every event on any channel until ctx ends.
	Subscribe(ctx context.Context, deliver func(channel string, payload []byte)) error
}

// LocalBroker delivers in process.
type LocalBroker struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(string, []byte)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[int]func(string, []byte))}
}

func (b *LocalBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, deliver := range b.subs {
		deliver(channel, payload)
	}
	return nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, deliver func(string, []byte)) error {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = deliver
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

// redisPrefix namespaces realtime channels in a shared Redis.
const redisPrefix = "vibehub:rt:"

// RedisBroker fans events out across instances with Redis pub/sub.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, redisPrefix+channel, payload).Err()
}

// Subscribe returns once Redis has confirmed the pattern subscription.
func (b *RedisBroker) Subscribe(ctx context.Context, deliver func(string, []byte)) error {
	pubsub := b.client.PSubscribe(ctx, redisPrefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis: psubscribe: %w", err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				deliver(strings.TrimPrefix(msg.Channel, redisPrefix), []byte(msg.Payload))
			}
		}
	}()
	return nil
}
