package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/tillboard/ordersync/internal/core/domain"
)

const (
	orderKeyPrefix  = "order:"
	orderRevSuffix  = ":rev"
	orderChanPrefix = "order-updates:"
)

// writeOrderScript assigns the next revision, stores the document with the
// revision embedded and publishes it to the order's update channel in one
// atomic step, so every subscriber observes writes in revision order.
var writeOrderScript = redis.NewScript(`
local rev = redis.call('INCR', KEYS[2])
local doc = cjson.decode(ARGV[1])
doc['rev'] = rev
local payload = cjson.encode(doc)
redis.call('SET', KEYS[1], payload)
redis.call('PUBLISH', ARGV[2], payload)
return rev
`)

// RedisStore is the shared real-time order store: a JSON document per order
// key, with every write pushed to all current subscribers over pub/sub.
// Writes are unconditional replacements; the last accepted write wins.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}
	return &RedisStore{client: client, log: log}
}

func (r *RedisStore) Write(ctx context.Context, orderID string, order domain.Order) error {
	body, err := domain.MarshalOrder(order, 0)
	if err != nil {
		return err
	}
	keys := []string{
		orderKeyPrefix + orderID,
		orderKeyPrefix + orderID + orderRevSuffix,
	}
	if err := writeOrderScript.Run(ctx, r.client, keys, string(body), orderChanPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("write order %s: %w", orderID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, orderID string) (domain.Snapshot, error) {
	raw, err := r.client.Get(ctx, orderKeyPrefix+orderID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Snapshot{}, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("get order %s: %w", orderID, err)
	}
	order, rev, err := domain.UnmarshalOrder(raw)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode order %s: %w", orderID, err)
	}
	order.ID = orderID
	return domain.Snapshot{Order: &order, Revision: rev}, nil
}

func (r *RedisStore) Subscribe(ctx context.Context, orderID string) (<-chan domain.Snapshot, func(), error) {
	pubsub := r.client.Subscribe(ctx, orderChanPrefix+orderID)
	// confirm the subscription is on the wire before reading the current
	// value, so no write between the read and the first message is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe order %s: %w", orderID, err)
	}
	initial, err := r.Get(ctx, orderID)
	if err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	out := make(chan domain.Snapshot)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		deliver := func(snap domain.Snapshot) bool {
			select {
			case out <- snap:
				return true
			case <-done:
				return false
			case <-ctx.Done():
				return false
			}
		}
		if !deliver(initial) {
			return
		}
		updates := pubsub.Channel()
		for {
			select {
			case msg, ok := <-updates:
				if !ok {
					return
				}
				order, rev, err := domain.UnmarshalOrder([]byte(msg.Payload))
				if err != nil {
					// tolerate a garbage message; the next write supersedes it
					r.log.Error("dropping undecodable order update",
						"order_id", orderID, "error", err)
					continue
				}
				order.ID = orderID
				if !deliver(domain.Snapshot{Order: &order, Revision: rev}) {
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}
