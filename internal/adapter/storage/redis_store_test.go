package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tillboard/ordersync/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func testOrderID() string {
	return "test-" + uuid.NewString()
}

func TestRedisStore_GetAbsentOrder(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	store := NewRedisStore(client, nil)
	snap, err := store.Get(context.Background(), testOrderID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Order != nil {
		t.Errorf("expected nil order, got %+v", snap.Order)
	}
}

func TestRedisStore_WriteGetRoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, nil)
	orderID := testOrderID()

	order := domain.Order{
		Items:         []domain.OrderItem{{ItemID: "a", Name: "Latte", UnitPrice: 4.5, Quantity: 2}},
		ServiceCharge: 1.5,
		CustomerName:  "Ana",
		Notes:         "no sugar",
	}
	if err := store.Write(ctx, orderID, order); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	snap, err := store.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snap.Order == nil {
		t.Fatal("expected order, got nil")
	}
	if snap.Revision != 1 {
		t.Errorf("expected revision 1, got %d", snap.Revision)
	}
	if snap.Order.ID != orderID {
		t.Errorf("expected id %s, got %s", orderID, snap.Order.ID)
	}
	if len(snap.Order.Items) != 1 || snap.Order.Items[0].Name != "Latte" {
		t.Errorf("items did not round trip: %+v", snap.Order.Items)
	}
	if snap.Order.Notes != "no sugar" {
		t.Errorf("notes did not round trip: %q", snap.Order.Notes)
	}

	// second write bumps the revision
	order.Notes = "extra hot"
	if err := store.Write(ctx, orderID, order); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	snap, _ = store.Get(ctx, orderID)
	if snap.Revision != 2 {
		t.Errorf("expected revision 2, got %d", snap.Revision)
	}
}

func TestRedisStore_WriteEmptyOrder(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, nil)
	orderID := testOrderID()

	// an explicit empty order is a valid value, distinct from an absent key
	if err := store.Write(ctx, orderID, domain.Order{}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	snap, err := store.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if snap.Order == nil {
		t.Fatal("empty order came back as absent")
	}
	if len(snap.Order.Items) != 0 {
		t.Errorf("expected no items, got %+v", snap.Order.Items)
	}
}

func TestRedisStore_SubscribeDeliversCurrentThenWrites(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, nil)
	orderID := testOrderID()

	if err := store.Write(ctx, orderID, domain.Order{Notes: "initial"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ch, cancel, err := store.Subscribe(ctx, orderID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	first := recv(t, ch)
	if first.Order == nil || first.Order.Notes != "initial" {
		t.Fatalf("expected current value first, got %+v", first.Order)
	}

	if err := store.Write(ctx, orderID, domain.Order{Notes: "updated"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	second := recv(t, ch)
	if second.Order == nil || second.Order.Notes != "updated" {
		t.Fatalf("expected pushed update, got %+v", second.Order)
	}
	if second.Revision <= first.Revision {
		t.Errorf("revision did not advance: %d then %d", first.Revision, second.Revision)
	}
}

func TestRedisStore_CancelStopsSubscription(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := NewRedisStore(client, nil)
	orderID := testOrderID()

	ch, cancel, err := store.Subscribe(ctx, orderID)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	recv(t, ch) // initial nil
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel never closed after cancel")
		}
	}
}
