package storage

import (
	"context"
	"sync"

	"github.com/tillboard/ordersync/internal/core/domain"
)

// MemoryStore is an in-process OrderStore for tests and single-node mode.
// Each subscriber gets its own pump goroutine, so a slow consumer never
// blocks writers while per-subscriber delivery still matches write order.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]memoryEntry
	subs   map[string]map[int64]*memorySub
	nextID int64
}

type memoryEntry struct {
	order domain.Order
	rev   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders: make(map[string]memoryEntry),
		subs:   make(map[string]map[int64]*memorySub),
	}
}

func (s *MemoryStore) Subscribe(ctx context.Context, orderID string) (<-chan domain.Snapshot, func(), error) {
	sub := newMemorySub()

	s.mu.Lock()
	if s.subs[orderID] == nil {
		s.subs[orderID] = make(map[int64]*memorySub)
	}
	s.nextID++
	id := s.nextID
	s.subs[orderID][id] = sub
	sub.enqueue(s.snapshotLocked(orderID))
	s.mu.Unlock()

	go sub.pump()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[orderID], id)
			s.mu.Unlock()
			sub.close()
		})
	}
	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			cancel()
		}()
	}
	return sub.out, cancel, nil
}

func (s *MemoryStore) Write(ctx context.Context, orderID string, order domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	entry := memoryEntry{order: order.Clone(), rev: s.orders[orderID].rev + 1}
	entry.order.ID = orderID
	s.orders[orderID] = entry
	for _, sub := range s.subs[orderID] {
		o := entry.order.Clone()
		sub.enqueue(domain.Snapshot{Order: &o, Revision: entry.rev})
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, orderID string) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(orderID), nil
}

func (s *MemoryStore) snapshotLocked(orderID string) domain.Snapshot {
	entry, ok := s.orders[orderID]
	if !ok {
		return domain.Snapshot{}
	}
	o := entry.order.Clone()
	return domain.Snapshot{Order: &o, Revision: entry.rev}
}

type memorySub struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []domain.Snapshot
	closed  bool
	done    chan struct{}
	out     chan domain.Snapshot
}

func newMemorySub() *memorySub {
	sub := &memorySub{
		done: make(chan struct{}),
		out:  make(chan domain.Snapshot),
	}
	sub.cond = sync.NewCond(&sub.mu)
	return sub
}

func (sub *memorySub) enqueue(snap domain.Snapshot) {
	sub.mu.Lock()
	if !sub.closed {
		sub.pending = append(sub.pending, snap)
		sub.cond.Signal()
	}
	sub.mu.Unlock()
}

func (sub *memorySub) close() {
	sub.mu.Lock()
	sub.closed = true
	sub.cond.Signal()
	sub.mu.Unlock()
	close(sub.done)
}

func (sub *memorySub) pump() {
	for {
		sub.mu.Lock()
		for len(sub.pending) == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			close(sub.out)
			return
		}
		snap := sub.pending[0]
		sub.pending = sub.pending[1:]
		sub.mu.Unlock()

		select {
		case sub.out <- snap:
		case <-sub.done:
			close(sub.out)
			return
		}
	}
}
