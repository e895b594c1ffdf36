package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tillboard/ordersync/internal/core/domain"
	"github.com/tillboard/ordersync/internal/port"
)

// Status is one surface's synchronization state.
type Status string

const (
	// StatusClean: the local model matches the last-applied remote snapshot.
	StatusClean Status = "clean"
	// StatusDirty: local edits exist that have not been confirmed written.
	StatusDirty Status = "dirty"
	// StatusPushing: a write to the shared store is in flight.
	StatusPushing Status = "pushing"
	// StatusApplying: a remote snapshot is being copied into the local model.
	StatusApplying Status = "applying"
)

type EventKind string

const (
	// EventStatusChanged reports every status transition.
	EventStatusChanged EventKind = "status_changed"
	// EventModelApplied reports that a remote snapshot replaced the local
	// model. Not emitted for snapshots structurally equal to the model, so a
	// pure echo of this surface's own write never re-triggers the UI.
	EventModelApplied EventKind = "model_applied"
	// EventOrderNotFound reports that the subscription has no value for the
	// order ID. Distinct from an order that exists with zero items.
	EventOrderNotFound EventKind = "order_not_found"
	// EventWriteFailed reports a rejected write. The engine stays dirty and
	// does not auto-retry; the next edit or timer cycle is the retry path.
	EventWriteFailed EventKind = "write_failed"
)

type Event struct {
	Kind   EventKind
	Status Status
	Order  *domain.Order // set on EventModelApplied
	Err    error         // set on EventWriteFailed
}

// DefaultDebounce is the quiet period after the last edit before a write is
// attempted. Edits inside the window collapse into a single pending write.
const DefaultDebounce = 750 * time.Millisecond

type editRequest struct {
	edit Edit
	done chan bool
}

type writeResult struct {
	seq uint64
	err error
}

// Engine keeps one surface's local order model convergent with the shared
// store without losing in-progress edits and without entering a write/notify
// feedback loop. Two engines bound to the same order ID race through the
// store with no coordination beyond last-write-wins; when both are dirty at
// once, whichever write the store accepts last silently wins in full.
//
// All state lives on the Run loop goroutine. Remote snapshots are applied
// inside that loop, outside the edit path, so applying can never be mistaken
// for a local edit. ApplyEdit, Order, Status and Events are safe from any
// goroutine.
type Engine struct {
	store    port.OrderStore
	orderID  string
	debounce time.Duration
	log      *slog.Logger

	edits  chan editRequest
	reads  chan chan domain.Order
	events chan Event

	// loop-owned, never touched outside Run
	model    domain.Order
	dirty    bool
	inflight bool
	editSeq  uint64 // bumped on every model-changing edit
	pushSeq  uint64 // editSeq when the in-flight write was serialized

	status atomic.Value // Status
}

type Option func(*Engine)

func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine binds an engine to one order ID. The order ID is fixed for the
// lifetime of the engine.
func NewEngine(store port.OrderStore, orderID string, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		orderID:  orderID,
		debounce: DefaultDebounce,
		log:      slog.Default(),
		edits:    make(chan editRequest),
		reads:    make(chan chan domain.Order),
		events:   make(chan Event, 16),
	}
	e.model.ID = orderID
	e.status.Store(StatusClean)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run subscribes to the order and drives the engine until ctx ends. Teardown
// cancels the pending debounce timer, drops the subscription and ignores any
// write acknowledgment that resolves afterward.
func (e *Engine) Run(ctx context.Context) error {
	snapshots, cancel, err := e.store.Subscribe(ctx, e.orderID)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", e.orderID, err)
	}
	defer cancel()

	deb := NewDebouncer(e.debounce)
	defer deb.Stop()

	acks := make(chan writeResult, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-e.edits:
			if req.edit.apply(&e.model) {
				e.editSeq++
				e.dirty = true
				if !e.inflight {
					e.setStatus(ctx, StatusDirty)
				}
				deb.Reset()
				req.done <- true
			} else {
				req.done <- false
			}

		case req := <-e.reads:
			req <- e.model.Clone()

		case <-deb.C():
			if e.dirty && !e.inflight {
				e.push(ctx, acks)
			}

		case res := <-acks:
			e.onAck(ctx, res, deb)

		case snap, ok := <-snapshots:
			if !ok {
				return nil
			}
			e.onSnapshot(ctx, snap)
		}
	}
}

// ApplyEdit is the only sanctioned mutation entry point. It reports whether
// the edit changed the model. Blocks until the Run loop accepts it.
func (e *Engine) ApplyEdit(ctx context.Context, edit Edit) (bool, error) {
	req := editRequest{edit: edit, done: make(chan bool, 1)}
	select {
	case e.edits <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case changed := <-req.done:
		return changed, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Order returns a copy of the current local model.
func (e *Engine) Order(ctx context.Context) (domain.Order, error) {
	req := make(chan domain.Order, 1)
	select {
	case e.reads <- req:
	case <-ctx.Done():
		return domain.Order{}, ctx.Err()
	}
	select {
	case o := <-req:
		return o, nil
	case <-ctx.Done():
		return domain.Order{}, ctx.Err()
	}
}

func (e *Engine) Status() Status {
	return e.status.Load().(Status)
}

// Events streams status transitions, applied snapshots and write failures.
// The stream must be consumed; the Run loop blocks once the buffer fills.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) push(ctx context.Context, acks chan<- writeResult) {
	e.inflight = true
	e.pushSeq = e.editSeq
	e.setStatus(ctx, StatusPushing)

	payload := e.model.Clone()
	seq := e.pushSeq
	go func() {
		err := e.store.Write(ctx, e.orderID, payload)
		acks <- writeResult{seq: seq, err: err}
	}()
}

func (e *Engine) onAck(ctx context.Context, res writeResult, deb *Debouncer) {
	e.inflight = false
	if res.err != nil {
		e.log.Error("order write failed",
			"order_id", e.orderID, "error", res.err)
		e.setStatus(ctx, StatusDirty)
		e.emit(ctx, Event{Kind: EventWriteFailed, Status: StatusDirty, Err: res.err})
		return
	}
	if e.editSeq != res.seq {
		// edits landed while the write was in flight; stay dirty and let the
		// timer fire again for the remainder
		e.setStatus(ctx, StatusDirty)
		deb.Reset()
		return
	}
	e.dirty = false
	e.setStatus(ctx, StatusClean)
}

func (e *Engine) onSnapshot(ctx context.Context, snap domain.Snapshot) {
	if e.dirty || e.inflight {
		// local edits take precedence until the pending write lands
		return
	}
	if snap.Order == nil {
		e.emit(ctx, Event{Kind: EventOrderNotFound, Status: e.Status()})
		return
	}
	if OrdersEqual(e.model, *snap.Order) {
		return
	}
	e.setStatus(ctx, StatusApplying)
	e.model = snap.Order.Clone()
	e.model.ID = e.orderID
	e.setStatus(ctx, StatusClean)

	applied := e.model.Clone()
	e.emit(ctx, Event{Kind: EventModelApplied, Status: StatusClean, Order: &applied})
}

func (e *Engine) setStatus(ctx context.Context, s Status) {
	if e.Status() == s {
		return
	}
	e.status.Store(s)
	e.emit(ctx, Event{Kind: EventStatusChanged, Status: s})
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	select {
	case e.events <- ev:
	case <-ctx.Done():
	}
}
