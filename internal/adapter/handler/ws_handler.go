package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tillboard/ordersync/internal/core/domain"
	"github.com/tillboard/ordersync/internal/core/service"
	"github.com/tillboard/ordersync/internal/port"
)

// WSHandler serves one browser surface per connection: every websocket gets
// its own sync engine bound to the order ID in the path. Two tabs on the
// same order are two engines racing through the shared store, exactly like
// the primary editor and the shared-link editor.
type WSHandler struct {
	store    port.OrderStore
	debounce time.Duration
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// editMessage is an inbound frame: one local edit from the surface.
type editMessage struct {
	Op        string  `json:"op"`
	ItemID    string  `json:"itemId,omitempty"`
	Name      string  `json:"name,omitempty"`
	UnitPrice float64 `json:"unitPrice,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	ItemCode  string  `json:"itemCode,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	Value     string  `json:"value,omitempty"`
}

// surfaceFrame is an outbound frame: a snapshot, a sync-status change, or an
// error the surface should show without dropping the session.
type surfaceFrame struct {
	Type   string        `json:"type"` // snapshot | status | not_found | error
	Status string        `json:"status,omitempty"`
	Order  *orderPayload `json:"order,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func NewWSHandler(store port.OrderStore, debounce time.Duration, log *slog.Logger) *WSHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WSHandler{
		store:    store,
		debounce: debounce,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Surface handles GET /ws/orders/{id}.
func (h *WSHandler) Surface(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	if orderID == "" {
		http.Error(w, "missing order id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "order_id", orderID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	engine := service.NewEngine(h.store, orderID,
		service.WithDebounce(h.debounce), service.WithLogger(h.log))

	go func() {
		defer cancel()
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			h.log.Error("surface engine stopped", "order_id", orderID, "error", err)
		}
	}()

	// All outbound frames funnel through one goroutine; gorilla permits a
	// single concurrent writer.
	frames := make(chan surfaceFrame, 16)
	go func() {
		defer cancel()
		for {
			select {
			case frame := <-frames:
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			case ev := <-engine.Events():
				if err := conn.WriteJSON(frameFromEvent(ev)); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	h.log.Info("surface connected", "order_id", orderID, "remote", r.RemoteAddr)
	defer h.log.Info("surface disconnected", "order_id", orderID, "remote", r.RemoteAddr)

	for {
		var msg editMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		edit, err := msg.toEdit()
		if err != nil {
			select {
			case frames <- surfaceFrame{Type: "error", Error: err.Error()}:
			case <-ctx.Done():
				return
			}
			continue
		}
		if _, err := engine.ApplyEdit(ctx, edit); err != nil {
			return
		}
	}
}

func frameFromEvent(ev service.Event) surfaceFrame {
	switch ev.Kind {
	case service.EventModelApplied:
		var order *orderPayload
		if ev.Order != nil {
			p := orderToPayload(*ev.Order)
			order = &p
		}
		return surfaceFrame{Type: "snapshot", Status: string(ev.Status), Order: order}
	case service.EventOrderNotFound:
		return surfaceFrame{Type: "not_found", Status: string(ev.Status)}
	case service.EventWriteFailed:
		return surfaceFrame{Type: "error", Status: string(ev.Status), Error: "write failed, changes not saved yet"}
	default:
		return surfaceFrame{Type: "status", Status: string(ev.Status)}
	}
}

func (m editMessage) toEdit() (service.Edit, error) {
	switch m.Op {
	case "add_item":
		return service.AddItem{Item: domain.OrderItem{
			ItemID:    m.ItemID,
			Name:      m.Name,
			UnitPrice: m.UnitPrice,
			Quantity:  m.Quantity,
			ItemCode:  m.ItemCode,
		}}, nil
	case "remove_item":
		return service.RemoveItem{ItemID: m.ItemID}, nil
	case "set_quantity":
		return service.SetItemQuantity{ItemID: m.ItemID, Quantity: m.Quantity}, nil
	case "set_unit_price":
		return service.SetUnitPrice{ItemID: m.ItemID, UnitPrice: m.UnitPrice}, nil
	case "set_service_charge":
		return service.SetServiceCharge{Amount: m.Amount}, nil
	case "set_customer_name":
		return service.SetCustomerName{Value: m.Value}, nil
	case "set_customer_phone":
		return service.SetCustomerPhone{Value: m.Value}, nil
	case "set_table_number":
		return service.SetTableNumber{Value: m.Value}, nil
	case "set_notes":
		return service.SetNotes{Value: m.Value}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", m.Op)
	}
}
