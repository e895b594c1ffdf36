package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tillboard/ordersync/internal/adapter/storage"
	"github.com/tillboard/ordersync/internal/core/domain"
	"github.com/tillboard/ordersync/internal/core/service"
	"github.com/tillboard/ordersync/internal/port"
)

type HTTPHandler struct {
	store    port.OrderStore
	checkout *service.CheckoutService
	log      *slog.Logger
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
}

type finalizeResponse struct {
	OrderID  string  `json:"order_id"`
	Revision int64   `json:"revision"`
	Total    float64 `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(store port.OrderStore, checkout *service.CheckoutService, log *slog.Logger) *HTTPHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPHandler{store: store, checkout: checkout, log: log}
}

// CreateOrder mints a fresh order ID and writes the initial empty order, so
// both surfaces subscribing to the ID see an explicit empty order rather
// than "not found".
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := uuid.NewString()
	if err := h.store.Write(r.Context(), orderID, domain.Order{ID: orderID}); err != nil {
		h.log.Error("create order failed", "order_id", orderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusCreated, createOrderResponse{OrderID: orderID})
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	snap, err := h.store.Get(r.Context(), orderID)
	if err != nil {
		h.log.Error("get order failed", "order_id", orderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if snap.Order == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, orderToPayload(*snap.Order))
}

func (h *HTTPHandler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	rec, err := h.checkout.Finalize(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, port.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
			return
		}
		if errors.Is(err, storage.ErrAlreadyFinalized) {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "order already finalized"})
			return
		}
		h.log.Error("finalize order failed", "order_id", orderID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, finalizeResponse{
		OrderID:  rec.OrderID,
		Revision: rec.Revision,
		Total:    rec.Total,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
