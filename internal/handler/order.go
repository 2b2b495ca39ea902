package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"printd/internal/model"
	"printd/internal/service"
	"printd/internal/template"
)

// qrCodeSuffix distinguishes order QR payloads from other codes the
// warehouse scanners see.
const qrCodeSuffix = ".dy"

const defaultPerPage = 1000

// OrderStore is the store surface the order handlers use.
type OrderStore interface {
	Create(ctx context.Context, printer, address, content string) (*model.Order, error)
	GetByOrderID(ctx context.Context, orderID int64) (*model.Order, error)
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
}

// Enqueuer hands a freshly created order to the propagation pool.
type Enqueuer interface {
	Enqueue(o model.Order)
}

type orderRequest struct {
	Data template.Grid `json:"data"`
}

// OrderTemplateAHandler creates an order from the length/count template.
// Validation failures come back as 400 with the failure reason; nothing
// is persisted in that case.
func OrderTemplateAHandler(store OrderStore, prop Enqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		payload, err := template.ParseTemplateA(req.Data)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		saveOrder(w, r, store, prop, payload)
	}
}

// OrderTemplateBHandler creates an order from the spec/count/unit
// template, which has no arithmetic cross-check.
func OrderTemplateBHandler(store OrderStore, prop Enqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		saveOrder(w, r, store, prop, template.ParseTemplateB(req.Data))
	}
}

// saveOrder persists the payload and hands the new record to the
// propagation pool. The response never waits on the external platform.
func saveOrder(w http.ResponseWriter, r *http.Request, store OrderStore, prop Enqueuer, payload template.Payload) {
	order, err := store.Create(r.Context(), payload.Printer, payload.Address, payload.Content)
	if err != nil {
		slog.Error("order create failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	prop.Enqueue(*order)

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":      "Order added and updated",
		"record_id":   order.LocalID,
		"order_id":    order.OrderID,
		"qr_code":     strconv.FormatInt(order.OrderID, 10) + qrCodeSuffix,
		"create_time": time.UnixMilli(order.PrintTime).Format("2006-01-02 15:04:05"),
	})
}

func GetOrderHandler(store OrderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("order_id")
		if raw == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'order_id' in query parameters"})
			return
		}

		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order_id"})
			return
		}

		order, err := store.GetByOrderID(r.Context(), orderID)
		if err != nil {
			if errors.Is(err, service.ErrOrderNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
				return
			}
			slog.Error("order lookup failed", "order_id", orderID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

func ListOrdersHandler(store OrderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageNo := queryInt(r, "pageno", 1)
		perPage := queryInt(r, "perpage", defaultPerPage)
		if pageNo < 1 {
			pageNo = 1
		}
		if perPage < 1 {
			perPage = defaultPerPage
		}

		orders, err := store.List(r.Context(), perPage, (pageNo-1)*perPage)
		if err != nil {
			slog.Error("order list failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if orders == nil {
			orders = []model.Order{}
		}

		writeJSON(w, http.StatusOK, orders)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}
