package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/voicecart/voicecart/pkg/commerce/orders"
)

// OrdersHandler serves the read-only dashboard API over the order book:
// GET /api/orders and GET /api/orders/{id}.
type OrdersHandler struct {
	Orders *orders.Manager
	Logger *slog.Logger
}

type orderItemJSON struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	ItemPrice   float64 `json:"item_price"`
}

type orderJSON struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	Status       string          `json:"status"`
	OrderDate    string          `json:"order_date"`
	TotalAmount  float64         `json:"total_amount"`
	DeliveryDate string          `json:"delivery_date,omitempty"`
	Items        []orderItemJSON `json:"items"`
}

type ordersSummaryJSON struct {
	Orders       []orderJSON `json:"orders"`
	TotalOrders  int         `json:"total_orders"`
	TotalRevenue float64     `json:"total_revenue"`
	AvgOrder     float64     `json:"avg_order"`
}

func (h OrdersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")
	if rest == "" {
		h.serveSummary(w, r)
		return
	}
	h.serveOrder(w, r, rest)
}

func (h OrdersHandler) serveSummary(w http.ResponseWriter, r *http.Request) {
	all, err := h.Orders.AllOrders(r.Context(), 0)
	if err != nil {
		h.logError("list orders", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	out := ordersSummaryJSON{Orders: make([]orderJSON, 0, len(all))}
	var revenue float64
	for _, o := range all {
		out.Orders = append(out.Orders, toOrderJSON(o))
		revenue += o.TotalAmount
	}
	out.TotalOrders = len(all)
	out.TotalRevenue = round2(revenue)
	if len(all) > 0 {
		out.AvgOrder = round2(revenue / float64(len(all)))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h OrdersHandler) serveOrder(w http.ResponseWriter, r *http.Request, orderID string) {
	order, err := h.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
			return
		}
		h.logError("get order", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderJSON(order))
}

func (h OrdersHandler) logError(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, "error", err)
	}
}

func toOrderJSON(o orders.Order) orderJSON {
	out := orderJSON{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		Status:       o.Status,
		OrderDate:    o.OrderDate,
		TotalAmount:  o.TotalAmount,
		DeliveryDate: o.DeliveryDate,
		Items:        make([]orderItemJSON, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, orderItemJSON{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			ItemPrice:   item.ItemPrice,
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
