package orders

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/voicecart/voicecart/pkg/commerce/store"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	exec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	exec("INSERT INTO products (product_id, product_name, category, price, stock_available, return_eligible) VALUES ('P001', 'Wireless Headphones', 'Electronics', 79.99, 12, 1)")
	exec("INSERT INTO products (product_id, product_name, category, price, stock_available, return_eligible) VALUES ('P002', 'Protein Powder', 'Health', 34.99, 20, 0)")

	exec("INSERT INTO orders (order_id, customer_id, order_status, order_date, total_amount) VALUES ('ORD001', 'CUST001', 'Placed', '2026-08-25', 79.99)")
	exec("INSERT INTO orders (order_id, customer_id, order_status, order_date, total_amount, delivery_date) VALUES ('ORD002', 'CUST001', 'Delivered', '2026-08-10', 114.98, '2026-08-14')")
	exec("INSERT INTO orders (order_id, customer_id, order_status, order_date, total_amount, delivery_date) VALUES ('ORD003', 'CUST001', 'Delivered', '2026-06-01', 34.99, '2026-06-05')")
	exec("INSERT INTO orders (order_id, customer_id, order_status, order_date) VALUES ('ORD004', 'CUST002', 'Shipped', '2026-08-28')")

	exec("INSERT INTO order_items (order_id, product_id, product_name, quantity, item_price) VALUES ('ORD001', 'P001', 'Wireless Headphones', 1, 79.99)")
	exec("INSERT INTO order_items (order_id, product_id, product_name, quantity, item_price) VALUES ('ORD002', 'P001', 'Wireless Headphones', 1, 79.99)")
	exec("INSERT INTO order_items (order_id, product_id, product_name, quantity, item_price) VALUES ('ORD002', 'P002', 'Protein Powder', 1, 34.99)")
	exec("INSERT INTO order_items (order_id, product_id, product_name, quantity, item_price) VALUES ('ORD003', 'P002', 'Protein Powder', 1, 34.99)")

	return db
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(openSeeded(t), nil)
	m.SetNow(fixedNow)
	return m
}

func TestGetOrderWithItems(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	order, err := m.GetOrder(context.Background(), "ORD002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if order.Status != StatusDelivered || order.CustomerID != "CUST001" {
		t.Fatalf("order = %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}

	_, err = m.GetOrder(context.Background(), "ORD999")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("missing order err = %v, want sql.ErrNoRows", err)
	}
}

func TestOrderDatesUseCalendarFormat(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)
	ctx := context.Background()

	// DATE columns come back from the driver as time.Time; the manager must
	// re-format them, not leak RFC3339 timestamps into messages.
	order, err := m.GetOrder(ctx, "ORD002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if order.OrderDate != "2026-08-10" {
		t.Fatalf("OrderDate = %q, want 2026-08-10", order.OrderDate)
	}
	if order.DeliveryDate != "2026-08-14" {
		t.Fatalf("DeliveryDate = %q, want 2026-08-14", order.DeliveryDate)
	}

	// NULL delivery_date stays empty.
	order, err = m.GetOrder(ctx, "ORD004")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if order.DeliveryDate != "" {
		t.Fatalf("DeliveryDate = %q, want empty for undelivered order", order.DeliveryDate)
	}

	all, err := m.AllOrders(ctx, 10)
	if err != nil {
		t.Fatalf("all orders: %v", err)
	}
	for _, o := range all {
		if _, err := time.Parse("2006-01-02", o.OrderDate); err != nil {
			t.Fatalf("order %s date %q is not calendar-formatted", o.ID, o.OrderDate)
		}
	}
}

func TestCustomerOrdersNewestFirst(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	orders, err := m.CustomerOrders(context.Background(), "CUST001", 5)
	if err != nil {
		t.Fatalf("customer orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("orders = %d, want 3", len(orders))
	}
	if orders[0].ID != "ORD001" || orders[2].ID != "ORD003" {
		t.Fatalf("order of orders = %s..%s, want newest first", orders[0].ID, orders[2].ID)
	}
	if len(orders[1].Items) != 2 {
		t.Fatalf("ORD002 items = %d, want 2", len(orders[1].Items))
	}
}

func TestCancelOrderOnlyWhenPlaced(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)
	ctx := context.Background()

	out, err := m.CancelOrder(ctx, "ORD004", "changed my mind")
	if err != nil {
		t.Fatalf("cancel shipped: %v", err)
	}
	if out.OK {
		t.Fatalf("cancelled a shipped order")
	}
	if !strings.Contains(out.Message, "'Shipped'") || !strings.Contains(out.Message, "Only orders with status 'Placed'") {
		t.Fatalf("rejection message = %q", out.Message)
	}

	out, err = m.CancelOrder(ctx, "ORD001", "changed my mind")
	if err != nil {
		t.Fatalf("cancel placed: %v", err)
	}
	if !out.OK {
		t.Fatalf("cancel rejected: %q", out.Message)
	}
	if !strings.Contains(out.Message, "successfully cancelled") || !strings.Contains(out.Message, "changed my mind") {
		t.Fatalf("success message = %q", out.Message)
	}

	order, err := m.GetOrder(ctx, "ORD001")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if order.Status != StatusCancelled {
		t.Fatalf("status = %q, want Cancelled", order.Status)
	}

	// Cancelling again hits the status gate.
	out, err = m.CancelOrder(ctx, "ORD001", "again")
	if err != nil || out.OK {
		t.Fatalf("second cancel: ok=%v err=%v", out.OK, err)
	}
}

func TestCancelOrderNotFound(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	out, err := m.CancelOrder(context.Background(), "ORD999", "whatever")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if out.OK || !strings.Contains(out.Message, "Order ORD999 not found") {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestInitiateReturnGates(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)
	ctx := context.Background()

	cases := []struct {
		name      string
		orderID   string
		productID string
		ok        bool
		fragment  string
	}{
		{"order missing", "ORD999", "P001", false, "not found. Please verify"},
		{"not delivered", "ORD001", "P001", false, "only be initiated for delivered orders"},
		{"window expired", "ORD003", "P002", false, "Return window has expired"},
		{"product not on order", "ORD002", "P999", false, "was not found in order ORD002"},
		{"not eligible", "ORD002", "P002", false, "not eligible for return"},
		{"success", "ORD002", "P001", true, "7-10 business days"},
	}
	for _, tc := range cases {
		out, err := m.InitiateReturn(ctx, tc.orderID, tc.productID, "defective")
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if out.OK != tc.ok {
			t.Fatalf("%s: ok = %v, message %q", tc.name, out.OK, out.Message)
		}
		if !strings.Contains(out.Message, tc.fragment) {
			t.Fatalf("%s: message %q missing %q", tc.name, out.Message, tc.fragment)
		}
	}
}

func TestReturnWindowBoundary(t *testing.T) {
	t.Parallel()
	m := newTestManager(t)

	// 2026-08-10 order, clock 2026-08-31: 21 days, inside the window.
	if !m.withinReturnWindow("2026-08-10") {
		t.Fatalf("21 days should be within the window")
	}
	// Exactly 30 days stays eligible.
	if !m.withinReturnWindow("2026-08-01") {
		t.Fatalf("30 days should be within the window")
	}
	if m.withinReturnWindow("2026-07-31") {
		t.Fatalf("31 days should be outside the window")
	}
	if m.withinReturnWindow("not-a-date") {
		t.Fatalf("unparseable date should fail closed")
	}
}
