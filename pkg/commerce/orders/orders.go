// Package orders reads and mutates orders, enforcing the cancellation and
// return business rules. The store only persists status transitions; the
// rules live here.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Order statuses as persisted in the store.
const (
	StatusPlaced         = "Placed"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
)

// ReturnWindowDays is how long after the order date a delivered order stays
// eligible for returns.
const ReturnWindowDays = 30

// Item is one order line.
type Item struct {
	ProductID   string
	ProductName string
	Quantity    int
	ItemPrice   float64
}

// Order is an orders row plus its line items.
type Order struct {
	ID           string
	CustomerID   string
	Status       string
	OrderDate    string
	TotalAmount  float64
	DeliveryDate string
	Items        []Item
}

// Outcome is the result of a business-rule-checked mutation. Message is
// always suitable to read back to the caller verbatim.
type Outcome struct {
	OK      bool
	Message string
}

// Manager handles order lookups and policy-aware mutations.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, logger: logger, now: time.Now}
}

// SetNow overrides the clock, for tests.
func (m *Manager) SetNow(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

// orderDateLayout is the calendar form dates take in caller-facing messages
// and in the Order struct. The columns are declared DATE, so the driver
// hands them back as time.Time; scanning into strings would yield RFC3339.
const orderDateLayout = "2006-01-02"

func scanOrder(scan func(dest ...any) error) (Order, error) {
	var o Order
	var orderDate time.Time
	var deliveryDate sql.NullTime
	if err := scan(&o.ID, &o.CustomerID, &o.Status, &orderDate, &o.TotalAmount, &deliveryDate); err != nil {
		return Order{}, err
	}
	o.OrderDate = orderDate.Format(orderDateLayout)
	if deliveryDate.Valid {
		o.DeliveryDate = deliveryDate.Time.Format(orderDateLayout)
	}
	return o, nil
}

// GetOrder returns an order with its items, or sql.ErrNoRows.
func (m *Manager) GetOrder(ctx context.Context, orderID string) (Order, error) {
	row := m.db.QueryRowContext(ctx,
		"SELECT order_id, customer_id, order_status, order_date, COALESCE(total_amount, 0), delivery_date FROM orders WHERE order_id = ?",
		orderID)

	o, err := scanOrder(row.Scan)
	if err != nil {
		return Order{}, err
	}

	items, err := m.orderItems(ctx, o.ID)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

// CustomerOrders returns the customer's most recent orders, newest first.
func (m *Manager) CustomerOrders(ctx context.Context, customerID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := m.db.QueryContext(ctx,
		"SELECT order_id, customer_id, order_status, order_date, COALESCE(total_amount, 0), delivery_date FROM orders WHERE customer_id = ? ORDER BY order_date DESC LIMIT ?",
		customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("customer orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := m.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

// AllOrders returns recent orders across all customers, for the dashboard.
func (m *Manager) AllOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := m.db.QueryContext(ctx,
		"SELECT order_id, customer_id, order_status, order_date, COALESCE(total_amount, 0), delivery_date FROM orders ORDER BY order_date DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("all orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// CancelOrder cancels an order when its status allows it. Only "Placed"
// orders may transition to "Cancelled".
func (m *Manager) CancelOrder(ctx context.Context, orderID, reason string) (Outcome, error) {
	order, err := m.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Outcome{Message: fmt.Sprintf("Order %s not found. Please verify the Order ID.", orderID)}, nil
		}
		return Outcome{}, err
	}

	if order.Status != StatusPlaced {
		return Outcome{Message: fmt.Sprintf(
			"Order %s cannot be cancelled because it has status '%s'. Only orders with status 'Placed' can be cancelled. You can initiate a return once the order is delivered.",
			orderID, order.Status)}, nil
	}

	if _, err := m.db.ExecContext(ctx, "UPDATE orders SET order_status = ? WHERE order_id = ?", StatusCancelled, orderID); err != nil {
		m.logger.Error("cancel order failed", "order_id", orderID, "error", err)
		return Outcome{Message: "Failed to cancel order due to a system error. Please try again."}, nil
	}

	return Outcome{OK: true, Message: fmt.Sprintf("Order %s has been successfully cancelled. Reason: %s", orderID, reason)}, nil
}

// InitiateReturn checks every return condition and reports the first one that
// fails: order exists, status Delivered, within the return window, product on
// the order, product return-eligible.
func (m *Manager) InitiateReturn(ctx context.Context, orderID, productID, reason string) (Outcome, error) {
	order, err := m.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Outcome{Message: fmt.Sprintf("Order %s not found. Please verify the Order ID.", orderID)}, nil
		}
		return Outcome{}, err
	}

	if order.Status != StatusDelivered {
		return Outcome{Message: fmt.Sprintf(
			"Returns can only be initiated for delivered orders. Your order status is '%s'.", order.Status)}, nil
	}

	if !m.withinReturnWindow(order.OrderDate) {
		return Outcome{Message: fmt.Sprintf(
			"Return window has expired. Returns must be initiated within %d days of delivery. Your order was placed on %s.",
			ReturnWindowDays, order.OrderDate)}, nil
	}

	onOrder := false
	for _, item := range order.Items {
		if item.ProductID == productID {
			onOrder = true
			break
		}
	}
	if !onOrder {
		return Outcome{Message: fmt.Sprintf("Product %s was not found in order %s.", productID, orderID)}, nil
	}

	var returnEligible bool
	var productName string
	row := m.db.QueryRowContext(ctx, "SELECT COALESCE(return_eligible, 0), product_name FROM products WHERE product_id = ?", productID)
	if err := row.Scan(&returnEligible, &productName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Outcome{Message: fmt.Sprintf("Product %s not found in catalog.", productID)}, nil
		}
		return Outcome{}, err
	}

	if !returnEligible {
		return Outcome{Message: fmt.Sprintf(
			"%s is not eligible for return due to hygiene and safety reasons (personal care, consumables, or digital downloads).",
			productName)}, nil
	}

	return Outcome{OK: true, Message: fmt.Sprintf(
		"Return initiated for %s from order %s. Reason: %s. You will receive a return authorization email with shipping instructions. Refund will be processed within 7-10 business days after the item passes inspection.",
		productName, orderID, reason)}, nil
}

func (m *Manager) withinReturnWindow(orderDate string) bool {
	placed, err := time.Parse(orderDateLayout, orderDate)
	if err != nil {
		return false
	}
	days := int(m.now().Sub(placed).Hours() / 24)
	return days <= ReturnWindowDays
}

func (m *Manager) orderItems(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT product_id, product_name, COALESCE(quantity, 1), COALESCE(item_price, 0) FROM order_items WHERE order_id = ?",
		orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.ItemPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
