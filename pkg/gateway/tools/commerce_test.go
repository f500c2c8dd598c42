package tools

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voicecart/voicecart/pkg/commerce/cart"
	"github.com/voicecart/voicecart/pkg/commerce/catalog"
	"github.com/voicecart/voicecart/pkg/commerce/faq"
	"github.com/voicecart/voicecart/pkg/commerce/orders"
	"github.com/voicecart/voicecart/pkg/commerce/session"
	"github.com/voicecart/voicecart/pkg/commerce/store"
)

func newCommerceDeps(t *testing.T) CommerceDeps {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "tools.db"))
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

	exec("INSERT INTO products (product_id, product_name, category, price, stock_available, rating, review_count, description, return_eligible, delivery_time_days) VALUES ('P001', 'Wireless Headphones', 'Electronics', 79.99, 12, 4.5, 230, 'Over-ear wireless headphones.', 1, 3)")
	exec("INSERT INTO products (product_id, product_name, category, price, stock_available, rating, review_count, return_eligible) VALUES ('P002', 'Bluetooth Speaker', 'Electronics', 49.99, 0, 4.7, 310, 1)")
	exec("INSERT INTO orders (order_id, customer_id, order_status, order_date, total_amount, delivery_date) VALUES ('ORD001', 'CUST001', 'Placed', '2026-08-25', 79.99, '2026-09-02')")
	exec("INSERT INTO order_items (order_id, product_id, product_name, quantity, item_price) VALUES ('ORD001', 'P001', 'Wireless Headphones', 1, 79.99)")
	exec("INSERT INTO product_faqs (product_id, question, answer) VALUES ('P001', 'What is the battery life?', 'Up to 30 hours.')")

	catalogMgr := catalog.NewManager(db, nil)
	return CommerceDeps{
		Catalog: catalogMgr,
		Orders:  orders.NewManager(db, nil),
		FAQs:    faq.NewManager(db),
		Cart:    cart.New(&catalogMatcher{catalogMgr}),
		Call:    session.NewContext(""),
	}
}

// catalogMatcher adapts the catalog manager to the cart's Matcher interface.
type catalogMatcher struct {
	catalog *catalog.Manager
}

func (m *catalogMatcher) MatchItem(ctx context.Context, name string) (cart.CatalogItem, bool, error) {
	p, ok, err := m.catalog.MatchItem(ctx, name)
	if err != nil || !ok {
		return cart.CatalogItem{}, ok, err
	}
	return cart.CatalogItem{ID: p.ID, Name: p.Name, Price: p.Price}, true, nil
}

func dispatchOne(t *testing.T, r *Registry, name string, args map[string]any) string {
	t.Helper()
	results := r.Dispatch(context.Background(), []Call{{ID: "c1", Name: name, Args: args}})
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	return results[0].Output
}

func TestCommerceRegistryValidates(t *testing.T) {
	t.Parallel()
	r := NewCommerceRegistry(newCommerceDeps(t))

	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := len(r.Names()); got != 18 {
		t.Fatalf("registered tools = %d, want 18", got)
	}
	if got := len(r.Declarations()); got != 18 {
		t.Fatalf("declarations = %d, want 18", got)
	}
}

func TestSearchProductsByNameOutput(t *testing.T) {
	t.Parallel()
	deps := newCommerceDeps(t)
	r := NewCommerceRegistry(deps)

	out := dispatchOne(t, r, "search_products_by_name", map[string]any{"query": "wireless headphones"})
	for _, part := range []string{"product(s) matching 'wireless headphones'", "Wireless Headphones (Electronics)", "Price: $79.99", "Product ID: P001"} {
		if !strings.Contains(out, part) {
			t.Fatalf("output %q missing %q", out, part)
		}
	}
	if got := deps.Call.RecentSearches(); len(got) == 0 {
		t.Fatalf("search not recorded in call context")
	}

	out = dispatchOne(t, r, "search_products_by_name", map[string]any{"query": "zzzz"})
	if !strings.Contains(out, "No products found matching 'zzzz'") {
		t.Fatalf("output = %q", out)
	}
}

func TestProductDetailAndAvailabilityOutput(t *testing.T) {
	t.Parallel()
	r := NewCommerceRegistry(newCommerceDeps(t))

	out := dispatchOne(t, r, "get_product_details", map[string]any{"product_id": "P001"})
	for _, part := range []string{"Product Details for Wireless Headphones:", "• Category: Electronics", "• Return Policy: Eligible for return", "• Delivery Time: 3 days"} {
		if !strings.Contains(out, part) {
			t.Fatalf("output %q missing %q", out, part)
		}
	}

	out = dispatchOne(t, r, "get_product_details", map[string]any{"product_id": "P999"})
	if out != "Product P999 not found. Please verify the Product ID." {
		t.Fatalf("output = %q", out)
	}

	if out := dispatchOne(t, r, "check_product_availability", map[string]any{"product_id": "P002"}); out != "Out of stock" {
		t.Fatalf("availability = %q", out)
	}
}

func TestOrderToolsOutput(t *testing.T) {
	t.Parallel()
	deps := newCommerceDeps(t)
	r := NewCommerceRegistry(deps)

	out := dispatchOne(t, r, "track_order", map[string]any{"order_id": "ORD001"})
	for _, part := range []string{"Order Status for ORD001:", "• Status: Placed", "• Expected Delivery: 2026-09-02", "- Wireless Headphones (Quantity: 1)"} {
		if !strings.Contains(out, part) {
			t.Fatalf("output %q missing %q", out, part)
		}
	}
	if got := deps.Call.CustomerID(); got != "CUST001" {
		t.Fatalf("customer not identified from order: %q", got)
	}
	if _, ok := deps.Call.LastOrder(); !ok {
		t.Fatalf("order lookup not recorded")
	}

	out = dispatchOne(t, r, "get_customer_orders", map[string]any{"customer_id": "CUST001"})
	if !strings.Contains(out, "Recent orders for Customer CUST001:") || !strings.Contains(out, "Order ORD001") {
		t.Fatalf("output = %q", out)
	}

	out = dispatchOne(t, r, "cancel_order", map[string]any{"order_id": "ORD001", "reason": "too slow"})
	if !strings.Contains(out, "successfully cancelled") {
		t.Fatalf("cancel output = %q", out)
	}

	out = dispatchOne(t, r, "initiate_return", map[string]any{"order_id": "ORD001", "product_id": "P001", "reason": "defective"})
	if !strings.Contains(out, "delivered orders") {
		t.Fatalf("return output = %q", out)
	}
}

func TestFAQToolsOutput(t *testing.T) {
	t.Parallel()
	r := NewCommerceRegistry(newCommerceDeps(t))

	out := dispatchOne(t, r, "get_product_faqs", map[string]any{"product_id": "P001"})
	if !strings.Contains(out, "FAQs for Wireless Headphones:") || !strings.Contains(out, "Q: What is the battery life?") {
		t.Fatalf("output = %q", out)
	}

	if out := dispatchOne(t, r, "get_product_faqs", map[string]any{"product_id": "P002"}); out != "No FAQs available for product P002." {
		t.Fatalf("output = %q", out)
	}

	out = dispatchOne(t, r, "search_faqs", map[string]any{"query": "what is the battery life"})
	if !strings.Contains(out, "FAQ(s) matching") || !strings.Contains(out, "Product: Wireless Headphones") {
		t.Fatalf("output = %q", out)
	}

	out = dispatchOne(t, r, "get_all_categories", nil)
	if !strings.Contains(out, "Available product categories:\n• Electronics") {
		t.Fatalf("output = %q", out)
	}
}

func TestCartToolsFlow(t *testing.T) {
	t.Parallel()
	r := NewCommerceRegistry(newCommerceDeps(t))

	out := dispatchOne(t, r, "add_to_cart", map[string]any{"item_name": "wireless headphones", "quantity": float64(2)})
	if out != "Added 2x Wireless Headphones to your order" {
		t.Fatalf("add output = %q", out)
	}

	out = dispatchOne(t, r, "add_to_cart", map[string]any{"item_name": "Wireless Headphones"})
	if out != "Updated Wireless Headphones quantity to 3" {
		t.Fatalf("merge output = %q", out)
	}

	out = dispatchOne(t, r, "add_to_cart", map[string]any{"item_name": "submarine"})
	if out != "'submarine' is not in our catalog." {
		t.Fatalf("unknown item output = %q", out)
	}

	out = dispatchOne(t, r, "get_cart_summary", map[string]any{"include_prices": true})
	if !strings.Contains(out, "- 3x Wireless Headphones - $239.97") || !strings.Contains(out, "Total: $239.97") {
		t.Fatalf("summary = %q", out)
	}

	out = dispatchOne(t, r, "get_cart_total", nil)
	if out != "Your current total is $239.97" {
		t.Fatalf("total = %q", out)
	}

	out = dispatchOne(t, r, "update_cart_quantity", map[string]any{"item_name": "headphones", "quantity": float64(0)})
	if out != "Removed Wireless Headphones from your order" {
		t.Fatalf("zero quantity output = %q", out)
	}

	out = dispatchOne(t, r, "get_cart_total", nil)
	if out != "Your order is currently empty." {
		t.Fatalf("empty total = %q", out)
	}

	out = dispatchOne(t, r, "update_cart_addons", map[string]any{"item_name": "headphones", "addons": []any{"case"}})
	if out != "'headphones' is not in your order. Add it first." {
		t.Fatalf("addon output = %q", out)
	}
}

func TestUpdateCartQuantityRequiresQuantity(t *testing.T) {
	t.Parallel()
	r := NewCommerceRegistry(newCommerceDeps(t))

	out := dispatchOne(t, r, "add_to_cart", map[string]any{"item_name": "wireless headphones", "quantity": float64(2)})
	if out != "Added 2x Wireless Headphones to your order" {
		t.Fatalf("add output = %q", out)
	}

	// Leaving quantity out must not be read as "set it to 1".
	out = dispatchOne(t, r, "update_cart_quantity", map[string]any{"item_name": "headphones"})
	if out != "A quantity is required to update 'headphones'." {
		t.Fatalf("missing quantity output = %q", out)
	}

	out = dispatchOne(t, r, "get_cart_total", nil)
	if out != "Your current total is $159.98" {
		t.Fatalf("total after rejected update = %q", out)
	}
}
