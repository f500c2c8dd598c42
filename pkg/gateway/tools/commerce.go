package tools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voicecart/voicecart/pkg/commerce/cart"
	"github.com/voicecart/voicecart/pkg/commerce/catalog"
	"github.com/voicecart/voicecart/pkg/commerce/faq"
	"github.com/voicecart/voicecart/pkg/commerce/orders"
	"github.com/voicecart/voicecart/pkg/commerce/session"
)

// CommerceDeps are the per-session dependencies the tool handlers close
// over. Catalog, Orders and FAQs are shared process-wide; Cart and Call are
// scoped to one voice session.
type CommerceDeps struct {
	Catalog *catalog.Manager
	Orders  *orders.Manager
	FAQs    *faq.Manager
	Cart    *cart.Cart
	Call    *session.Context
	Logger  *slog.Logger

	// CallTimeout bounds each tool invocation.
	CallTimeout time.Duration
}

// NewCommerceRegistry wires every tool the voice agent can call. The
// returned registry passes Validate.
func NewCommerceRegistry(deps CommerceDeps) *Registry {
	r := NewRegistry(deps.Logger, deps.CallTimeout)
	decls := declarationsByName()

	register := func(name string, kind Kind, handler Handler) {
		r.Register(name, Entry{Handler: handler, Kind: kind, Declaration: decls[name]})
	}

	register("search_products_by_name", KindReadOnly, deps.searchProductsByName)
	register("search_products_by_category", KindReadOnly, deps.searchProductsByCategory)
	register("get_product_details", KindReadOnly, deps.getProductDetails)
	register("check_product_availability", KindReadOnly, deps.checkProductAvailability)
	register("get_product_faqs", KindReadOnly, deps.getProductFAQs)
	register("track_order", KindReadOnly, deps.trackOrder)
	register("get_customer_orders", KindReadOnly, deps.getCustomerOrders)
	register("get_order_details", KindReadOnly, deps.trackOrder)
	register("cancel_order", KindStateModifying, deps.cancelOrder)
	register("initiate_return", KindStateModifying, deps.initiateReturn)
	register("search_faqs", KindReadOnly, deps.searchFAQs)
	register("get_all_categories", KindReadOnly, deps.getAllCategories)

	register("add_to_cart", KindStateModifying, deps.addToCart)
	register("remove_from_cart", KindStateModifying, deps.removeFromCart)
	register("update_cart_quantity", KindStateModifying, deps.updateCartQuantity)
	register("update_cart_addons", KindStateModifying, deps.updateCartAddons)
	register("get_cart_summary", KindReadOnly, deps.getCartSummary)
	register("get_cart_total", KindReadOnly, deps.getCartTotal)

	return r
}

func (d CommerceDeps) searchProductsByName(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	limit := intArg(args, "limit", 5)

	products, err := d.Catalog.SearchByName(ctx, query, limit)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return fmt.Sprintf("No products found matching '%s'. Please try a different search term or browse by category.", query), nil
	}

	if d.Call != nil {
		for _, p := range topProducts(products, 3) {
			d.Call.RecordSearch(p.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d product(s) matching '%s':\n", len(products), query)
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. %s (%s)\n   Price: $%.2f | Rating: %.1f/5.0 (%d reviews)\n   Stock: %s | Product ID: %s",
			i+1, p.Name, p.Category, p.Price, p.Rating, p.ReviewCount, stockStatus(p.StockAvailable), p.ID)
	}
	return b.String(), nil
}

func (d CommerceDeps) searchProductsByCategory(ctx context.Context, args map[string]any) (string, error) {
	category := stringArg(args, "category")
	limit := intArg(args, "limit", 10)

	var priceMin, priceMax *float64
	if v, ok := floatArg(args, "price_min"); ok {
		priceMin = &v
	}
	if v, ok := floatArg(args, "price_max"); ok {
		priceMax = &v
	}

	products, err := d.Catalog.SearchByCategory(ctx, category, priceMin, priceMax, limit)
	if err != nil {
		return "", err
	}

	// Optional name filter within the category.
	if query := stringArg(args, "query"); query != "" {
		filtered := products[:0]
		lower := strings.ToLower(query)
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), lower) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	if len(products) == 0 {
		return fmt.Sprintf("No products found in category '%s'%s. Try a different category or price range.",
			category, priceRangeSuffix(priceMin, priceMax)), nil
	}

	if d.Call != nil {
		for _, p := range topProducts(products, 3) {
			d.Call.RecordSearch(p.Name)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d product(s) in '%s'%s:\n", len(products), category, priceFilterSuffix(priceMin, priceMax))
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. %s\n   Price: $%.2f | Rating: %.1f/5.0\n   %s | Product ID: %s",
			i+1, p.Name, p.Price, p.Rating, stockStatus(p.StockAvailable), p.ID)
	}
	return b.String(), nil
}

func (d CommerceDeps) getProductDetails(ctx context.Context, args map[string]any) (string, error) {
	productID := stringArg(args, "product_id")

	p, err := d.Catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Sprintf("Product %s not found. Please verify the Product ID.", productID), nil
		}
		return "", err
	}

	if d.Call != nil {
		d.Call.RecordSearch(p.Name)
	}

	stock := stockStatus(p.StockAvailable)
	if p.StockAvailable > 0 && p.StockAvailable < 5 {
		stock = fmt.Sprintf("Low stock (%d units remaining)", p.StockAvailable)
	}

	discount := ""
	if p.DiscountPercentage > 0 {
		discount = fmt.Sprintf("\n• Discount: %d%% off", p.DiscountPercentage)
	}

	returnInfo := "Not eligible for return (hygiene/safety reasons)"
	if p.ReturnEligible {
		returnInfo = "Eligible for return"
	}

	return fmt.Sprintf(
		"Product Details for %s:\n• Category: %s\n• Price: $%.2f%s\n• Rating: %.1f/5.0 (%d customer reviews)\n• Stock Status: %s\n• Delivery Time: %d days\n• Return Policy: %s\n• Description: %s\n• Product ID: %s",
		p.Name, p.Category, p.Price, discount, p.Rating, p.ReviewCount, stock, p.DeliveryTimeDays, returnInfo, p.Description, p.ID), nil
}

func (d CommerceDeps) checkProductAvailability(ctx context.Context, args map[string]any) (string, error) {
	availability, err := d.Catalog.CheckAvailability(ctx, stringArg(args, "product_id"))
	if err != nil {
		return "", err
	}
	return availability.Message, nil
}

func (d CommerceDeps) getProductFAQs(ctx context.Context, args map[string]any) (string, error) {
	productID := stringArg(args, "product_id")

	faqs, err := d.FAQs.ProductFAQs(ctx, productID)
	if err != nil {
		return "", err
	}
	if len(faqs) == 0 {
		return fmt.Sprintf("No FAQs available for product %s.", productID), nil
	}

	productName := productID
	if p, err := d.Catalog.GetProduct(ctx, productID); err == nil {
		productName = p.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FAQs for %s:\n", productName)
	for i, entry := range faqs {
		fmt.Fprintf(&b, "\n%d. Q: %s\n   A: %s\n", i+1, entry.Question, entry.Answer)
	}
	return b.String(), nil
}

func (d CommerceDeps) trackOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID := stringArg(args, "order_id")

	order, err := d.Orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Sprintf("Order %s not found. Please verify your Order ID or try searching by Customer ID.", orderID), nil
		}
		return "", err
	}

	if d.Call != nil {
		d.Call.RecordOrderLookup(orderID)
		d.Call.SetCustomerID(order.CustomerID)
	}

	var items strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&items, "\n  - %s (Quantity: %d)", item.ProductName, item.Quantity)
	}

	delivery := ""
	if order.DeliveryDate != "" {
		delivery = fmt.Sprintf("\n• Expected Delivery: %s", order.DeliveryDate)
	}

	return fmt.Sprintf(
		"Order Status for %s:\n• Status: %s\n• Order Date: %s%s\n• Total Amount: $%.2f\n• Customer ID: %s\n\nItems Ordered:%s",
		orderID, order.Status, order.OrderDate, delivery, order.TotalAmount, order.CustomerID, items.String()), nil
}

func (d CommerceDeps) getCustomerOrders(ctx context.Context, args map[string]any) (string, error) {
	customerID := stringArg(args, "customer_id")
	limit := intArg(args, "limit", 5)

	customerOrders, err := d.Orders.CustomerOrders(ctx, customerID, limit)
	if err != nil {
		return "", err
	}
	if len(customerOrders) == 0 {
		return fmt.Sprintf("No orders found for Customer %s.", customerID), nil
	}

	if d.Call != nil {
		d.Call.SetCustomerID(customerID)
		for i, order := range customerOrders {
			if i == 3 {
				break
			}
			d.Call.RecordOrderLookup(order.ID)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recent orders for Customer %s:\n", customerID)
	for i, order := range customerOrders {
		preview := fmt.Sprintf("%d items", len(order.Items))
		if len(order.Items) == 1 {
			preview = order.Items[0].ProductName
		}
		fmt.Fprintf(&b, "\n%d. Order %s\n   Status: %s | Date: %s\n   Total: $%.2f | Items: %s",
			i+1, order.ID, order.Status, order.OrderDate, order.TotalAmount, preview)
	}
	return b.String(), nil
}

func (d CommerceDeps) cancelOrder(ctx context.Context, args map[string]any) (string, error) {
	orderID := stringArg(args, "order_id")

	outcome, err := d.Orders.CancelOrder(ctx, orderID, stringArg(args, "reason"))
	if err != nil {
		return "", err
	}
	if outcome.OK && d.Call != nil {
		d.Call.RecordOrderLookup(orderID)
	}
	return outcome.Message, nil
}

func (d CommerceDeps) initiateReturn(ctx context.Context, args map[string]any) (string, error) {
	orderID := stringArg(args, "order_id")

	outcome, err := d.Orders.InitiateReturn(ctx, orderID, stringArg(args, "product_id"), stringArg(args, "reason"))
	if err != nil {
		return "", err
	}
	if outcome.OK && d.Call != nil {
		d.Call.RecordOrderLookup(orderID)
	}
	return outcome.Message, nil
}

func (d CommerceDeps) searchFAQs(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")

	faqs, err := d.FAQs.SearchAll(ctx, query, intArg(args, "limit", 5))
	if err != nil {
		return "", err
	}
	if len(faqs) == 0 {
		return fmt.Sprintf("No FAQs found matching '%s'. Please try different keywords.", query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d FAQ(s) matching '%s':\n", len(faqs), query)
	for i, entry := range faqs {
		fmt.Fprintf(&b, "\n%d. Product: %s\n   Q: %s\n   A: %s\n", i+1, entry.ProductName, entry.Question, entry.Answer)
	}
	return b.String(), nil
}

func (d CommerceDeps) getAllCategories(ctx context.Context, _ map[string]any) (string, error) {
	categories, err := d.Catalog.Categories(ctx)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(categories))
	for _, category := range categories {
		lines = append(lines, "• "+category)
	}
	return "Available product categories:\n" + strings.Join(lines, "\n"), nil
}

func (d CommerceDeps) addToCart(ctx context.Context, args map[string]any) (string, error) {
	itemName := stringArg(args, "item_name")
	quantity := intArg(args, "quantity", 1)
	addons := stringListArg(args, "addons")

	line, merged, err := d.Cart.AddItem(ctx, itemName, quantity, addons)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			return fmt.Sprintf("'%s' is not in our catalog.", itemName), nil
		}
		return "", err
	}
	if merged {
		return fmt.Sprintf("Updated %s quantity to %d", line.Name, line.Quantity), nil
	}
	return fmt.Sprintf("Added %dx %s to your order", line.Quantity, line.Name), nil
}

func (d CommerceDeps) removeFromCart(_ context.Context, args map[string]any) (string, error) {
	itemName := stringArg(args, "item_name")

	line, err := d.Cart.RemoveItem(itemName)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotInCart) {
			return fmt.Sprintf("'%s' is not in your order", itemName), nil
		}
		return "", err
	}
	return fmt.Sprintf("Removed %s from your order", line.Name), nil
}

func (d CommerceDeps) updateCartQuantity(_ context.Context, args map[string]any) (string, error) {
	itemName := stringArg(args, "item_name")
	if _, ok := args["quantity"]; !ok {
		// Declared required; guessing a quantity here would mutate the order.
		return fmt.Sprintf("A quantity is required to update '%s'.", itemName), nil
	}
	quantity := intArg(args, "quantity", 1)

	line, err := d.Cart.UpdateQuantity(itemName, quantity)
	if err != nil {
		if errors.Is(err, cart.ErrItemNotInCart) {
			return fmt.Sprintf("'%s' is not in your order", itemName), nil
		}
		return "", err
	}
	if quantity == 0 {
		return fmt.Sprintf("Removed %s from your order", line.Name), nil
	}
	return fmt.Sprintf("Updated %s quantity to %d", line.Name, quantity), nil
}

func (d CommerceDeps) updateCartAddons(_ context.Context, args map[string]any) (string, error) {
	itemName := stringArg(args, "item_name")

	line, err := d.Cart.UpdateAddons(itemName, stringListArg(args, "addons"))
	if err != nil {
		if errors.Is(err, cart.ErrItemNotInCart) {
			return fmt.Sprintf("'%s' is not in your order. Add it first.", itemName), nil
		}
		return "", err
	}
	addonsText := "no addons"
	if len(line.Addons) > 0 {
		addonsText = strings.Join(line.Addons, ", ")
	}
	return fmt.Sprintf("Updated %s with addons: %s", line.Name, addonsText), nil
}

func (d CommerceDeps) getCartSummary(_ context.Context, args map[string]any) (string, error) {
	return d.Cart.Summary(boolArg(args, "include_prices")), nil
}

func (d CommerceDeps) getCartTotal(_ context.Context, _ map[string]any) (string, error) {
	if d.Cart.IsEmpty() {
		return "Your order is currently empty.", nil
	}
	return fmt.Sprintf("Your current total is $%.2f", d.Cart.Total()), nil
}

func stockStatus(stock int) string {
	if stock > 0 {
		return "In stock"
	}
	return "Out of stock"
}

func topProducts(products []catalog.Product, n int) []catalog.Product {
	if len(products) < n {
		return products
	}
	return products[:n]
}

func priceRangeSuffix(priceMin, priceMax *float64) string {
	switch {
	case priceMin != nil && priceMax != nil:
		return fmt.Sprintf(" in price range $%.2f - $%.2f", *priceMin, *priceMax)
	case priceMin != nil:
		return fmt.Sprintf(" above $%.2f", *priceMin)
	case priceMax != nil:
		return fmt.Sprintf(" below $%.2f", *priceMax)
	default:
		return ""
	}
}

func priceFilterSuffix(priceMin, priceMax *float64) string {
	switch {
	case priceMin != nil && priceMax != nil:
		return fmt.Sprintf(" ($%.2f - $%.2f)", *priceMin, *priceMax)
	case priceMin != nil:
		return fmt.Sprintf(" (above $%.2f)", *priceMin)
	case priceMax != nil:
		return fmt.Sprintf(" (below $%.2f)", *priceMax)
	default:
		return ""
	}
}
