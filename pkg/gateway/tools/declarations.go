package tools

import "google.golang.org/genai"

// Tool descriptions stress mandatory use: without it the model narrates
// lookups instead of calling the tools.

func declarationsByName() map[string]*genai.FunctionDeclaration {
	decls := []*genai.FunctionDeclaration{
		{
			Name:        "search_products_by_name",
			Description: "MANDATORY: Search for products by name using fuzzy matching. Call this when customer searches for a product.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "Product name or search term"},
					"limit": {Type: genai.TypeInteger, Description: "Maximum number of results (default 5)"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "search_products_by_category",
			Description: "MANDATORY: Search products by category with optional price filtering. Use exact category names: Electronics, Clothing, Home & Kitchen, Beauty & Personal Care, Sports & Fitness.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"category":  {Type: genai.TypeString, Description: "Product category"},
					"price_min": {Type: genai.TypeNumber, Description: "Minimum price (optional)"},
					"price_max": {Type: genai.TypeNumber, Description: "Maximum price (optional)"},
					"query":     {Type: genai.TypeString, Description: "Optional search term within category"},
					"limit":     {Type: genai.TypeInteger, Description: "Maximum results (default 10)"},
				},
				Required: []string{"category"},
			},
		},
		{
			Name:        "get_product_details",
			Description: "MANDATORY: Get detailed information about a specific product. Call this when customer asks about a product.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeString, Description: "Product ID (e.g., P1001)"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "check_product_availability",
			Description: "MANDATORY: Check if a product is in stock.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeString, Description: "Product ID"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "get_product_faqs",
			Description: "MANDATORY: Get frequently asked questions for a specific product.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeString, Description: "Product ID"},
				},
				Required: []string{"product_id"},
			},
		},
		{
			Name:        "track_order",
			Description: "MANDATORY: Track an order by Order ID. Call this when customer asks about order status.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"order_id": {Type: genai.TypeString, Description: "Order ID (e.g., O0001)"},
				},
				Required: []string{"order_id"},
			},
		},
		{
			Name:        "get_customer_orders",
			Description: "MANDATORY: Get recent orders for a customer by Customer ID.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"customer_id": {Type: genai.TypeString, Description: "Customer ID (e.g., C0001)"},
					"limit":       {Type: genai.TypeInteger, Description: "Number of recent orders (default 5)"},
				},
				Required: []string{"customer_id"},
			},
		},
		{
			Name:        "get_order_details",
			Description: "MANDATORY: Get detailed information about an order.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"order_id": {Type: genai.TypeString, Description: "Order ID"},
				},
				Required: []string{"order_id"},
			},
		},
		{
			Name:        "cancel_order",
			Description: "MANDATORY: Cancel an order (policy-aware). The tool checks if cancellation is allowed based on order status.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"order_id": {Type: genai.TypeString, Description: "Order ID to cancel"},
					"reason":   {Type: genai.TypeString, Description: "Reason for cancellation"},
				},
				Required: []string{"order_id", "reason"},
			},
		},
		{
			Name:        "initiate_return",
			Description: "MANDATORY: Initiate return for a product (policy-aware). The tool checks return eligibility and window.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"order_id":   {Type: genai.TypeString, Description: "Order ID"},
					"product_id": {Type: genai.TypeString, Description: "Product ID to return"},
					"reason":     {Type: genai.TypeString, Description: "Reason for return"},
				},
				Required: []string{"order_id", "product_id", "reason"},
			},
		},
		{
			Name:        "search_faqs",
			Description: "MANDATORY: Search across all product FAQs.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {Type: genai.TypeString, Description: "Search query"},
					"limit": {Type: genai.TypeInteger, Description: "Maximum results (default 5)"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "get_all_categories",
			Description: "Get list of all available product categories.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
		{
			Name:        "add_to_cart",
			Description: "MANDATORY: Add an item to the customer's order. Call this whenever the customer asks to add something.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"item_name": {Type: genai.TypeString, Description: "Product name as the customer said it"},
					"quantity":  {Type: genai.TypeInteger, Description: "Quantity to add (default 1)"},
					"addons": {
						Type:        genai.TypeArray,
						Description: "Optional addon labels for this item",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"item_name"},
			},
		},
		{
			Name:        "remove_from_cart",
			Description: "MANDATORY: Remove an item from the customer's order.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"item_name": {Type: genai.TypeString, Description: "Name of the item to remove"},
				},
				Required: []string{"item_name"},
			},
		},
		{
			Name:        "update_cart_quantity",
			Description: "MANDATORY: Change the quantity of an item already in the order. Quantity 0 removes the item.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"item_name": {Type: genai.TypeString, Description: "Name of the item to update"},
					"quantity":  {Type: genai.TypeInteger, Description: "New quantity (0 removes the item)"},
				},
				Required: []string{"item_name", "quantity"},
			},
		},
		{
			Name:        "update_cart_addons",
			Description: "MANDATORY: Add addon labels to an item already in the order.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"item_name": {Type: genai.TypeString, Description: "Name of the item to update"},
					"addons": {
						Type:        genai.TypeArray,
						Description: "Addon labels to add",
						Items:       &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"item_name", "addons"},
			},
		},
		{
			Name:        "get_cart_summary",
			Description: "Get a readable summary of the customer's current order.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"include_prices": {Type: genai.TypeBoolean, Description: "Include per-line and total prices"},
				},
			},
		},
		{
			Name:        "get_cart_total",
			Description: "Get the current order total.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
		},
	}

	byName := make(map[string]*genai.FunctionDeclaration, len(decls))
	for _, d := range decls {
		byName[d.Name] = d
	}
	return byName
}
