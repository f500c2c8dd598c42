// Package catalog provides read access to the product catalog, including the
// tiered name matching the cart relies on before accepting an item.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/voicecart/voicecart/internal/fuzzy"
)

// FuzzyMatchThreshold is the floor below which a fuzzy candidate is never
// accepted when validating a cart item.
const FuzzyMatchThreshold = 0.75

// Product is a row from the products table.
type Product struct {
	ID                 string
	Name               string
	Category           string
	Price              float64
	StockAvailable     int
	Rating             float64
	ReviewCount        int
	Description        string
	DiscountPercentage int
	ReturnEligible     bool
	DeliveryTimeDays   int
	MatchScore         float64
}

// Availability reports stock state for one product.
type Availability struct {
	Available bool
	Stock     int
	Message   string
}

// Manager answers catalog queries against the store.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, logger: logger}
}

// SearchByName fuzzy-matches query against every product name and returns the
// full rows for the top matches.
func (m *Manager) SearchByName(ctx context.Context, query string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 5
	}

	ids, names, err := m.allProductNames(ctx)
	if err != nil {
		return nil, err
	}

	matches := fuzzy.Match(query, names, 0.6, limit)
	if len(matches) == 0 {
		return nil, nil
	}

	results := make([]Product, 0, len(matches))
	for _, match := range matches {
		product, err := m.GetProduct(ctx, ids[match.Index])
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		product.MatchScore = match.Score
		results = append(results, product)
	}
	return results, nil
}

// SearchByCategory filters by exact category with optional price bounds,
// best-rated first.
func (m *Manager) SearchByCategory(ctx context.Context, category string, priceMin, priceMax *float64, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 10
	}

	q := "SELECT " + productColumns + " FROM products WHERE category = ?"
	args := []any{category}
	if priceMin != nil {
		q += " AND price >= ?"
		args = append(args, *priceMin)
	}
	if priceMax != nil {
		q += " AND price <= ?"
		args = append(args, *priceMax)
	}
	q += " ORDER BY rating DESC, review_count DESC LIMIT ?"
	args = append(args, limit)

	rows, err := m.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search by category: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// GetProduct returns one product by id. sql.ErrNoRows when absent.
func (m *Manager) GetProduct(ctx context.Context, productID string) (Product, error) {
	row := m.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE product_id = ?", productID)
	return scanProduct(row)
}

// CheckAvailability translates stock count into the caller-facing message.
func (m *Manager) CheckAvailability(ctx context.Context, productID string) (Availability, error) {
	product, err := m.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Availability{Message: "Product not found"}, nil
		}
		return Availability{}, err
	}

	switch {
	case product.StockAvailable == 0:
		return Availability{Available: false, Stock: 0, Message: "Out of stock"}, nil
	case product.StockAvailable < 5:
		return Availability{
			Available: true,
			Stock:     product.StockAvailable,
			Message:   fmt.Sprintf("Low stock (%d units remaining)", product.StockAvailable),
		}, nil
	default:
		return Availability{Available: true, Stock: product.StockAvailable, Message: "In stock"}, nil
	}
}

// Categories lists distinct categories alphabetically.
func (m *Manager) Categories(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT DISTINCT category FROM products ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// MatchItem resolves a spoken item name to a catalog product using tiered
// matching: exact case-insensitive, then substring containment in either
// direction, then fuzzy similarity at or above FuzzyMatchThreshold. The
// cheaper tiers run first so a close fuzzy candidate can never shadow an
// exact hit. Returns false when no tier matches.
func (m *Manager) MatchItem(ctx context.Context, itemName string) (Product, bool, error) {
	target := strings.ToLower(strings.TrimSpace(itemName))
	if target == "" {
		return Product{}, false, nil
	}

	ids, names, err := m.allProductNames(ctx)
	if err != nil {
		return Product{}, false, err
	}

	resolve := func(idx int) (Product, bool, error) {
		product, err := m.GetProduct(ctx, ids[idx])
		if err != nil {
			return Product{}, false, err
		}
		return product, true, nil
	}

	for i, name := range names {
		if strings.ToLower(name) == target {
			return resolve(i)
		}
	}

	for i, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, target) || strings.Contains(target, lower) {
			return resolve(i)
		}
	}

	bestIdx := -1
	bestScore := 0.0
	for i, name := range names {
		score := fuzzy.Similarity(target, name)
		if score >= FuzzyMatchThreshold && score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		return resolve(bestIdx)
	}

	return Product{}, false, nil
}

func (m *Manager) allProductNames(ctx context.Context) (ids, names []string, err error) {
	rows, err := m.db.QueryContext(ctx, "SELECT product_id, product_name FROM products")
	if err != nil {
		return nil, nil, fmt.Errorf("load product names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		names = append(names, name)
	}
	return ids, names, rows.Err()
}

const productColumns = "product_id, product_name, category, price, stock_available, " +
	"COALESCE(rating, 0), COALESCE(review_count, 0), COALESCE(description, ''), " +
	"COALESCE(discount_percentage, 0), COALESCE(return_eligible, 0), COALESCE(delivery_time_days, 0)"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.StockAvailable,
		&p.Rating, &p.ReviewCount, &p.Description, &p.DiscountPercentage,
		&p.ReturnEligible, &p.DeliveryTimeDays)
	return p, err
}
