package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/voicecart/voicecart/pkg/commerce/store"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	products := []struct {
		id, name, category string
		price              float64
		stock              int
		rating             float64
		reviews            int
	}{
		{"P001", "Wireless Headphones", "Electronics", 79.99, 12, 4.5, 230},
		{"P002", "Wired Headphones", "Electronics", 19.99, 0, 4.1, 85},
		{"P003", "Bluetooth Speaker", "Electronics", 49.99, 3, 4.7, 310},
		{"P004", "Yoga Mat", "Sports", 24.99, 40, 4.3, 120},
	}
	for _, p := range products {
		_, err := db.ExecContext(ctx,
			"INSERT INTO products (product_id, product_name, category, price, stock_available, rating, review_count, return_eligible) VALUES (?, ?, ?, ?, ?, ?, ?, 1)",
			p.id, p.name, p.category, p.price, p.stock, p.rating, p.reviews)
		if err != nil {
			t.Fatalf("seed %s: %v", p.id, err)
		}
	}
	return db
}

func TestSearchByName(t *testing.T) {
	t.Parallel()
	m := NewManager(openSeeded(t), nil)

	results, err := m.SearchByName(context.Background(), "wireless headphones", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("no results")
	}
	if results[0].ID != "P001" {
		t.Fatalf("top result = %s, want P001", results[0].ID)
	}
	if results[0].MatchScore <= 0 {
		t.Fatalf("match score not populated: %v", results[0].MatchScore)
	}
}

func TestSearchByCategoryPriceBounds(t *testing.T) {
	t.Parallel()
	m := NewManager(openSeeded(t), nil)
	ctx := context.Background()

	all, err := m.SearchByCategory(ctx, "Electronics", nil, nil, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("results = %d, want 3", len(all))
	}
	// Best rated first.
	if all[0].ID != "P003" {
		t.Fatalf("top rated = %s, want P003", all[0].ID)
	}

	maxPrice := 30.0
	cheap, err := m.SearchByCategory(ctx, "Electronics", nil, &maxPrice, 10)
	if err != nil {
		t.Fatalf("bounded search: %v", err)
	}
	if len(cheap) != 1 || cheap[0].ID != "P002" {
		t.Fatalf("bounded results = %+v, want only P002", cheap)
	}
}

func TestGetProductMissing(t *testing.T) {
	t.Parallel()
	m := NewManager(openSeeded(t), nil)

	_, err := m.GetProduct(context.Background(), "P999")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	t.Parallel()
	m := NewManager(openSeeded(t), nil)
	ctx := context.Background()

	cases := []struct {
		productID string
		available bool
		message   string
	}{
		{"P001", true, "In stock"},
		{"P002", false, "Out of stock"},
		{"P003", true, "Low stock (3 units remaining)"},
		{"P999", false, "Product not found"},
	}
	for _, tc := range cases {
		got, err := m.CheckAvailability(ctx, tc.productID)
		if err != nil {
			t.Fatalf("%s: %v", tc.productID, err)
		}
		if got.Available != tc.available || got.Message != tc.message {
			t.Fatalf("%s: got %+v, want available=%v message=%q", tc.productID, got, tc.available, tc.message)
		}
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()
	m := NewManager(openSeeded(t), nil)

	categories, err := m.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0] != "Electronics" || categories[1] != "Sports" {
		t.Fatalf("categories = %v", categories)
	}
}

func TestMatchItemTiers(t *testing.T) {
	t.Parallel()
	m := NewManager(openSeeded(t), nil)
	ctx := context.Background()

	// Exact, case-insensitive.
	p, ok, err := m.MatchItem(ctx, "wireless headphones")
	if err != nil || !ok || p.ID != "P001" {
		t.Fatalf("exact match: %+v ok=%v err=%v", p, ok, err)
	}

	// Substring in either direction.
	p, ok, err = m.MatchItem(ctx, "speaker")
	if err != nil || !ok || p.ID != "P003" {
		t.Fatalf("substring match: %+v ok=%v err=%v", p, ok, err)
	}

	// Fuzzy tier tolerates a typo.
	p, ok, err = m.MatchItem(ctx, "yoga met")
	if err != nil || !ok || p.ID != "P004" {
		t.Fatalf("fuzzy match: %+v ok=%v err=%v", p, ok, err)
	}

	// Nothing close enough.
	_, ok, err = m.MatchItem(ctx, "lawnmower")
	if err != nil {
		t.Fatalf("no-match err: %v", err)
	}
	if ok {
		t.Fatalf("matched an item that is not in the catalog")
	}

	// Blank input.
	_, ok, err = m.MatchItem(ctx, "   ")
	if err != nil || ok {
		t.Fatalf("blank input: ok=%v err=%v", ok, err)
	}
}
