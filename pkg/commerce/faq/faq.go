// Package faq looks up and searches product FAQs.
package faq

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/voicecart/voicecart/internal/fuzzy"
)

// Entry is a question/answer pair tied to a product.
type Entry struct {
	ProductID   string
	ProductName string
	Question    string
	Answer      string
	Relevance   float64
}

type Manager struct {
	db *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// ProductFAQs returns all FAQ entries for one product.
func (m *Manager) ProductFAQs(ctx context.Context, productID string) ([]Entry, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT question, answer FROM product_faqs WHERE product_id = ?", productID)
	if err != nil {
		return nil, fmt.Errorf("product faqs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry := Entry{ProductID: productID}
		if err := rows.Scan(&entry.Question, &entry.Answer); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// SearchAll fuzzy-scans every FAQ row, scoring against the concatenated
// question and answer text. A linear scan is enough at this table size; there
// is no precomputed index to keep in sync.
func (m *Manager) SearchAll(ctx context.Context, query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := m.db.QueryContext(ctx,
		"SELECT pf.product_id, p.product_name, pf.question, pf.answer FROM product_faqs pf JOIN products p ON pf.product_id = p.product_id")
	if err != nil {
		return nil, fmt.Errorf("search faqs: %w", err)
	}
	defer rows.Close()

	var all []Entry
	var texts []string
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ProductID, &entry.ProductName, &entry.Question, &entry.Answer); err != nil {
			return nil, err
		}
		all = append(all, entry)
		texts = append(texts, entry.Question+" "+entry.Answer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches := fuzzy.Match(query, texts, 0.5, limit)
	results := make([]Entry, 0, len(matches))
	for _, match := range matches {
		entry := all[match.Index]
		entry.Relevance = match.Score
		results = append(results, entry)
	}
	return results, nil
}
