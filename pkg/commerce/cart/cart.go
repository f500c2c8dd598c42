// Package cart holds the caller's in-progress order. A cart belongs to
// exactly one session; its own mutex is what keeps concurrent tool calls
// from interleaving mutations.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrItemNotFound means no catalog tier matched the requested name.
var ErrItemNotFound = errors.New("item not found in catalog")

// ErrItemNotInCart means the named line does not exist in the cart.
var ErrItemNotInCart = errors.New("item not in cart")

// Matcher resolves a spoken item name to a canonical catalog entry.
type Matcher interface {
	MatchItem(ctx context.Context, name string) (CatalogItem, bool, error)
}

// CatalogItem is the slice of a product the cart cares about.
type CatalogItem struct {
	ID    string
	Name  string
	Price float64
}

// Line is one cart entry. Quantity is always >= 1; a quantity update to zero
// removes the line instead.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice float64
	Addons    []string
}

// Cart is an insertion-ordered set of lines.
type Cart struct {
	mu      sync.Mutex
	matcher Matcher
	lines   []Line
}

func New(matcher Matcher) *Cart {
	return &Cart{matcher: matcher}
}

// AddItem validates name against the catalog, then either increments an
// existing line with the same canonical name and addon set or appends a new
// line with the catalog-snapshotted price. merged reports which happened.
func (c *Cart) AddItem(ctx context.Context, name string, quantity int, addons []string) (line Line, merged bool, err error) {
	if quantity <= 0 {
		quantity = 1
	}

	item, ok, err := c.matcher.MatchItem(ctx, name)
	if err != nil {
		return Line{}, false, err
	}
	if !ok {
		return Line{}, false, fmt.Errorf("%q: %w", name, ErrItemNotFound)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if strings.EqualFold(c.lines[i].Name, item.Name) && sameAddonSet(c.lines[i].Addons, addons) {
			c.lines[i].Quantity += quantity
			return c.lines[i], true, nil
		}
	}

	newLine := Line{
		Name:      item.Name,
		Quantity:  quantity,
		UnitPrice: item.Price,
		Addons:    append([]string(nil), addons...),
	}
	c.lines = append(c.lines, newLine)
	return newLine, false, nil
}

// RemoveItem removes the first line matching name: exact case-insensitive
// first, then substring containment in either direction.
func (c *Cart) RemoveItem(name string) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.findLine(name)
	if idx < 0 {
		return Line{}, fmt.Errorf("%q: %w", name, ErrItemNotInCart)
	}
	removed := c.lines[idx]
	c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	return removed, nil
}

// UpdateQuantity overwrites a line's quantity. Zero removes the line.
func (c *Cart) UpdateQuantity(name string, quantity int) (Line, error) {
	if quantity == 0 {
		return c.RemoveItem(name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.findLine(name)
	if idx < 0 {
		return Line{}, fmt.Errorf("%q: %w", name, ErrItemNotInCart)
	}
	c.lines[idx].Quantity = quantity
	return c.lines[idx], nil
}

// UpdateAddons merges new addon labels into an existing line. Matching is
// exact case-insensitive only; a loose match here would decorate the wrong
// line.
func (c *Cart) UpdateAddons(name string, addons []string) (Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if strings.EqualFold(c.lines[i].Name, name) {
			for _, addon := range addons {
				if !containsFold(c.lines[i].Addons, addon) {
					c.lines[i].Addons = append(c.lines[i].Addons, addon)
				}
			}
			return c.lines[i], nil
		}
	}
	return Line{}, fmt.Errorf("%q: %w", name, ErrItemNotInCart)
}

// Total is the sum of unit price times quantity over all lines.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0.0
	for _, line := range c.lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return total
}

// Summary formats the cart in insertion order.
func (c *Cart) Summary(includePrices bool) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return "Your order is currently empty."
	}

	var b strings.Builder
	b.WriteString("Your current order:")
	total := 0.0
	for _, line := range c.lines {
		b.WriteString(fmt.Sprintf("\n- %dx %s", line.Quantity, line.Name))
		if len(line.Addons) > 0 {
			b.WriteString(" (" + strings.Join(line.Addons, ", ") + ")")
		}
		lineTotal := line.UnitPrice * float64(line.Quantity)
		total += lineTotal
		if includePrices {
			b.WriteString(fmt.Sprintf(" - $%.2f", lineTotal))
		}
	}
	if includePrices {
		b.WriteString(fmt.Sprintf("\nTotal: $%.2f", total))
	}
	return b.String()
}

// Items returns a copy of all lines in insertion order.
func (c *Cart) Items() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	for i := range out {
		out[i].Addons = append([]string(nil), c.lines[i].Addons...)
	}
	return out
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// findLine matches by exact case-insensitive name first, then by substring
// containment in either direction. Callers hold the mutex.
func (c *Cart) findLine(name string) int {
	target := strings.ToLower(strings.TrimSpace(name))
	for i := range c.lines {
		if strings.ToLower(c.lines[i].Name) == target {
			return i
		}
	}
	for i := range c.lines {
		lower := strings.ToLower(c.lines[i].Name)
		if strings.Contains(lower, target) || strings.Contains(target, lower) {
			return i
		}
	}
	return -1
}

func sameAddonSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := normalizedSet(a)
	bs := normalizedSet(b)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func normalizedSet(addons []string) []string {
	out := make([]string, len(addons))
	for i, addon := range addons {
		out[i] = strings.ToLower(strings.TrimSpace(addon))
	}
	sort.Strings(out)
	return out
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}
