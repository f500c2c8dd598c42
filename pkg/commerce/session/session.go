// Package session carries per-call conversational context: who the caller
// is and a short memory of what they have looked at, so tool handlers can
// resolve references like "the first one" or "my last order".
package session

import (
	"sync"
)

// Ring capacities. Old entries are evicted, never the whole buffer.
const (
	historySize       = 5
	searchHistorySize = 5
	orderLookupSize   = 3
)

// Context is the per-call scratch state. Every field is scoped to a single
// voice session and dropped when it ends.
type Context struct {
	mu         sync.Mutex
	customerID string
	history    ring[Exchange]
	searches   ring[string]
	orders     ring[string]
	values     map[string]string
}

// Exchange is one user utterance paired with the assistant's reply.
type Exchange struct {
	User      string
	Assistant string
}

func NewContext(customerID string) *Context {
	return &Context{
		customerID: customerID,
		history:    newRing[Exchange](historySize),
		searches:   newRing[string](searchHistorySize),
		orders:     newRing[string](orderLookupSize),
		values:     make(map[string]string),
	}
}

// CustomerID returns the caller identity bound at session start.
func (c *Context) CustomerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customerID
}

// SetCustomerID rebinds the caller identity, for sessions that identify the
// caller mid-conversation.
func (c *Context) SetCustomerID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customerID = id
}

// RecordExchange appends one completed turn, evicting the oldest past the
// history capacity.
func (c *Context) RecordExchange(user, assistant string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.push(Exchange{User: user, Assistant: assistant})
}

// History returns recent exchanges, oldest first.
func (c *Context) History() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.items()
}

// RecordSearch remembers a product search query.
func (c *Context) RecordSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches.push(query)
}

// RecentSearches returns remembered queries, oldest first.
func (c *Context) RecentSearches() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searches.items()
}

// RecordOrderLookup remembers an order the caller asked about. Looking up
// the same order again moves it to the most-recent slot instead of
// occupying two.
func (c *Context) RecordOrderLookup(orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders.remove(orderID)
	c.orders.push(orderID)
}

// RecentOrders returns remembered order ids, oldest first.
func (c *Context) RecentOrders() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orders.items()
}

// LastOrder returns the most recently looked-up order id, if any.
func (c *Context) LastOrder() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := c.orders.items()
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1], true
}

// Set stores an arbitrary key/value pair for the rest of the call.
func (c *Context) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get reads a pair stored with Set.
func (c *Context) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// ring is a fixed-capacity FIFO. push past capacity evicts the oldest entry.
type ring[T comparable] struct {
	cap  int
	data []T
}

func newRing[T comparable](capacity int) ring[T] {
	return ring[T]{cap: capacity}
}

func (r *ring[T]) push(v T) {
	r.data = append(r.data, v)
	if len(r.data) > r.cap {
		r.data = r.data[len(r.data)-r.cap:]
	}
}

func (r *ring[T]) remove(v T) {
	for i := range r.data {
		if r.data[i] == v {
			r.data = append(r.data[:i], r.data[i+1:]...)
			return
		}
	}
}

func (r *ring[T]) items() []T {
	out := make([]T, len(r.data))
	copy(out, r.data)
	return out
}
