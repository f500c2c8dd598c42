package session

import (
	"fmt"
	"testing"
)

func TestHistoryEvictsOldest(t *testing.T) {
	t.Parallel()
	c := NewContext("CUST001")

	for i := 0; i < historySize+2; i++ {
		c.RecordExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	got := c.History()
	if len(got) != historySize {
		t.Fatalf("history length = %d, want %d", len(got), historySize)
	}
	if got[0].User != "q2" {
		t.Fatalf("oldest kept = %q, want q2", got[0].User)
	}
	if got[len(got)-1].Assistant != fmt.Sprintf("a%d", historySize+1) {
		t.Fatalf("newest = %q", got[len(got)-1].Assistant)
	}
}

func TestOrderLookupDeduplicates(t *testing.T) {
	t.Parallel()
	c := NewContext("CUST001")

	c.RecordOrderLookup("ORD001")
	c.RecordOrderLookup("ORD002")
	c.RecordOrderLookup("ORD001")

	got := c.RecentOrders()
	if len(got) != 2 {
		t.Fatalf("orders = %v, want 2 entries", got)
	}
	if got[0] != "ORD002" || got[1] != "ORD001" {
		t.Fatalf("orders = %v, want repeat lookup moved to most recent", got)
	}

	last, ok := c.LastOrder()
	if !ok || last != "ORD001" {
		t.Fatalf("LastOrder = %q, %v", last, ok)
	}
}

func TestOrderLookupCapacity(t *testing.T) {
	t.Parallel()
	c := NewContext("CUST001")

	for i := 0; i < orderLookupSize+1; i++ {
		c.RecordOrderLookup(fmt.Sprintf("ORD%03d", i))
	}
	got := c.RecentOrders()
	if len(got) != orderLookupSize {
		t.Fatalf("orders length = %d, want %d", len(got), orderLookupSize)
	}
	if got[0] != "ORD001" {
		t.Fatalf("oldest kept = %q, want ORD001", got[0])
	}
}

func TestSearchesAndValues(t *testing.T) {
	t.Parallel()
	c := NewContext("CUST001")

	if got := c.CustomerID(); got != "CUST001" {
		t.Fatalf("customer = %q", got)
	}
	c.SetCustomerID("CUST002")
	if got := c.CustomerID(); got != "CUST002" {
		t.Fatalf("customer after rebind = %q", got)
	}

	c.RecordSearch("headphones")
	c.RecordSearch("usb cable")
	if got := c.RecentSearches(); len(got) != 2 || got[1] != "usb cable" {
		t.Fatalf("searches = %v", got)
	}

	c.Set("last_category", "Electronics")
	if v, ok := c.Get("last_category"); !ok || v != "Electronics" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("Get on missing key reported ok")
	}
}

func TestEmptyContext(t *testing.T) {
	t.Parallel()
	c := NewContext("")

	if _, ok := c.LastOrder(); ok {
		t.Fatalf("LastOrder on empty context reported ok")
	}
	if got := c.History(); len(got) != 0 {
		t.Fatalf("history = %v", got)
	}
}
