// Package sessions tracks live voice sessions for graceful drain: on
// shutdown the server notifies every caller, waits out a grace period, and
// cancels whatever is still running.
package sessions

import (
	"context"
	"sync"
)

// Handle is what a session exposes to the tracker. NotifyDrain tells the
// caller the gateway is going away; Cancel tears the session down.
type Handle struct {
	Cancel      func()
	NotifyDrain func() error
}

type tracked struct {
	handle Handle
	once   sync.Once
}

// Tracker is a registry of live sessions.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*tracked
	wg       sync.WaitGroup
}

func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]*tracked)}
}

// Register adds a session and returns its unregister func. Registering the
// same id twice unregisters the older entry; the id owner changed.
func (t *Tracker) Register(sessionID string, h Handle) (unregister func()) {
	if t == nil {
		return func() {}
	}

	entry := &tracked{handle: h}

	t.mu.Lock()
	if t.sessions == nil {
		t.sessions = make(map[string]*tracked)
	}
	old := t.sessions[sessionID]
	t.sessions[sessionID] = entry
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		t.unregister(sessionID, old)
	}
	return func() { t.unregister(sessionID, entry) }
}

func (t *Tracker) unregister(sessionID string, entry *tracked) {
	if t == nil || entry == nil {
		return
	}
	entry.once.Do(func() {
		t.mu.Lock()
		if t.sessions != nil && t.sessions[sessionID] == entry {
			delete(t.sessions, sessionID)
		}
		t.mu.Unlock()
		t.wg.Done()
	})
}

// Count reports live sessions.
func (t *Tracker) Count() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// NotifyDrainAll tells every live session the gateway is shutting down.
func (t *Tracker) NotifyDrainAll() (notified int) {
	if t == nil {
		return 0
	}

	var notifies []func() error
	t.mu.Lock()
	for _, entry := range t.sessions {
		if entry == nil || entry.handle.NotifyDrain == nil {
			continue
		}
		notifies = append(notifies, entry.handle.NotifyDrain)
	}
	t.mu.Unlock()

	for _, notify := range notifies {
		_ = notify()
		notified++
	}
	return notified
}

// CancelAll tears down every remaining session.
func (t *Tracker) CancelAll() (canceled int) {
	if t == nil {
		return 0
	}

	var cancels []func()
	t.mu.Lock()
	for _, entry := range t.sessions {
		if entry == nil || entry.handle.Cancel == nil {
			continue
		}
		cancels = append(cancels, entry.handle.Cancel)
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
		canceled++
	}
	return canceled
}

// Wait blocks until every registered session unregisters or ctx expires.
// Reports whether the tracker fully drained.
func (t *Tracker) Wait(ctx context.Context) bool {
	if t == nil {
		return true
	}
	if ctx == nil {
		t.wg.Wait()
		return true
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
