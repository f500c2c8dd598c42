// Package tools implements the voice agent's tool surface: a registry of
// named handlers with their function declarations, and a dispatcher that
// runs a batch of model-issued calls concurrently and always produces one
// result per call.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// Kind classifies a tool by whether it mutates session or order state.
// State-modifying tools in one batch are serialized against each other;
// read-only tools run freely.
type Kind int

const (
	KindReadOnly Kind = iota
	KindStateModifying
)

func (k Kind) String() string {
	if k == KindStateModifying {
		return "state_modifying"
	}
	return "read_only"
}

// Call is one function call issued by the backend model.
type Call struct {
	ID   string
	Name string
	Args map[string]any
}

// Result is the outcome of one Call, correlated by ID. Output is always a
// human-readable string; failures are reported here as text, never as
// transport errors.
type Result struct {
	ID     string
	Name   string
	Output string
}

// Handler executes one tool call. A returned error is converted to a
// failure string by the dispatcher; it never aborts the batch.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Entry is one registered tool.
type Entry struct {
	Handler     Handler
	Kind        Kind
	Declaration *genai.FunctionDeclaration
}

// Registry maps tool names to entries and dispatches batches of calls.
type Registry struct {
	byName      map[string]Entry
	logger      *slog.Logger
	callTimeout time.Duration

	// Serializes state-modifying handlers within and across batches.
	writeMu sync.Mutex
}

// NewRegistry builds an empty registry. callTimeout bounds each handler
// invocation; zero means no per-call deadline beyond the batch context.
func NewRegistry(logger *slog.Logger, callTimeout time.Duration) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byName:      make(map[string]Entry),
		logger:      logger,
		callTimeout: callTimeout,
	}
}

// Register adds one tool. Registering a duplicate or undeclared name is a
// wiring bug surfaced by Validate, not here.
func (r *Registry) Register(name string, entry Entry) {
	r.byName[strings.TrimSpace(name)] = entry
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns the function declarations for every registered tool,
// in name order, ready to hand to the backend.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.byName))
	for _, name := range r.Names() {
		if d := r.byName[name].Declaration; d != nil {
			decls = append(decls, d)
		}
	}
	return decls
}

// Validate checks that the registry and the declared schema cover exactly
// the same names: every entry has a handler and a declaration, and the
// declaration's name matches the registered one. Run at startup so a
// half-wired tool fails the process instead of a live call.
func (r *Registry) Validate() error {
	for name, entry := range r.byName {
		if name == "" {
			return fmt.Errorf("tool registered with empty name")
		}
		if entry.Handler == nil {
			return fmt.Errorf("tool %q has no handler", name)
		}
		if entry.Declaration == nil {
			return fmt.Errorf("tool %q has no declaration", name)
		}
		if entry.Declaration.Name != name {
			return fmt.Errorf("tool %q declared as %q", name, entry.Declaration.Name)
		}
	}
	return nil
}

// Dispatch runs every call in batch concurrently and returns exactly one
// Result per Call, index-correlated with the input. Unknown names resolve
// immediately without invoking anything; handler errors and panics become
// failure text in the result.
func (r *Registry) Dispatch(ctx context.Context, batch []Call) []Result {
	if len(batch) == 0 {
		return nil
	}

	results := make([]Result, len(batch))
	var wg sync.WaitGroup

	for i, call := range batch {
		results[i] = Result{ID: call.ID, Name: call.Name}

		entry, ok := r.byName[call.Name]
		if !ok {
			r.logger.Warn("unknown tool requested", "tool", call.Name, "call_id", call.ID)
			results[i].Output = fmt.Sprintf("Unknown tool: %s", call.Name)
			continue
		}

		wg.Add(1)
		go func(i int, call Call, entry Entry) {
			defer wg.Done()
			results[i].Output = r.runOne(ctx, call, entry)
		}(i, call, entry)
	}

	wg.Wait()
	return results
}

func (r *Registry) runOne(ctx context.Context, call Call, entry Entry) (output string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool handler panicked", "tool", call.Name, "call_id", call.ID, "panic", rec)
			output = fmt.Sprintf("Tool %s failed: internal error", call.Name)
		}
	}()

	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	if entry.Kind == KindStateModifying {
		r.writeMu.Lock()
		defer r.writeMu.Unlock()
	}

	started := time.Now()
	out, err := entry.Handler(ctx, call.Args)
	if err != nil {
		r.logger.Error("tool failed", "tool", call.Name, "call_id", call.ID, "error", err)
		return fmt.Sprintf("Tool %s failed: %v", call.Name, err)
	}
	r.logger.Debug("tool completed", "tool", call.Name, "call_id", call.ID, "elapsed", time.Since(started))
	return out
}
