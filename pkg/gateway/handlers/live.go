// Package handlers holds the gateway's HTTP surface: the live voice
// websocket, the orders dashboard API, and health.
package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/voicecart/voicecart/pkg/commerce/cart"
	"github.com/voicecart/voicecart/pkg/commerce/catalog"
	"github.com/voicecart/voicecart/pkg/commerce/faq"
	"github.com/voicecart/voicecart/pkg/commerce/orders"
	commercesession "github.com/voicecart/voicecart/pkg/commerce/session"
	"github.com/voicecart/voicecart/pkg/gateway/backend"
	"github.com/voicecart/voicecart/pkg/gateway/config"
	"github.com/voicecart/voicecart/pkg/gateway/live/session"
	"github.com/voicecart/voicecart/pkg/gateway/live/sessions"
	"github.com/voicecart/voicecart/pkg/gateway/tools"
)

// LiveHandler upgrades /ws and runs one voice session per connection.
// Each session gets its own cart, call context, and tool registry; only
// the sqlite-backed managers are shared.
type LiveHandler struct {
	Config    config.Config
	DB        *sql.DB
	Connector backend.Connector
	Logger    *slog.Logger
	Sessions  *sessions.Tracker
}

func (h LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.originAllowed(r) {
		http.Error(w, "origin is not allowed", http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sessionID := "s_" + uuid.NewString()
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session_id", sessionID)

	registry := h.newSessionRegistry(logger)
	if err := registry.Validate(); err != nil {
		logger.Error("tool registry invalid", "error", err)
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream, err := h.Connector.Connect(ctx, backend.SessionConfig{
		Model:             h.Config.GeminiModel,
		Voice:             h.Config.GeminiVoice,
		SystemInstruction: backend.SystemInstruction(),
		SilenceDurationMs: int32(h.Config.SilenceDurationMs),
		Declarations:      registry.Declarations(),
	})
	if err != nil {
		logger.Error("backend connect failed", "error", err)
		conn.Close()
		return
	}

	coordinator := session.New(sessionID, conn, stream, registry, logger, session.Config{
		RecvTimeout:    h.Config.RecvTimeout,
		KeepaliveAfter: h.Config.KeepaliveAfter,
		WriteTimeout:   h.Config.WriteTimeout,
		Filler: session.FillerConfig{
			Guard:      h.Config.FillerGuard,
			GapMin:     h.Config.FillerGapMin,
			GapMax:     h.Config.FillerGapMax,
			MaxPerTurn: h.Config.FillerMaxPerTurn,
		},
	})

	unregister := h.Sessions.Register(sessionID, sessions.Handle{
		Cancel:      cancel,
		NotifyDrain: coordinator.NotifyDrain,
	})
	defer unregister()

	if err := coordinator.Run(ctx); err != nil {
		logger.Warn("session ended with error", "error", err)
	}
}

func (h LiveHandler) newSessionRegistry(logger *slog.Logger) *tools.Registry {
	catalogMgr := catalog.NewManager(h.DB, logger)
	return tools.NewCommerceRegistry(tools.CommerceDeps{
		Catalog:     catalogMgr,
		Orders:      orders.NewManager(h.DB, logger),
		FAQs:        faq.NewManager(h.DB),
		Cart:        cart.New(catalogMatcher{catalogMgr}),
		Call:        commercesession.NewContext(""),
		Logger:      logger,
		CallTimeout: h.Config.ToolCallTimeout,
	})
}

func (h LiveHandler) originAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		// Non-browser callers carry no Origin header.
		return true
	}
	if len(h.Config.CORSAllowedOrigins) == 0 {
		return true
	}
	_, ok := h.Config.CORSAllowedOrigins[origin]
	return ok
}

// catalogMatcher adapts the catalog manager to the cart's Matcher interface.
type catalogMatcher struct {
	catalog *catalog.Manager
}

func (m catalogMatcher) MatchItem(ctx context.Context, name string) (cart.CatalogItem, bool, error) {
	p, ok, err := m.catalog.MatchItem(ctx, name)
	if err != nil || !ok {
		return cart.CatalogItem{}, ok, err
	}
	return cart.CatalogItem{ID: p.ID, Name: p.Name, Price: p.Price}, true, nil
}
