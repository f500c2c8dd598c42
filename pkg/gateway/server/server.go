// Package server wires the mux and middleware chain for the voice gateway.
package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/voicecart/voicecart/pkg/commerce/orders"
	"github.com/voicecart/voicecart/pkg/gateway/backend"
	"github.com/voicecart/voicecart/pkg/gateway/config"
	"github.com/voicecart/voicecart/pkg/gateway/handlers"
	"github.com/voicecart/voicecart/pkg/gateway/live/sessions"
	"github.com/voicecart/voicecart/pkg/gateway/mw"
)

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	sessions *sessions.Tracker
}

func New(cfg config.Config, db *sql.DB, connector backend.Connector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		sessions: sessions.NewTracker(),
	}

	s.mux.Handle("/healthz", handlers.HealthHandler{})
	s.mux.Handle("/session", handlers.LiveHandler{
		Config:    cfg,
		DB:        db,
		Connector: connector,
		Logger:    logger,
		Sessions:  s.sessions,
	})
	s.mux.Handle("/api/orders", handlers.OrdersHandler{
		Orders: orders.NewManager(db, logger),
		Logger: logger,
	})
	s.mux.Handle("/api/orders/", handlers.OrdersHandler{
		Orders: orders.NewManager(db, logger),
		Logger: logger,
	})
	s.mux.Handle("/", handlers.NotFoundHandler{})

	return s
}

// Sessions exposes the live session tracker for drain handling.
func (s *Server) Sessions() *sessions.Tracker {
	return s.sessions
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.CORS(s.cfg.CORSAllowedOrigins, h)
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}
