// Package config loads gateway configuration from VOICECART_-prefixed
// environment variables and validates it before the server starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string
	DBPath string

	// Gemini Live backend.
	GeminiAPIKey      string
	GeminiModel       string
	GeminiVoice       string
	SilenceDurationMs int

	// Caller websocket.
	RecvTimeout    time.Duration
	KeepaliveAfter time.Duration
	WriteTimeout   time.Duration

	// Tool dispatch.
	ToolCallTimeout time.Duration

	// Filler audio played while tools run.
	FillerGuard      time.Duration
	FillerGapMin     time.Duration
	FillerGapMax     time.Duration
	FillerMaxPerTurn int

	// CORS origins allowed to open sessions (empty => disabled).
	CORSAllowedOrigins map[string]struct{}

	// Operational defaults.
	ReadHeaderTimeout   time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("VOICECART_ADDR", ":8080"),
		DBPath:              envOr("VOICECART_DB_PATH", "voicecart.db"),
		GeminiAPIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:         envOr("VOICECART_GEMINI_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
		GeminiVoice:         envOr("VOICECART_GEMINI_VOICE", "Kore"),
		SilenceDurationMs:   envIntOr("VOICECART_VAD_SILENCE_MS", 200),
		RecvTimeout:         envDurationOr("VOICECART_RECV_TIMEOUT", 10*time.Second),
		KeepaliveAfter:      envDurationOr("VOICECART_KEEPALIVE_AFTER", 30*time.Second),
		WriteTimeout:        envDurationOr("VOICECART_WS_WRITE_TIMEOUT", 5*time.Second),
		ToolCallTimeout:     envDurationOr("VOICECART_TOOL_CALL_TIMEOUT", 15*time.Second),
		FillerGuard:         envDurationOr("VOICECART_FILLER_GUARD", 250*time.Millisecond),
		FillerGapMin:        envDurationOr("VOICECART_FILLER_GAP_MIN", 500*time.Millisecond),
		FillerGapMax:        envDurationOr("VOICECART_FILLER_GAP_MAX", 1200*time.Millisecond),
		FillerMaxPerTurn:    envIntOr("VOICECART_FILLER_MAX_PER_TURN", 3),
		CORSAllowedOrigins:  make(map[string]struct{}),
		ReadHeaderTimeout:   envDurationOr("VOICECART_READ_HEADER_TIMEOUT", 10*time.Second),
		ShutdownGracePeriod: envDurationOr("VOICECART_SHUTDOWN_GRACE_PERIOD", 15*time.Second),
	}

	for _, origin := range splitCSV(os.Getenv("VOICECART_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, fmt.Errorf("VOICECART_DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.GeminiModel) == "" {
		return Config{}, fmt.Errorf("VOICECART_GEMINI_MODEL must not be empty")
	}
	if strings.TrimSpace(cfg.GeminiVoice) == "" {
		return Config{}, fmt.Errorf("VOICECART_GEMINI_VOICE must not be empty")
	}
	if cfg.SilenceDurationMs <= 0 {
		return Config{}, fmt.Errorf("VOICECART_VAD_SILENCE_MS must be > 0")
	}
	if cfg.RecvTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICECART_RECV_TIMEOUT must be > 0")
	}
	if cfg.KeepaliveAfter <= 0 {
		return Config{}, fmt.Errorf("VOICECART_KEEPALIVE_AFTER must be > 0")
	}
	if cfg.WriteTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICECART_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.ToolCallTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICECART_TOOL_CALL_TIMEOUT must be > 0")
	}
	if cfg.FillerGuard <= 0 {
		return Config{}, fmt.Errorf("VOICECART_FILLER_GUARD must be > 0")
	}
	if cfg.FillerGapMin <= 0 {
		return Config{}, fmt.Errorf("VOICECART_FILLER_GAP_MIN must be > 0")
	}
	if cfg.FillerGapMax < cfg.FillerGapMin {
		return Config{}, fmt.Errorf("VOICECART_FILLER_GAP_MAX must be >= VOICECART_FILLER_GAP_MIN")
	}
	if cfg.FillerMaxPerTurn < 0 {
		return Config{}, fmt.Errorf("VOICECART_FILLER_MAX_PER_TURN must be >= 0")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("VOICECART_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("VOICECART_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
