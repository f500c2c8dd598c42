package session

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Filler pacing defaults, tuned against real tool latencies.
const (
	DefaultFillerGuard   = 250 * time.Millisecond
	DefaultFillerGapMin  = 500 * time.Millisecond
	DefaultFillerGapMax  = 1200 * time.Millisecond
	DefaultFillerPerTurn = 3
)

// FillerConfig shapes the filler scheduler. Zero values take the defaults.
type FillerConfig struct {
	// Guard suppresses fillers while backend audio was heard this recently;
	// talking over the model sounds worse than silence.
	Guard time.Duration

	// GapMin and GapMax bound the randomized pause between fillers.
	GapMin time.Duration
	GapMax time.Duration

	// MaxPerTurn caps fillers per tool turn.
	MaxPerTurn int

	// Clips are the PCM hums to choose from. Nil means BuildFillerClips().
	Clips [][]byte
}

func (c FillerConfig) withDefaults() FillerConfig {
	if c.Guard <= 0 {
		c.Guard = DefaultFillerGuard
	}
	if c.GapMin <= 0 {
		c.GapMin = DefaultFillerGapMin
	}
	if c.GapMax < c.GapMin {
		c.GapMax = DefaultFillerGapMax
	}
	if c.MaxPerTurn <= 0 {
		c.MaxPerTurn = DefaultFillerPerTurn
	}
	if len(c.Clips) == 0 {
		c.Clips = BuildFillerClips()
	}
	return c
}

// fillerScheduler sends short hums to the caller while tool calls are in
// flight, so the line never goes dead during a lookup. At most one loop
// goroutine runs per session.
type fillerScheduler struct {
	cfg  FillerConfig
	send func(clip []byte) error
	now  func() time.Time

	mu               sync.Mutex
	toolInFlight     bool
	running          bool
	sentThisTurn     int
	lastSent         time.Time
	lastBackendAudio time.Time
}

func newFillerScheduler(cfg FillerConfig, send func([]byte) error) *fillerScheduler {
	return &fillerScheduler{
		cfg:  cfg.withDefaults(),
		send: send,
		now:  time.Now,
	}
}

// NoteBackendAudio records that real model speech just went out. Fillers
// stay suppressed for the guard window afterwards.
func (f *fillerScheduler) NoteBackendAudio() {
	f.mu.Lock()
	f.lastBackendAudio = f.now()
	f.mu.Unlock()
}

// BeginToolTurn marks tools in flight, resets the per-turn counter, and
// starts the loop unless one is already running. The first clip of a turn
// is sent immediately (guard permitting).
func (f *fillerScheduler) BeginToolTurn(ctx context.Context) {
	f.mu.Lock()
	f.toolInFlight = true
	f.sentThisTurn = 0
	f.lastSent = time.Time{}
	start := !f.running
	if start {
		f.running = true
	}
	f.mu.Unlock()

	if start {
		go f.loop(ctx)
	}
}

// EndToolTurn stops filler emission; the loop exits on its next pass.
func (f *fillerScheduler) EndToolTurn() {
	f.mu.Lock()
	f.toolInFlight = false
	f.mu.Unlock()
}

func (f *fillerScheduler) loop(ctx context.Context) {
	defer func() {
		f.mu.Lock()
		f.running = false
		f.toolInFlight = false
		f.sentThisTurn = 0
		f.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		f.mu.Lock()
		inFlight := f.toolInFlight
		sent := f.sentThisTurn
		lastSent := f.lastSent
		lastAudio := f.lastBackendAudio
		f.mu.Unlock()

		if !inFlight {
			return
		}

		now := f.now()
		switch {
		case !lastAudio.IsZero() && now.Sub(lastAudio) < f.cfg.Guard:
			// Model spoke moments ago; wait out the guard window.
			if !sleepCtx(ctx, f.cfg.Guard/2) {
				return
			}
			continue
		case sent >= f.cfg.MaxPerTurn:
			if !sleepCtx(ctx, f.cfg.GapMin/2) {
				return
			}
			continue
		case sent > 0 && !lastSent.IsZero() && now.Sub(lastSent) < f.cfg.GapMin:
			if !sleepCtx(ctx, f.cfg.GapMin/4) {
				return
			}
			continue
		}

		clip := f.cfg.Clips[rand.Intn(len(f.cfg.Clips))]
		if err := f.send(clip); err != nil {
			return
		}

		f.mu.Lock()
		f.lastSent = f.now()
		f.sentThisTurn++
		f.mu.Unlock()

		gap := f.cfg.GapMin
		if spread := f.cfg.GapMax - f.cfg.GapMin; spread > 0 {
			gap += time.Duration(rand.Int63n(int64(spread)))
		}
		if !sleepCtx(ctx, gap) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Millisecond
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
