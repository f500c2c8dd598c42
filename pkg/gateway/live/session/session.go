// Package session runs one live voice call: it pumps caller audio to the
// backend, backend events back to the caller, dispatches tool calls, and
// keeps the line warm with filler audio while tools run.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voicecart/voicecart/pkg/gateway/backend"
	"github.com/voicecart/voicecart/pkg/gateway/live/protocol"
	"github.com/voicecart/voicecart/pkg/gateway/tools"
)

// State is the coordinator lifecycle. Transitions only move forward except
// for the Active/ToolPending pair.
type State int32

const (
	StateConnecting State = iota
	StateReady
	StateActive
	StateToolPending
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	case StateToolPending:
		return "tool_pending"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// CallerConn is the slice of *websocket.Conn the coordinator needs.
type CallerConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Config tunes one session's timing.
type Config struct {
	// RecvTimeout is the idle-check interval for the caller channel.
	RecvTimeout time.Duration

	// KeepaliveAfter is how long the caller may stay silent before the
	// coordinator sends synthetic silence to the backend, keeping the
	// upstream VAD from timing the conversation out.
	KeepaliveAfter time.Duration

	WriteTimeout time.Duration

	Filler FillerConfig

	// Greeting is the synthetic user turn that prompts the model to speak
	// the welcome line.
	Greeting string
}

func (c Config) withDefaults() Config {
	if c.RecvTimeout <= 0 {
		c.RecvTimeout = 10 * time.Second
	}
	if c.KeepaliveAfter <= 0 {
		c.KeepaliveAfter = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.Greeting == "" {
		c.Greeting = "hello"
	}
	return c
}

// keepaliveSilence is 50ms of 16kHz mono s16le silence.
const keepaliveSilenceBytes = 1600

// Coordinator owns one caller connection and one backend stream.
type Coordinator struct {
	ID      string
	Conn    CallerConn
	Backend backend.Stream
	Tools   *tools.Registry
	Logger  *slog.Logger
	Config  Config

	writeMu     sync.Mutex
	state       atomic.Int32
	lastInbound atomic.Int64
	filler      *fillerScheduler
}

// New wires a coordinator. Run does the work.
func New(id string, conn CallerConn, stream backend.Stream, registry *tools.Registry, logger *slog.Logger, cfg Config) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Coordinator{
		ID:      id,
		Conn:    conn,
		Backend: stream,
		Tools:   registry,
		Logger:  logger.With("session_id", id),
		Config:  cfg.withDefaults(),
	}
	c.filler = newFillerScheduler(c.Config.Filler, c.writeBinary)
	c.lastInbound.Store(time.Now().UnixNano())
	return c
}

// State reports the current lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
}

// NotifyDrain warns the caller the gateway is shutting down. The session
// keeps running until canceled or hung up.
func (c *Coordinator) NotifyDrain() error {
	return c.writeJSON(protocol.Draining())
}

// Run drives the session until the caller hangs up, the backend ends the
// conversation, or either side faults. Always returns after both pumps have
// stopped and the connection is closed.
func (c *Coordinator) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.setState(StateReady)
	var err error
	if werr := c.writeJSON(protocol.Ready()); werr != nil {
		err = fmt.Errorf("send ready: %w", werr)
	} else if werr := c.Backend.SendText(ctx, c.Config.Greeting); werr != nil {
		// The greeting prompts the model to speak its welcome line.
		err = fmt.Errorf("send greeting: %w", werr)
	}

	// Handshake failures skip the pumps but still take the teardown path
	// below: the backend stream and the websocket always get closed.
	errs := make(chan error, 3)
	var wg sync.WaitGroup
	if err == nil {
		c.setState(StateActive)
		wg.Add(3)
		go func() { defer wg.Done(); errs <- c.inboundPump(ctx) }()
		go func() { defer wg.Done(); errs <- c.backendPump(ctx) }()
		go func() { defer wg.Done(); errs <- c.keepalivePump(ctx) }()
		err = <-errs
	}
	c.setState(StateClosing)
	cancel()
	c.filler.EndToolTurn()
	_ = c.Backend.Close()

	if err != nil {
		// Best effort: one terminal frame before the close handshake.
		_ = c.writeJSON(protocol.NewError("session error"))
	}
	deadline := time.Now().Add(c.Config.WriteTimeout)
	_ = c.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	_ = c.Conn.Close()

	wg.Wait()
	for len(errs) > 0 {
		if pumpErr := <-errs; err == nil && pumpErr != nil && !isExpectedAfterClose(pumpErr) {
			err = pumpErr
		}
	}

	c.setState(StateClosed)
	if err != nil {
		c.Logger.Error("session ended with error", "error", err)
	} else {
		c.Logger.Info("session ended")
	}
	return err
}

// inboundPump forwards caller frames to the backend: binary frames as
// microphone audio, well-formed text frames as typed user turns. Garbage
// text frames are dropped.
func (c *Coordinator) inboundPump(ctx context.Context) error {
	for {
		messageType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if isNormalClose(err) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("caller read: %w", err)
		}
		c.lastInbound.Store(time.Now().UnixNano())

		switch messageType {
		case websocket.BinaryMessage:
			if len(data) == 0 {
				continue
			}
			if err := c.Backend.SendAudio(ctx, data); err != nil {
				return fmt.Errorf("forward audio: %w", err)
			}
		case websocket.TextMessage:
			msg, ok := protocol.DecodeClientText(data)
			if !ok {
				continue
			}
			c.Logger.Info("caller text input", "text", msg.Text)
			if err := c.Backend.SendText(ctx, msg.Text); err != nil {
				return fmt.Errorf("forward text: %w", err)
			}
		}
	}
}

// backendPump forwards backend events to the caller and runs tool turns.
func (c *Coordinator) backendPump(ctx context.Context) error {
	for {
		event, err := c.Backend.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("backend receive: %w", err)
		}

		if len(event.Audio) > 0 {
			// Stamp before the write so the filler guard opens the moment
			// backend speech exists, not after the caller write returns.
			c.filler.NoteBackendAudio()
			if err := c.writeBinary(event.Audio); err != nil {
				return fmt.Errorf("caller audio write: %w", err)
			}
		}

		if event.UserTranscript != "" {
			c.Logger.Info("user said", "text", event.UserTranscript)
			if err := c.writeJSON(protocol.NewTranscript(protocol.RoleUser, event.UserTranscript)); err != nil {
				return fmt.Errorf("transcript write: %w", err)
			}
		}
		if event.AssistantTranscript != "" {
			c.Logger.Info("assistant said", "text", event.AssistantTranscript)
			if err := c.writeJSON(protocol.NewTranscript(protocol.RoleAssistant, event.AssistantTranscript)); err != nil {
				return fmt.Errorf("transcript write: %w", err)
			}
		}

		if len(event.ToolCalls) > 0 {
			if err := c.runToolTurn(ctx, event.ToolCalls); err != nil {
				return err
			}
		}
	}
}

func (c *Coordinator) runToolTurn(ctx context.Context, calls []tools.Call) error {
	c.setState(StateToolPending)
	c.Logger.Info("tool calls incoming", "count", len(calls))
	c.filler.BeginToolTurn(ctx)
	defer func() {
		c.filler.EndToolTurn()
		c.setState(StateActive)
	}()

	results := c.Tools.Dispatch(ctx, calls)
	if err := c.Backend.SendToolResults(ctx, results); err != nil {
		return fmt.Errorf("send tool results: %w", err)
	}
	return nil
}

// keepalivePump sends silence to the backend when the caller has been quiet
// long enough that the upstream VAD might give up on the conversation.
func (c *Coordinator) keepalivePump(ctx context.Context) error {
	ticker := time.NewTicker(c.Config.RecvTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			idle := time.Since(time.Unix(0, c.lastInbound.Load()))
			if idle <= c.Config.KeepaliveAfter {
				continue
			}
			silence := make([]byte, keepaliveSilenceBytes)
			if err := c.Backend.SendAudio(ctx, silence); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("keepalive: %w", err)
			}
			c.lastInbound.Store(time.Now().UnixNano())
		}
	}
}

func (c *Coordinator) writeBinary(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.Config.WriteTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *Coordinator) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.Config.WriteTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, payload)
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}

// isExpectedAfterClose filters the error the losing pump reports once the
// winner has torn the connection down.
func isExpectedAfterClose(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		websocket.IsUnexpectedCloseError(err)
}
