// Package backend abstracts the realtime voice model behind a small stream
// contract so session code never touches a vendor SDK directly.
package backend

import (
	"context"

	"google.golang.org/genai"

	"github.com/voicecart/voicecart/pkg/gateway/tools"
)

// Event is one message from the backend. Any combination of fields may be
// set; zero values mean the message carried nothing of that kind.
type Event struct {
	// Audio is 24kHz mono s16le model speech, passed to the caller verbatim.
	Audio []byte

	// UserTranscript and AssistantTranscript are finalized transcriptions.
	UserTranscript      string
	AssistantTranscript string

	// ToolCalls is a batch of function calls to dispatch. The backend
	// expects exactly one response per call.
	ToolCalls []tools.Call

	// TurnComplete marks the end of a model turn. Interrupted means the
	// caller barged in and the model abandoned its turn.
	TurnComplete bool
	Interrupted  bool
}

// Stream is one live backend conversation.
type Stream interface {
	// SendAudio forwards caller microphone audio (16kHz mono s16le).
	SendAudio(ctx context.Context, pcm []byte) error

	// SendText injects a complete typed user turn.
	SendText(ctx context.Context, text string) error

	// SendToolResults answers a tool call batch.
	SendToolResults(ctx context.Context, results []tools.Result) error

	// Receive blocks for the next event. Returns io.EOF when the backend
	// ends the conversation.
	Receive() (Event, error)

	Close() error
}

// SessionConfig shapes one backend conversation.
type SessionConfig struct {
	Model             string
	Voice             string
	SystemInstruction string
	SilenceDurationMs int32
	Declarations      []*genai.FunctionDeclaration
}

// Connector opens backend streams.
type Connector interface {
	Connect(ctx context.Context, cfg SessionConfig) (Stream, error)
}
