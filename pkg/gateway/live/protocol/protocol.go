// Package protocol defines the caller-channel frames exchanged over the
// /session websocket. Binary frames carry raw PCM and never pass through
// here; this package covers only the JSON text frames.
package protocol

import (
	"encoding/json"
	"strings"
)

// Caller audio shapes. Inbound audio is 16kHz mono s16le; everything the
// gateway sends back (backend speech and filler) is 24kHz.
const (
	InboundMIMEType      = "audio/pcm;rate=16000"
	InboundSampleRateHz  = 16000
	OutboundSampleRateHz = 24000
)

// Frame type strings on the wire.
const (
	TypeText       = "text"
	TypeStatus     = "status"
	TypeTranscript = "transcript"
	TypeError      = "error"
)

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ClientText is the only JSON frame the caller may send: a typed message
// injected into the conversation as a complete user turn.
type ClientText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Status tells the caller the session changed state. State "ready" means
// the backend link is up and audio will be heard.
type Status struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

// Transcript relays a finalized backend transcription of either side.
type Transcript struct {
	Type  string `json:"type"`
	Role  string `json:"role"`
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Error is the terminal frame sent before closing a failed session.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func Ready() Status {
	return Status{Type: TypeStatus, State: "ready"}
}

// Draining warns the caller the gateway is shutting down and the session
// will be cut once the grace period runs out.
func Draining() Status {
	return Status{Type: TypeStatus, State: "draining"}
}

func NewTranscript(role, text string) Transcript {
	return Transcript{Type: TypeTranscript, Role: role, Text: text, Final: true}
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

// DecodeClientText parses an inbound text frame. Anything that is not a
// well-formed {"type":"text"} frame with non-empty text returns false: the
// caller channel tolerates garbage by ignoring it rather than failing the
// session.
func DecodeClientText(data []byte) (ClientText, bool) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ClientText{}, false
	}
	if strings.TrimSpace(envelope.Type) != TypeText {
		return ClientText{}, false
	}

	var msg ClientText
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientText{}, false
	}
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" {
		return ClientText{}, false
	}
	return msg, true
}
