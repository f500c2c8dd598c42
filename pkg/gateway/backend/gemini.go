package backend

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/voicecart/voicecart/pkg/gateway/live/protocol"
	"github.com/voicecart/voicecart/pkg/gateway/tools"
)

// GeminiConnector opens Gemini Live conversations.
type GeminiConnector struct {
	client *genai.Client
	logger *slog.Logger
}

func NewGeminiConnector(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiConnector, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiConnector{client: client, logger: logger}, nil
}

func (c *GeminiConnector) Connect(ctx context.Context, cfg SessionConfig) (Stream, error) {
	live := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstruction}},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
		RealtimeInputConfig: &genai.RealtimeInputConfig{
			AutomaticActivityDetection: &genai.AutomaticActivityDetection{
				SilenceDurationMs: genai.Ptr(cfg.SilenceDurationMs),
			},
		},
	}
	if len(cfg.Declarations) > 0 {
		live.Tools = []*genai.Tool{{FunctionDeclarations: cfg.Declarations}}
	}
	if cfg.Voice != "" {
		live.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		}
	}

	session, err := c.client.Live.Connect(ctx, cfg.Model, live)
	if err != nil {
		return nil, fmt.Errorf("gemini live connect: %w", err)
	}
	c.logger.Info("backend stream opened", "model", cfg.Model, "voice", cfg.Voice)
	return &geminiStream{session: session}, nil
}

type geminiStream struct {
	session *genai.Session
}

func (s *geminiStream) SendAudio(ctx context.Context, pcm []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: pcm, MIMEType: protocol.InboundMIMEType},
	})
}

func (s *geminiStream) SendText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.session.SendClientContent(userTurn(text))
}

// userTurn wraps typed caller input as one complete user turn.
func userTurn(text string) genai.LiveClientContentInput {
	return genai.LiveClientContentInput{
		Turns: []*genai.Content{
			{Role: genai.RoleUser, Parts: []*genai.Part{{Text: text}}},
		},
		TurnComplete: genai.Ptr(true),
	}
}

func (s *geminiStream) SendToolResults(ctx context.Context, results []tools.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	responses := make([]*genai.FunctionResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, &genai.FunctionResponse{
			ID:       result.ID,
			Name:     result.Name,
			Response: map[string]any{"result": result.Output},
		})
	}
	return s.session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: responses,
	})
}

func (s *geminiStream) Receive() (Event, error) {
	msg, err := s.session.Receive()
	if err != nil {
		return Event{}, err
	}
	return decodeServerMessage(msg), nil
}

func decodeServerMessage(msg *genai.LiveServerMessage) Event {
	var event Event
	if msg == nil {
		return event
	}
	if content := msg.ServerContent; content != nil {
		if content.ModelTurn != nil {
			for _, part := range content.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					event.Audio = append(event.Audio, part.InlineData.Data...)
				}
			}
		}
		if content.InputTranscription != nil {
			event.UserTranscript = content.InputTranscription.Text
		}
		if content.OutputTranscription != nil {
			event.AssistantTranscript = content.OutputTranscription.Text
		}
		event.TurnComplete = content.TurnComplete
		event.Interrupted = content.Interrupted
	}
	if msg.ToolCall != nil {
		for _, fc := range msg.ToolCall.FunctionCalls {
			event.ToolCalls = append(event.ToolCalls, tools.Call{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
	}
	return event
}

func (s *geminiStream) Close() error {
	return s.session.Close()
}
