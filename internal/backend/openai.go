package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"wingman/internal/config"
	"wingman/internal/domain"
)

// OpenAIService implements both endpoints' heavy lifting: Whisper
// transcription and chat-completion answer drafting.
type OpenAIService struct {
	client       *openai.Client
	whisperModel string
}

func NewOpenAIService(cfg config.BackendConfig) *OpenAIService {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	whisperModel := cfg.WhisperModel
	if whisperModel == "" {
		whisperModel = openai.Whisper1
	}

	return &OpenAIService{
		client:       openai.NewClientWithConfig(clientCfg),
		whisperModel: whisperModel,
	}
}

// Transcribe converts an uploaded audio file to text.
func (s *OpenAIService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.whisperModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}

// Answer drafts one answer tier for the given context snapshot.
func (s *OpenAIService) Answer(ctx context.Context, req domain.AnswerRequest, style AnswerStyle) (string, error) {
	model := req.Model
	if model == "" {
		model = string(domain.DefaultModel)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: answerTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req, style)},
			{Role: openai.ChatMessageRoleUser, Content: req.Transcript},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
