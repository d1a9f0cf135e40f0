package models

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/voicelab/internal/transcribe"
)

// Model is a transcription model offered to clients
type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Configured returns the models of the configured provider chain, primary
// first. The local wav2vec2 model is always listed when no other provider
// is configured.
func Configured(cfg *transcribe.Config) []Model {
	if cfg == nil {
		cfg = transcribe.DefaultProviderConfig()
	}

	var out []Model
	seen := map[string]bool{}
	for _, name := range []string{cfg.Provider, cfg.Fallback} {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, describe(name, cfg))
	}
	if len(out) == 0 {
		out = append(out, describe("wav2vec2", cfg))
	}
	return out
}

func describe(provider string, cfg *transcribe.Config) Model {
	switch provider {
	case "wav2vec2":
		return Model{ID: "wav2vec2", Name: "Wav2Vec2 Base"}
	case "openai":
		return Model{ID: "openai", Name: "OpenAI " + cfg.OpenAIModel}
	case "gemini":
		return Model{ID: "gemini", Name: "Gemini " + cfg.GeminiModel}
	default:
		return Model{ID: provider, Name: provider}
	}
}

// Lister handles listing speech-to-text models of the OpenAI API
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return NewListerWithConfig(apiKey, openai.DefaultConfig(apiKey))
}

// NewListerWithConfig creates a model lister with a custom client config
func NewListerWithConfig(apiKey string, config openai.ClientConfig) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// TranscriptionModels returns the sorted IDs of the models that accept
// audio for transcription
func (l *Lister) TranscriptionModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .voicelab.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var ids []string
	for _, model := range models.Models {
		if isTranscriptionModel(model.ID) {
			ids = append(ids, model.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func isTranscriptionModel(id string) bool {
	return strings.Contains(id, "whisper") || strings.Contains(id, "transcribe")
}
