package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"google.golang.org/genai"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
)

const geminiPrompt = "Transcribe the single English word spoken in this recording as ARPABET " +
	"phonemes separated by single spaces, without stress digits. " +
	"Respond with the phonemes only, for example: T AH M EY T OW"

// GeminiProvider implements Provider by asking a Gemini model for an
// ARPABET transcription of the recording
type GeminiProvider struct {
	config *Config

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider. The API client is
// created on first use.
func NewGeminiProvider(config *Config) *GeminiProvider {
	return &GeminiProvider{config: config}
}

// Transcribe sends the audio inline and returns the model's answer
func (p *GeminiProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	mimeType, ok := audioMIMEType(audioFile)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, filepath.Ext(audioFile))
	}

	data, err := os.ReadFile(audioFile)
	if err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(geminiPrompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := client.Models.GenerateContent(ctx, p.config.GeminiModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := cleanTranscript(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no transcription returned by Gemini")
	}
	return strings.ToUpper(text), nil
}

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the Gemini API is configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}
