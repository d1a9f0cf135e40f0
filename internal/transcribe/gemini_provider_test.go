package transcribe

import (
	"context"
	"errors"
	"testing"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
)

func TestGeminiProviderUnsupportedFormat(t *testing.T) {
	p := NewGeminiProvider(&Config{GeminiKey: "test-key", GeminiModel: "gemini-2.5-flash"})

	_, err := p.Transcribe(context.Background(), "clip.aiff")
	if !errors.Is(err, apperrors.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestGeminiProviderIsAvailable(t *testing.T) {
	p := NewGeminiProvider(&Config{})
	if p.IsAvailable() == nil {
		t.Error("Expected error without API key")
	}
	if p.Name() != "gemini" {
		t.Errorf("Name() = %q, want gemini", p.Name())
	}

	p = NewGeminiProvider(&Config{GeminiKey: "k"})
	if err := p.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() unexpected error: %v", err)
	}
}
