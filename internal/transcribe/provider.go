package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Provider defines the interface for speech transcription providers
type Provider interface {
	// Transcribe returns the raw transcription of the audio file
	Transcribe(ctx context.Context, audioFile string) (string, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for transcription providers
type Config struct {
	Provider string        // Provider name: "wav2vec2", "openai" or "gemini"
	Fallback string        // Optional fallback provider name
	Timeout  time.Duration // Per-request transcription timeout

	// Local script settings
	PythonPath string
	ScriptsDir string
	Script     string

	// OpenAI-specific settings
	OpenAIKey      string
	OpenAIModel    string // "whisper-1", "gpt-4o-transcribe", "gpt-4o-mini-transcribe"
	OpenAILanguage string
	OpenAIPrompt   string
	CacheDir       string
	EnableCache    bool

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string

	// Circuit breaker settings
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:        "wav2vec2",
		Timeout:         60 * time.Second,
		ScriptsDir:      "scripts/python",
		Script:          "transcribe.py",
		OpenAIModel:     "whisper-1",
		OpenAILanguage:  "en",
		OpenAIPrompt:    "A single English word spoken in isolation.",
		GeminiModel:     "gemini-2.5-flash",
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// NewProvider creates the provider chain described by config: the primary
// provider, an optional fallback, wrapped in a circuit breaker.
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newNamedProvider(config.Provider, config)
	if err != nil {
		return nil, err
	}

	provider := primary
	if config.Fallback != "" && config.Fallback != config.Provider {
		fallback, err := newNamedProvider(config.Fallback, config)
		if err != nil {
			return nil, fmt.Errorf("fallback provider: %w", err)
		}
		provider = NewProviderWithFallback(primary, fallback)
	}

	return NewBreakerProvider(provider, config.BreakerFailures, config.BreakerCooldown), nil
}

func newNamedProvider(name string, config *Config) (Provider, error) {
	switch name {
	case "wav2vec2":
		return NewScriptProvider(config), nil

	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(config), nil

	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Transcribe tries the primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Transcribe(ctx context.Context, audioFile string) (string, error) {
	if err := p.primary.IsAvailable(); err != nil {
		return p.fallback.Transcribe(ctx, audioFile)
	}

	text, err := p.primary.Transcribe(ctx, audioFile)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		slog.Warn("primary transcription provider failed, falling back",
			"primary", p.primary.Name(), "fallback", p.fallback.Name(), "error", err)
		return p.fallback.Transcribe(ctx, audioFile)
	}
	return text, nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
