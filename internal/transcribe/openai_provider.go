package transcribe

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI's transcription API
type OpenAIProvider struct {
	client      *openai.Client
	config      *Config
	cacheDir    string
	enableCache bool
}

// NewOpenAIProvider creates a new OpenAI transcription provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	provider := &OpenAIProvider{
		client:      openai.NewClient(config.OpenAIKey),
		config:      config,
		cacheDir:    config.CacheDir,
		enableCache: config.EnableCache,
	}

	if provider.enableCache && provider.cacheDir != "" {
		if err := os.MkdirAll(provider.cacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return provider, nil
}

// Transcribe uploads the audio file and returns the recognized text
func (p *OpenAIProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	var cacheFile string
	if p.enableCache {
		key, err := p.cacheKey(audioFile)
		if err != nil {
			return "", err
		}
		cacheFile = p.getCacheFilePath(key)
		if data, err := os.ReadFile(cacheFile); err == nil {
			return string(data), nil
		}
	}

	req := openai.AudioRequest{
		Model:    p.model(),
		FilePath: audioFile,
		Prompt:   p.config.OpenAIPrompt,
		Language: p.config.OpenAILanguage,
		Format:   openai.AudioResponseFormatText,
	}

	resp, err := p.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI transcription API error: %w", err)
	}

	text := cleanTranscript(resp.Text)

	if cacheFile != "" {
		_ = os.MkdirAll(filepath.Dir(cacheFile), 0755)
		_ = os.WriteFile(cacheFile, []byte(text), 0644) // Ignore cache errors
	}

	return text, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

func (p *OpenAIProvider) model() string {
	if p.config.OpenAIModel == "" {
		return openai.Whisper1
	}
	return p.config.OpenAIModel
}

// cacheKey hashes the audio content together with the request settings
func (p *OpenAIProvider) cacheKey(audioFile string) (string, error) {
	f, err := os.Open(audioFile)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	h.Write([]byte(p.model()))
	h.Write([]byte(p.config.OpenAILanguage))
	h.Write([]byte(p.config.OpenAIPrompt))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// getCacheFilePath maps a cache key to a file, using the first two
// characters as subdirectory
func (p *OpenAIProvider) getCacheFilePath(key string) string {
	return filepath.Join(p.cacheDir, key[:2], key[2:]+".txt")
}

// cleanTranscript trims whitespace and trailing sentence punctuation that
// hosted models add to single-word answers.
func cleanTranscript(text string) string {
	return strings.TrimRight(strings.TrimSpace(text), ".!?,;:")
}
