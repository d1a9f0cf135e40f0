package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MockTranscriber implements the transcription provider interface
type MockTranscriber struct {
	ProviderName string
	Text         string
	Err          error
	AvailableErr error

	mu    sync.Mutex
	Calls []string
}

// Transcribe records the call and returns the configured text or error
func (m *MockTranscriber) Transcribe(ctx context.Context, audioFile string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, audioFile)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

// Name returns the configured provider name
func (m *MockTranscriber) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// IsAvailable returns the configured availability error
func (m *MockTranscriber) IsAvailable() error {
	return m.AvailableErr
}

// CallCount returns the number of Transcribe calls
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockConverter implements the MIDI converter interface by writing a
// fixed MIDI payload next to the input file
type MockConverter struct {
	MIDI []byte
	Err  error
	// SkipOutput simulates a model run that produces no .mid file
	SkipOutput bool
}

// Convert writes <input>_basic_pitch.mid into outputDir
func (m *MockConverter) Convert(ctx context.Context, inputPath, outputDir string) error {
	if m.Err != nil {
		return m.Err
	}
	if m.SkipOutput {
		return nil
	}
	base := filepath.Base(inputPath)
	name := base[:len(base)-len(filepath.Ext(base))] + "_basic_pitch.mid"
	if err := os.WriteFile(filepath.Join(outputDir, name), m.MIDI, 0644); err != nil {
		return fmt.Errorf("write mock midi: %w", err)
	}
	return nil
}

// MinimalMIDI returns a valid single-track MIDI file with no events
func MinimalMIDI() []byte {
	return []byte{
		'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 0, 0, 1, 0, 220,
		'M', 'T', 'r', 'k', 0, 0, 0, 4, 0, 0xFF, 0x2F, 0,
	}
}
