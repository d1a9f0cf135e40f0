package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
	"codeberg.org/snonux/voicelab/internal/exec"
)

// exitAudioLoad is the exit code the transcription script uses when it
// cannot decode the input audio.
const exitAudioLoad = 2

// ScriptProvider runs a local wav2vec2 model through a Python script that
// prints the CTC-decoded transcription on stdout.
type ScriptProvider struct {
	runner *exec.Runner
	script string
}

// NewScriptProvider creates a provider backed by the transcription script
func NewScriptProvider(config *Config) *ScriptProvider {
	script := config.Script
	if script == "" {
		script = "transcribe.py"
	}
	return &ScriptProvider{
		runner: exec.NewRunner(config.PythonPath, config.ScriptsDir),
		script: script,
	}
}

// Transcribe runs the script on audioFile
func (p *ScriptProvider) Transcribe(ctx context.Context, audioFile string) (string, error) {
	result, err := p.runner.RunScript(ctx, p.script, audioFile)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("transcription interrupted: %w", ctx.Err())
		}
		var cause error = err
		if result.ExitCode == exitAudioLoad {
			cause = apperrors.ErrCorruptedFile
		}
		return "", apperrors.NewProcessError("wav2vec2", "transcription",
			result.ExitCode, strings.TrimSpace(result.Stderr), cause)
	}

	return strings.TrimSpace(result.Stdout), nil
}

// Name returns the provider name
func (p *ScriptProvider) Name() string {
	return "wav2vec2"
}

// IsAvailable checks that the transcription script exists
func (p *ScriptProvider) IsAvailable() error {
	path := filepath.Join(p.runner.ScriptsDir, p.script)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("transcription script not found: %s", path)
		}
		return fmt.Errorf("transcription script: %w", err)
	}
	return nil
}
