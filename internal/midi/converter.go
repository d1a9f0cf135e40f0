// Package midi converts recorded audio to MIDI with the Basic Pitch model.
package midi

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
	"codeberg.org/snonux/voicelab/internal/exec"
)

// Converter runs Basic Pitch through a Python script that writes a
// <name>_basic_pitch.mid file into the output directory
type Converter struct {
	runner *exec.Runner
	script string
}

// NewConverter creates a new MIDI converter
func NewConverter(runner *exec.Runner, script string) *Converter {
	if script == "" {
		script = "to_midi.py"
	}
	return &Converter{runner: runner, script: script}
}

// Convert transcribes the notes of inputPath into a MIDI file in outputDir
func (c *Converter) Convert(ctx context.Context, inputPath, outputDir string) error {
	result, err := c.runner.RunScript(ctx, c.script, inputPath, outputDir)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("midi conversion interrupted: %w", ctx.Err())
		}
		return apperrors.NewProcessError("basic-pitch", "midi_conversion",
			result.ExitCode, strings.TrimSpace(result.Stderr), err)
	}
	return nil
}

// IsAvailable checks that the conversion script exists
func (c *Converter) IsAvailable() error {
	path := filepath.Join(c.runner.ScriptsDir, c.script)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("midi script not found: %s", path)
	}
	return nil
}

// IsMIDI reports whether data starts with a Standard MIDI File header
func IsMIDI(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "MThd"
}
