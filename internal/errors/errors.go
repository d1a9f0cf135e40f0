package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected request-level failure modes
var (
	ErrNoAudio           = errors.New("no audio file")
	ErrModelUnavailable  = errors.New("model not loaded")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptedFile     = errors.New("file corrupted or unreadable")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrNoOutput          = errors.New("no output produced")
)

// ProcessError represents a failure in an external model script
type ProcessError struct {
	Tool     string // "wav2vec2", "basic-pitch"
	Stage    string // "transcription", "midi_conversion"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Cause
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}
