package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/voicelab/internal"
	apperrors "codeberg.org/snonux/voicelab/internal/errors"
	"codeberg.org/snonux/voicelab/internal/history"
	"codeberg.org/snonux/voicelab/internal/observe"
	"codeberg.org/snonux/voicelab/internal/phonetic"
	"codeberg.org/snonux/voicelab/internal/transcribe"
	"codeberg.org/snonux/voicelab/internal/workspace"
)

// DefaultMaxUploadSize bounds the size of an uploaded recording
const DefaultMaxUploadSize = 32 << 20

// Options configures an Analyzer. A nil Table selects the built-in
// vocabulary; Store and Metrics are optional.
type Options struct {
	Table    *phonetic.Table
	Provider transcribe.Provider
	Store    *history.Store
	Metrics  *observe.Metrics
	Timeout  time.Duration
	MaxSize  int64
}

// Analyzer scores recordings against the reference table
type Analyzer struct {
	table    *phonetic.Table
	provider transcribe.Provider
	store    *history.Store
	metrics  *observe.Metrics
	timeout  time.Duration
	maxSize  int64
}

// NewAnalyzer creates a new analyzer
func NewAnalyzer(opts Options) *Analyzer {
	table := opts.Table
	if table == nil {
		table = phonetic.DefaultTable()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &Analyzer{
		table:    table,
		provider: opts.Provider,
		store:    opts.Store,
		metrics:  opts.Metrics,
		timeout:  timeout,
		maxSize:  maxSize,
	}
}

// Table returns the reference table used for scoring
func (a *Analyzer) Table() *phonetic.Table {
	return a.table
}

// Store returns the history store, or nil when history is disabled
func (a *Analyzer) Store() *history.Store {
	return a.store
}

// Ready reports whether a transcription provider can serve requests
func (a *Analyzer) Ready() error {
	if a.provider == nil {
		return apperrors.ErrModelUnavailable
	}
	if err := a.provider.IsAvailable(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrModelUnavailable, err)
	}
	return nil
}

// Analyze saves the upload r into a private workspace and analyzes it.
// name is the client supplied file name and may be empty.
func (a *Analyzer) Analyze(ctx context.Context, name string, r io.Reader, word, accent string) (phonetic.Result, error) {
	if err := a.Ready(); err != nil {
		return phonetic.Result{}, err
	}

	ws, err := workspace.Create("voicelab-analyze")
	if err != nil {
		return phonetic.Result{}, err
	}
	defer ws.Cleanup()

	if name == "" {
		name = "recording"
	}

	// Read one byte past the limit to detect oversized uploads.
	path, n, err := ws.Save(name, io.LimitReader(r, a.maxSize+1))
	if err != nil {
		return phonetic.Result{}, err
	}
	if n > a.maxSize {
		return phonetic.Result{}, fmt.Errorf("%w: %d bytes", apperrors.ErrFileTooLarge, a.maxSize)
	}

	if path, err = withFormatExt(path); err != nil {
		return phonetic.Result{}, err
	}

	return a.AnalyzeFile(ctx, path, word, accent)
}

// AnalyzeFile transcribes the recording at audioPath and scores it
// against word in accent.
func (a *Analyzer) AnalyzeFile(ctx context.Context, audioPath, word, accent string) (phonetic.Result, error) {
	if accent == "" {
		accent = string(phonetic.GeneralAmerican)
	}
	if err := a.Ready(); err != nil {
		a.record(ctx, word, accent, observe.StatusError, 0)
		return phonetic.Result{}, err
	}

	if err := checkAudio(audioPath); err != nil {
		a.record(ctx, word, accent, observe.StatusError, 0)
		return phonetic.Result{}, err
	}

	tctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	transcription, err := a.provider.Transcribe(tctx, audioPath)
	if a.metrics != nil {
		a.metrics.RecordTranscription(ctx, a.provider.Name(), time.Since(start).Seconds())
	}
	if err != nil {
		a.record(ctx, word, accent, observe.StatusError, 0)
		if errors.Is(err, context.DeadlineExceeded) {
			return phonetic.Result{}, fmt.Errorf("transcription timed out after %s: %w", a.timeout, err)
		}
		return phonetic.Result{}, err
	}

	result := a.Score(strings.TrimSpace(transcription), word, accent)
	a.record(ctx, word, accent, observe.StatusOK, result.Score)

	if a.store != nil {
		attempt := history.Attempt{
			ID:       internal.GenerateAttemptID(word),
			Word:     word,
			Accent:   accent,
			Provider: a.provider.Name(),
			Result:   result,
		}
		if err := a.store.Record(ctx, attempt); err != nil {
			slog.Warn("failed to record attempt", "word", word, "error", err)
		}
	}

	return result, nil
}

// Score scores an already transcribed recording
func (a *Analyzer) Score(transcription, word, accent string) phonetic.Result {
	return phonetic.Assess(a.table, transcription, word, accent)
}

func (a *Analyzer) record(ctx context.Context, word, accent, status string, score int) {
	if a.metrics == nil {
		return
	}
	// Words come from clients; keep attribute values to the vocabulary.
	if !a.table.Lookup(word, accent).Found() {
		word, accent = "unknown", "unknown"
	}
	a.metrics.RecordAnalysis(ctx, word, accent, status, score)
}

// checkAudio sniffs the file header before handing it to a model
func checkAudio(path string) error {
	header, err := readHeader(path)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCorruptedFile, err)
	}
	return transcribe.ValidateAudio(filepath.Base(path), header)
}

// withFormatExt gives an extensionless upload (browser recordings) the
// extension matching its content, since hosted models pick the decoder by
// file name. Unrecognized content is left for checkAudio to reject.
func withFormatExt(path string) (string, error) {
	if filepath.Ext(path) != "" {
		return path, nil
	}
	header, err := readHeader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrCorruptedFile, err)
	}
	ext := transcribe.FormatExt(header)
	if ext == "" {
		return path, nil
	}
	if err := os.Rename(path, path+ext); err != nil {
		return "", fmt.Errorf("failed to rename recording: %w", err)
	}
	return path + ext, nil
}

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, transcribe.SniffLen)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return header[:n], nil
}
