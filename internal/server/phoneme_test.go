package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"codeberg.org/snonux/voicelab/internal/history"
	"codeberg.org/snonux/voicelab/internal/models"
	"codeberg.org/snonux/voicelab/internal/observe"
	"codeberg.org/snonux/voicelab/internal/phonetic"
	"codeberg.org/snonux/voicelab/internal/processor"
	"codeberg.org/snonux/voicelab/internal/testutil"
)

func newPhonemeServer(t *testing.T, opts processor.Options) http.Handler {
	t.Helper()

	available := []models.Model{{ID: "wav2vec2", Name: "Wav2Vec2 Base"}}
	s, err := NewPhoneme(quietConfig(), processor.NewAnalyzer(opts), available)
	if err != nil {
		t.Fatalf("NewPhoneme() unexpected error: %v", err)
	}
	return s.Handler()
}

func analyzeRequest(t *testing.T, audio []byte, values map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, "audio", "take.wav", audio, values)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestPhonemeIndex(t *testing.T) {
	h := newPhonemeServer(t, processor.Options{})

	rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	for _, want := range []string{"tomato", "schedule", `value="RP"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("Expected index page to contain %q", want)
		}
	}
}

func TestModels(t *testing.T) {
	h := newPhonemeServer(t, processor.Options{})

	rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/models", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	want := `[{"id":"wav2vec2","name":"Wav2Vec2 Base"}]`
	if strings.TrimSpace(rec.Body.String()) != want {
		t.Errorf("Expected %s, got %s", want, rec.Body.String())
	}
}

func TestAnalyze(t *testing.T) {
	wav := testutil.GenerateWAV(16000, 1600)

	tests := []struct {
		name       string
		provider   *testutil.MockTranscriber
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantError  string // exact error, or prefix when ending in ": "
	}{
		{
			name:     "missing audio",
			provider: &testutil.MockTranscriber{Text: "T AH M EY T OW"},
			req: func(t *testing.T) *http.Request {
				body, ct := multipartBody(t, "", "", nil, map[string]string{"word": "tomato"})
				req := httptest.NewRequest(http.MethodPost, "/analyze", body)
				req.Header.Set("Content-Type", ct)
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file",
		},
		{
			name:     "not multipart",
			provider: &testutil.MockTranscriber{Text: "T AH M EY T OW"},
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("word=tomato"))
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "No audio file",
		},
		{
			name:     "model not loaded",
			provider: nil,
			req: func(t *testing.T) *http.Request {
				return analyzeRequest(t, wav, map[string]string{"word": "tomato"})
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Model not loaded",
		},
		{
			name:     "model unavailable",
			provider: &testutil.MockTranscriber{AvailableErr: errors.New("script missing")},
			req: func(t *testing.T) *http.Request {
				return analyzeRequest(t, wav, map[string]string{"word": "tomato"})
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Model not loaded",
		},
		{
			name:     "undecodable audio",
			provider: &testutil.MockTranscriber{Text: "T AH M EY T OW"},
			req: func(t *testing.T) *http.Request {
				return analyzeRequest(t, []byte("definitely not audio"), map[string]string{"word": "tomato"})
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Audio load failed: ",
		},
		{
			name:     "inference failure",
			provider: &testutil.MockTranscriber{Err: errors.New("tensor shape mismatch")},
			req: func(t *testing.T) *http.Request {
				return analyzeRequest(t, wav, map[string]string{"word": "tomato"})
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Inference failed: tensor shape mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := processor.Options{}
			if tt.provider != nil {
				opts.Provider = tt.provider
			}
			h := newPhonemeServer(t, opts)

			rec := doRequest(t, h, tt.req(t))
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			var body map[string]string
			decodeJSON(t, rec, &body)
			if strings.HasSuffix(tt.wantError, ": ") {
				if !strings.HasPrefix(body["error"], tt.wantError) {
					t.Errorf("Expected error starting with %q, got %q", tt.wantError, body["error"])
				}
			} else if body["error"] != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, body["error"])
			}
		})
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	mock := &testutil.MockTranscriber{Text: "T AH M EY T OW"}
	h := newPhonemeServer(t, processor.Options{Provider: mock})

	// accent omitted: defaults to GA
	req := analyzeRequest(t, testutil.GenerateWAV(16000, 1600), map[string]string{"word": "tomato"})
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}

	var result phonetic.Result
	decodeJSON(t, rec, &result)

	want := phonetic.Result{
		Transcription:   "T AH M EY T OW",
		DetectedIPA:     "təmeɪtoʊ",
		ExpectedArpabet: "T AH M EY T OW",
		ExpectedIPA:     "təˈmeɪtoʊ",
		Score:           100,
		Match:           true,
	}
	if result != want {
		t.Errorf("Expected %+v, got %+v", want, result)
	}
}

func TestAnalyzeUnknownWord(t *testing.T) {
	mock := &testutil.MockTranscriber{Text: "HH EH L OW"}
	h := newPhonemeServer(t, processor.Options{Provider: mock})

	req := analyzeRequest(t, testutil.GenerateWAV(16000, 1600), map[string]string{"word": "hello", "accent": "RP"})
	rec := doRequest(t, h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var result phonetic.Result
	decodeJSON(t, rec, &result)
	if result.ExpectedArpabet != "N/A" || result.ExpectedIPA != "N/A" || result.Score != 0 || result.Match {
		t.Errorf("Expected N/A result with zero score, got %+v", result)
	}
	if result.DetectedIPA != "hɛloʊ" {
		t.Errorf("Expected detected IPA hɛloʊ, got %s", result.DetectedIPA)
	}
}

func TestAnalyzeTooLarge(t *testing.T) {
	cfg := quietConfig()
	cfg.MaxUploadSize = 1024
	s, err := NewPhoneme(cfg, processor.NewAnalyzer(processor.Options{
		Provider: &testutil.MockTranscriber{Text: "D AE N S"},
	}), nil)
	if err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s.Handler(), analyzeRequest(t, testutil.GenerateWAV(16000, 16000), nil))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWords(t *testing.T) {
	h := newPhonemeServer(t, processor.Options{})

	rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/words?like=tomatoe&n=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Words       []string              `json:"words"`
		Suggestions []phonetic.Suggestion `json:"suggestions"`
	}
	decodeJSON(t, rec, &body)
	if len(body.Words) != 10 {
		t.Errorf("Expected 10 words, got %d", len(body.Words))
	}
	if len(body.Suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(body.Suggestions))
	}
	if body.Suggestions[0].Word != "tomato" {
		t.Errorf("Expected tomato first, got %s", body.Suggestions[0].Word)
	}

	rec = doRequest(t, h, httptest.NewRequest(http.MethodGet, "/words?like=x&n=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid n, got %d", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	h := newPhonemeServer(t, processor.Options{})
	rec := doRequest(t, h, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with history disabled, got %d", rec.Code)
	}

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	h = newPhonemeServer(t, processor.Options{
		Provider: &testutil.MockTranscriber{Text: "B AE TH"},
		Store:    store,
	})

	rec = doRequest(t, h, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty history, got %d %s", rec.Code, rec.Body.String())
	}

	for i := 0; i < 3; i++ {
		req := analyzeRequest(t, testutil.GenerateWAV(16000, 1600), map[string]string{"word": "bath"})
		if rec := doRequest(t, h, req); rec.Code != http.StatusOK {
			t.Fatalf("analyze failed: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec = doRequest(t, h, httptest.NewRequest(http.MethodGet, "/history?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var attempts []history.Attempt
	decodeJSON(t, rec, &attempts)
	if len(attempts) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].Word != "bath" || attempts[0].Result.Score != 100 {
		t.Errorf("Unexpected attempt: %+v", attempts[0])
	}

	rec = doRequest(t, h, httptest.NewRequest(http.MethodGet, "/history?limit=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative limit, got %d", rec.Code)
	}
}

func TestPhonemeMetrics(t *testing.T) {
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}

	cfg := quietConfig()
	cfg.Metrics = metrics
	s, err := NewPhoneme(cfg, processor.NewAnalyzer(processor.Options{Metrics: metrics}), nil)
	if err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", rec.Code)
	}

	rec = doRequest(t, s.Handler(), httptest.NewRequest(http.MethodGet, "/models", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty model list, got %s", rec.Body.String())
	}
}
