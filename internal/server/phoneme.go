package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
	"codeberg.org/snonux/voicelab/internal/history"
	"codeberg.org/snonux/voicelab/internal/models"
	"codeberg.org/snonux/voicelab/internal/phonetic"
	"codeberg.org/snonux/voicelab/internal/processor"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	defaultSuggestions  = 5
)

// NewPhoneme creates the pronunciation scoring service
func NewPhoneme(cfg Config, analyzer *processor.Analyzer, available []models.Model) (*Server, error) {
	s, err := newServer("phoneme", cfg)
	if err != nil {
		return nil, err
	}

	h := &phonemeHandlers{Server: s, analyzer: analyzer, models: available}
	r := s.router
	r.Get("/", h.handleIndex)
	r.Get("/models", h.handleModels)
	r.Get("/words", h.handleWords)
	r.Get("/history", h.handleHistory)
	r.Post("/analyze", h.handleAnalyze)

	return s, nil
}

type phonemeHandlers struct {
	*Server
	analyzer *processor.Analyzer
	models   []models.Model
}

// handleIndex serves the recording page
func (h *phonemeHandlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, "phoneme.html", map[string]any{
		"Words":   h.analyzer.Table().Words(),
		"Accents": []phonetic.Accent{phonetic.GeneralAmerican, phonetic.ReceivedPronunciation},
	})
}

// handleModels lists the configured transcription models
func (h *phonemeHandlers) handleModels(w http.ResponseWriter, r *http.Request) {
	available := h.models
	if available == nil {
		available = []models.Model{}
	}
	writeJSON(w, http.StatusOK, available)
}

// handleWords lists the vocabulary, with suggestions when ?like= is set
func (h *phonemeHandlers) handleWords(w http.ResponseWriter, r *http.Request) {
	table := h.analyzer.Table()
	resp := map[string]any{"words": table.Words()}

	if like := r.URL.Query().Get("like"); like != "" {
		n := defaultSuggestions
		if v := r.URL.Query().Get("n"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid n")
				return
			}
			n = parsed
		}
		resp["suggestions"] = table.Suggest(like, n)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHistory returns the most recent scored attempts
func (h *phonemeHandlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	store := h.analyzer.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, "History disabled")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	attempts, err := store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "History unavailable")
		return
	}
	if attempts == nil {
		attempts = []history.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

// handleAnalyze scores an uploaded recording of word
func (h *phonemeHandlers) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)

	file, header, err := r.FormFile("audio")
	if err != nil {
		if isTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "Audio load failed: "+apperrors.ErrFileTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "No audio file")
		return
	}
	defer file.Close()

	if err := h.analyzer.Ready(); err != nil {
		h.logger.Warn("analyze without model", "error", err)
		writeError(w, http.StatusInternalServerError, "Model not loaded")
		return
	}

	accent := r.FormValue("accent")
	if accent == "" {
		accent = string(phonetic.GeneralAmerican)
	}
	word := r.FormValue("word")

	result, err := h.analyzer.Analyze(r.Context(), header.Filename, file, word, accent)
	if err != nil {
		status, msg := analyzeError(err)
		h.logger.Warn("analyze failed", "word", word, "accent", accent, "status", status, "error", err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// analyzeError maps an analysis failure to a status code and message
func analyzeError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrModelUnavailable):
		return http.StatusInternalServerError, "Model not loaded"
	case errors.Is(err, apperrors.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "Audio load failed: " + err.Error()
	case errors.Is(err, apperrors.ErrCorruptedFile), errors.Is(err, apperrors.ErrUnsupportedFormat):
		return http.StatusBadRequest, "Audio load failed: " + err.Error()
	default:
		return http.StatusInternalServerError, "Inference failed: " + err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
