package server

import (
	"context"
	"net/http"

	"codeberg.org/snonux/voicelab/internal/observe"
	"codeberg.org/snonux/voicelab/internal/workspace"
)

// Converter turns the audio file at inputPath into a .mid file inside
// outputDir
type Converter interface {
	Convert(ctx context.Context, inputPath, outputDir string) error
}

// NewMIDI creates the audio to MIDI conversion service
func NewMIDI(cfg Config, converter Converter) (*Server, error) {
	s, err := newServer("midi", cfg)
	if err != nil {
		return nil, err
	}

	h := &midiHandlers{Server: s, converter: converter}
	s.router.Get("/", h.handleIndex)
	s.router.Post("/upload", h.handleUpload)

	return s, nil
}

type midiHandlers struct {
	*Server
	converter Converter
}

// handleIndex serves the upload page
func (h *midiHandlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.render(w, "midi.html", nil)
}

// handleUpload converts an uploaded recording and returns the MIDI file
func (h *midiHandlers) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		switch {
		case isTooLarge(err):
			writeText(w, http.StatusRequestEntityTooLarge, "File too large")
		case r.MultipartForm != nil && len(r.MultipartForm.Value["file"]) > 0:
			// Browsers send an empty file input as a part without a file name.
			writeText(w, http.StatusBadRequest, "No file selected")
		default:
			writeText(w, http.StatusBadRequest, "No file uploaded")
		}
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeText(w, http.StatusBadRequest, "No file selected")
		return
	}

	ws, err := workspace.Create("voicelab-midi")
	if err != nil {
		h.logger.Error("workspace creation failed", "error", err)
		writeText(w, http.StatusInternalServerError, "MIDI conversion failed")
		return
	}
	defer ws.Cleanup()

	inputPath, _, err := ws.Save(header.Filename, file)
	if err != nil {
		h.logger.Error("saving upload failed", "error", err)
		writeText(w, http.StatusInternalServerError, "MIDI conversion failed")
		return
	}

	if err := h.converter.Convert(r.Context(), inputPath, ws.Dir); err != nil {
		h.logger.Error("midi conversion failed", "file", header.Filename, "error", err)
		h.recordConversion(r.Context(), observe.StatusError)
		writeText(w, http.StatusInternalServerError, "MIDI conversion failed")
		return
	}

	midiPath, ok := ws.FindByExt(".mid")
	if !ok {
		h.logger.Error("midi conversion produced no output", "file", header.Filename)
		h.recordConversion(r.Context(), observe.StatusError)
		writeText(w, http.StatusInternalServerError, "MIDI conversion failed")
		return
	}
	h.recordConversion(r.Context(), observe.StatusOK)

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="output.mid"`)
	http.ServeFile(w, r, midiPath)
}

func (h *midiHandlers) recordConversion(ctx context.Context, status string) {
	if h.config.Metrics != nil {
		h.config.Metrics.RecordMIDIConversion(ctx, status)
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}
