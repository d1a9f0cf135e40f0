package transcribe

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	apperrors "codeberg.org/snonux/voicelab/internal/errors"
)

// SniffLen is the number of leading bytes ValidateAudio inspects
const SniffLen = 12

var mimeTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
	".m4a":  "audio/mp4",
}

// audioMIMEType returns the MIME type for a supported audio file name
func audioMIMEType(name string) (string, bool) {
	mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return mt, ok
}

// ValidateAudio checks that an upload looks like a supported audio file.
// name may lack an extension (browser recordings); header holds the first
// bytes of the content.
func ValidateAudio(name string, header []byte) error {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != "" {
		if _, ok := mimeTypes[ext]; !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, ext)
		}
	}

	if len(header) == 0 {
		return fmt.Errorf("%w: empty file", apperrors.ErrCorruptedFile)
	}

	if detectFormat(header) == "" {
		return fmt.Errorf("%w: unrecognized audio header", apperrors.ErrCorruptedFile)
	}
	return nil
}

// detectFormat identifies the container from its magic bytes
func detectFormat(h []byte) string {
	switch {
	case len(h) >= 12 && bytes.Equal(h[0:4], []byte("RIFF")) && bytes.Equal(h[8:12], []byte("WAVE")):
		return "wav"
	case bytes.HasPrefix(h, []byte("ID3")):
		return "mp3"
	case len(h) >= 2 && h[0] == 0xFF && h[1]&0xE0 == 0xE0:
		return "mp3"
	case bytes.HasPrefix(h, []byte("OggS")):
		return "ogg"
	case bytes.HasPrefix(h, []byte("fLaC")):
		return "flac"
	case bytes.HasPrefix(h, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "webm"
	case len(h) >= 8 && bytes.Equal(h[4:8], []byte("ftyp")):
		return "m4a"
	default:
		return ""
	}
}

// FormatExt returns the file extension of the container recognized in
// header, or "" when the header is not a supported audio format.
func FormatExt(header []byte) string {
	if f := detectFormat(header); f != "" {
		return "." + f
	}
	return ""
}
