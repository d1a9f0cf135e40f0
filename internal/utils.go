package internal

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
)

// Version is the application version reported by the CLI
const Version = "0.3.0"

var attemptSeq atomic.Uint64

// GenerateAttemptID creates a unique ID for a scored attempt based on
// timestamp and target word. The sequence keeps IDs unique within the
// millisecond.
// Format: epochMillis_md5(word)[:8]_seq
func GenerateAttemptID(word string) string {
	epochMillis := time.Now().UnixMilli()

	hash := md5.Sum([]byte(word))
	hashStr := hex.EncodeToString(hash[:])[:8]

	return fmt.Sprintf("%d_%s_%d", epochMillis, hashStr, attemptSeq.Add(1))
}

// SanitizeFilename creates a safe file name from an uploaded name. Any
// directory part is dropped and leading dots are removed.
func SanitizeFilename(s string) string {
	s = filepath.Base(strings.ReplaceAll(s, "\\", "/"))

	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	result := strings.TrimLeft(b.String(), ".")
	if result == "" {
		return "upload"
	}
	return result
}

// isAlphaNumeric checks if a rune is a letter or digit
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
