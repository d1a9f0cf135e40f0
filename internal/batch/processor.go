// Package batch scores pre-transcribed recordings listed in a text file.
package batch

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/voicelab/internal/phonetic"
)

// Entry is one line of a batch file
type Entry struct {
	Line          int
	Word          string
	Accent        string
	Transcription string
}

// ReadBatchFile reads scoring entries from a file.
// Supported line formats:
//   - "tomato = T AH M EY T OW" (General American)
//   - "tomato RP = T AH M AA T AH" (explicit accent)
//
// Blank lines and lines starting with '#' are skipped.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(string(content))
}

// ParseBatch parses batch file content
func ParseBatch(content string) ([]Entry, error) {
	var entries []Entry

	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		target, transcription, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '=' between word and transcription", i+1)
		}

		fields := strings.Fields(target)
		transcription = strings.TrimSpace(transcription)
		if len(fields) == 0 || transcription == "" {
			return nil, fmt.Errorf("line %d: word and transcription are required", i+1)
		}
		if len(fields) > 2 {
			return nil, fmt.Errorf("line %d: expected 'word [accent]', got %q", i+1, strings.TrimSpace(target))
		}

		entry := Entry{
			Line:          i + 1,
			Word:          fields[0],
			Accent:        string(phonetic.GeneralAmerican),
			Transcription: transcription,
		}
		if len(fields) == 2 {
			accent := phonetic.Accent(strings.ToUpper(fields[1]))
			if !accent.Valid() {
				return nil, fmt.Errorf("line %d: unknown accent %q", i+1, fields[1])
			}
			entry.Accent = string(accent)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Report summarizes a scored batch
type Report struct {
	Results []phonetic.Result
	Entries []Entry
	Matches int
	Average float64
}

// Score scores every entry against table
func Score(table *phonetic.Table, entries []Entry) Report {
	report := Report{
		Results: make([]phonetic.Result, 0, len(entries)),
		Entries: entries,
	}

	total := 0
	for _, e := range entries {
		result := phonetic.Assess(table, e.Transcription, e.Word, e.Accent)
		report.Results = append(report.Results, result)
		total += result.Score
		if result.Match {
			report.Matches++
		}
	}
	if len(entries) > 0 {
		report.Average = float64(total) / float64(len(entries))
	}
	return report
}
