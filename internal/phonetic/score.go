package phonetic

import (
	"strings"
)

// Score rates how closely detected matches expected on a 0-100 scale.
// Comparison is case-insensitive and the percentage is truncated, not
// rounded. An "N/A" expectation always scores 0.
func Score(detected, expected string) int {
	if expected == NotAvailable {
		return 0
	}
	m := NewSequenceMatcher(strings.ToUpper(detected), strings.ToUpper(expected))
	return int(m.Ratio() * 100)
}

// Result is the outcome of assessing one transcription.
type Result struct {
	Transcription   string `json:"transcription"`
	DetectedIPA     string `json:"detected_ipa"`
	ExpectedArpabet string `json:"expected_arpabet"`
	ExpectedIPA     string `json:"expected_ipa"`
	Score           int    `json:"score"`
	Match           bool   `json:"match"`
}

// Assess scores transcription against the reference pronunciation of word
// in accent. An empty accent means General American. The score compares
// the raw transcription with the expected ARPABET form, not with IPA.
func Assess(table *Table, transcription, word, accent string) Result {
	if accent == "" {
		accent = string(GeneralAmerican)
	}
	entry := table.Lookup(word, accent)
	score := Score(transcription, entry.Arpabet)

	return Result{
		Transcription:   transcription,
		DetectedIPA:     Normalize(transcription),
		ExpectedArpabet: entry.Arpabet,
		ExpectedIPA:     entry.IPA,
		Score:           score,
		Match:           score == 100,
	}
}
