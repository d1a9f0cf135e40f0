package phonetic

import (
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected string
		want     int
	}{
		{name: "unscoreable expectation", detected: "T AH M EY T OW", expected: "N/A", want: 0},
		{name: "empty detection against sentinel", detected: "", expected: "N/A", want: 0},
		{name: "identical", detected: "T AH M EY T OW", expected: "T AH M EY T OW", want: 100},
		{name: "case insensitive", detected: "t ah m ey t ow", expected: "T AH M EY T OW", want: 100},
		{name: "accent variant", detected: "D AE N S", expected: "D AA N S", want: 87},
		{name: "tomato accents", detected: "T AH M AA T AH", expected: "T AH M EY T OW", want: 71},
		{name: "spelled word", detected: "TOMATO", expected: "T AH M EY T OW", want: 20},
		{name: "truncated not rounded", detected: "L EH V ER", expected: "L IY V ER", want: 77},
		{name: "empty detection", detected: "", expected: "T AH M EY T OW", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.detected, tt.expected); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.detected, tt.expected, got, tt.want)
			}
		})
	}
}

func TestScorePartialOverlap(t *testing.T) {
	got := Score("D AE N S", "D AA N S")
	if got <= 0 || got >= 100 {
		t.Errorf("Expected partial score strictly between 0 and 100, got %d", got)
	}
}

func TestAssess(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name          string
		transcription string
		word          string
		accent        string
		want          Result
	}{
		{
			name:          "exact general american",
			transcription: "T AH M EY T OW",
			word:          "tomato",
			accent:        "GA",
			want: Result{
				Transcription:   "T AH M EY T OW",
				DetectedIPA:     "təmeɪtoʊ",
				ExpectedArpabet: "T AH M EY T OW",
				ExpectedIPA:     "təˈmeɪtoʊ",
				Score:           100,
				Match:           true,
			},
		},
		{
			name:          "empty accent defaults to GA",
			transcription: "D AE N S",
			word:          "dance",
			accent:        "",
			want: Result{
				Transcription:   "D AE N S",
				DetectedIPA:     "dæns",
				ExpectedArpabet: "D AE N S",
				ExpectedIPA:     "dæns",
				Score:           100,
				Match:           true,
			},
		},
		{
			name:          "received pronunciation mismatch",
			transcription: "D AE N S",
			word:          "dance",
			accent:        "RP",
			want: Result{
				Transcription:   "D AE N S",
				DetectedIPA:     "dæns",
				ExpectedArpabet: "D AA N S",
				ExpectedIPA:     "dɑːns",
				Score:           87,
				Match:           false,
			},
		},
		{
			name:          "unknown word",
			transcription: "HELLO",
			word:          "unknownword",
			accent:        "GA",
			want: Result{
				Transcription:   "HELLO",
				DetectedIPA:     "HELLO",
				ExpectedArpabet: "N/A",
				ExpectedIPA:     "N/A",
				Score:           0,
				Match:           false,
			},
		},
		{
			name:          "unrecognized accent falls through to miss",
			transcription: "T AH M EY T OW",
			word:          "tomato",
			accent:        "AU",
			want: Result{
				Transcription:   "T AH M EY T OW",
				DetectedIPA:     "təmeɪtoʊ",
				ExpectedArpabet: "N/A",
				ExpectedIPA:     "N/A",
				Score:           0,
				Match:           false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Assess(table, tt.transcription, tt.word, tt.accent)
			if got != tt.want {
				t.Errorf("Assess() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
