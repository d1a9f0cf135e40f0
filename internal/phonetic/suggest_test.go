package phonetic

import (
	"testing"
)

func TestSuggest(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name  string
		query string
		first string
	}{
		{name: "misspelling", query: "tomatoe", first: "tomato"},
		{name: "sounds alike", query: "grace", first: "grass"},
		{name: "case and spaces", query: "  Lever ", first: "lever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Suggest(tt.query, 3)
			if len(got) != 3 {
				t.Fatalf("Expected 3 suggestions, got %d", len(got))
			}
			if got[0].Word != tt.first {
				t.Errorf("Expected first suggestion %q, got %q (%+v)", tt.first, got[0].Word, got)
			}
			if !got[0].SoundsAlike {
				t.Errorf("Expected %q to sound alike %q", got[0].Word, tt.query)
			}
		})
	}
}

func TestSuggestLimits(t *testing.T) {
	table := DefaultTable()

	if got := table.Suggest("", 5); got != nil {
		t.Errorf("Expected no suggestions for empty query, got %v", got)
	}
	if got := table.Suggest("x", 0); len(got) != table.Len() {
		t.Errorf("Expected all %d words, got %d", table.Len(), len(got))
	}
}
