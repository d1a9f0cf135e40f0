package phonetic

import (
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Accent identifies a reference pronunciation dialect.
type Accent string

const (
	// GeneralAmerican is the default accent variant.
	GeneralAmerican Accent = "GA"
	// ReceivedPronunciation is the British reference accent.
	ReceivedPronunciation Accent = "RP"
)

// Valid reports whether a is one of the known accent codes.
func (a Accent) Valid() bool {
	return a == GeneralAmerican || a == ReceivedPronunciation
}

// Entry is the expected pronunciation of a word in one accent.
type Entry struct {
	Arpabet string `yaml:"arpabet" json:"arpabet"`
	IPA     string `yaml:"ipa" json:"ipa"`
}

// Found reports whether e is a real table entry rather than the miss value.
func (e Entry) Found() bool {
	return e.Arpabet != NotAvailable
}

var missingEntry = Entry{Arpabet: NotAvailable, IPA: NotAvailable}

// Table is an immutable word/accent pronunciation dictionary.
// It is safe for concurrent use.
type Table struct {
	entries map[string]map[Accent]Entry
	words   []string
}

// NewTable builds a table from the given entries. The input map is copied.
func NewTable(entries map[string]map[Accent]Entry) (*Table, error) {
	t := &Table{entries: make(map[string]map[Accent]Entry, len(entries))}
	for word, accents := range entries {
		if word == "" {
			return nil, fmt.Errorf("empty word in reference table")
		}
		variants := make(map[Accent]Entry, len(accents))
		for accent, entry := range accents {
			if !accent.Valid() {
				return nil, fmt.Errorf("word %q: unknown accent %q", word, accent)
			}
			if entry.Arpabet == "" || entry.IPA == "" {
				return nil, fmt.Errorf("word %q accent %s: arpabet and ipa are required", word, accent)
			}
			entry.IPA = norm.NFC.String(entry.IPA)
			variants[accent] = entry
		}
		t.entries[word] = variants
		t.words = append(t.words, word)
	}
	sort.Strings(t.words)
	return t, nil
}

// DefaultTable returns the built-in reference vocabulary.
func DefaultTable() *Table {
	t, err := NewTable(map[string]map[Accent]Entry{
		"tomato": {
			GeneralAmerican:       {Arpabet: "T AH M EY T OW", IPA: "təˈmeɪtoʊ"},
			ReceivedPronunciation: {Arpabet: "T AH M AA T AH", IPA: "təˈmɑːtəʊ"},
		},
		"dance": {
			GeneralAmerican:       {Arpabet: "D AE N S", IPA: "dæns"},
			ReceivedPronunciation: {Arpabet: "D AA N S", IPA: "dɑːns"},
		},
		"bath": {
			GeneralAmerican:       {Arpabet: "B AE TH", IPA: "bæθ"},
			ReceivedPronunciation: {Arpabet: "B AA TH", IPA: "bɑːθ"},
		},
		"grass": {
			GeneralAmerican:       {Arpabet: "G R AE S", IPA: "ɡræs"},
			ReceivedPronunciation: {Arpabet: "G R AA S", IPA: "ɡrɑːs"},
		},
		"lot": {
			GeneralAmerican:       {Arpabet: "L AA T", IPA: "lɑt"},
			ReceivedPronunciation: {Arpabet: "L AO T", IPA: "lɒt"},
		},
		"cloth": {
			GeneralAmerican:       {Arpabet: "K L AO TH", IPA: "klɔθ"},
			ReceivedPronunciation: {Arpabet: "K L AO TH", IPA: "klɒθ"},
		},
		"phone": {
			GeneralAmerican:       {Arpabet: "F OW N", IPA: "foʊn"},
			ReceivedPronunciation: {Arpabet: "F AH N", IPA: "fəʊn"},
		},
		"schedule": {
			GeneralAmerican:       {Arpabet: "S K EH JH UL", IPA: "ˈskɛdʒuːl"},
			ReceivedPronunciation: {Arpabet: "SH EH JH UL", IPA: "ˈʃɛdʒuːl"},
		},
		"lever": {
			GeneralAmerican:       {Arpabet: "L EH V ER", IPA: "ˈlɛvɚ"},
			ReceivedPronunciation: {Arpabet: "L IY V ER", IPA: "ˈliːvə"},
		},
		"route": {
			GeneralAmerican:       {Arpabet: "R UW T", IPA: "rut"},
			ReceivedPronunciation: {Arpabet: "R AW T", IPA: "raʊt"},
		},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the entry for word in accent. Matching is exact and
// case-sensitive; a miss yields an entry whose fields are both "N/A".
func (t *Table) Lookup(word, accent string) Entry {
	if variants, ok := t.entries[word]; ok {
		if entry, ok := variants[Accent(accent)]; ok {
			return entry
		}
	}
	return missingEntry
}

// Words returns the vocabulary in alphabetical order.
func (t *Table) Words() []string {
	out := make([]string, len(t.words))
	copy(out, t.words)
	return out
}

// Len returns the number of words in the table.
func (t *Table) Len() int {
	return len(t.words)
}

// tableFile is the on-disk YAML layout of a reference table.
type tableFile struct {
	Words map[string]map[Accent]Entry `yaml:"words"`
}

// LoadTable reads a reference table from a YAML file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table %q: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("parse reference table %q: %w", path, err)
	}
	return t, nil
}

// ReadTable decodes a YAML reference table from r.
func ReadTable(r io.Reader) (*Table, error) {
	var tf tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tf.Words) == 0 {
		return nil, fmt.Errorf("no words defined")
	}
	return NewTable(tf.Words)
}
