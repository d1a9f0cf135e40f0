package phonetic

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// Suggestion is a vocabulary word ranked against a query.
type Suggestion struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"similarity"`
	// SoundsAlike is set when the Double Metaphone codes of query and word
	// overlap.
	SoundsAlike bool `json:"sounds_alike"`
}

// Suggest ranks the vocabulary by Jaro-Winkler similarity to query and
// returns at most n suggestions. Words that sound alike rank first; ties
// are broken alphabetically. n <= 0 returns every word.
func (t *Table) Suggest(query string, n int) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	qp, qs := matchr.DoubleMetaphone(q)

	out := make([]Suggestion, 0, len(t.words))
	for _, word := range t.words {
		w := strings.ToLower(word)
		wp, ws := matchr.DoubleMetaphone(w)
		out = append(out, Suggestion{
			Word:        word,
			Similarity:  matchr.JaroWinkler(q, w, false),
			SoundsAlike: codesOverlap(qp, qs, wp, ws),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SoundsAlike != out[j].SoundsAlike {
			return out[i].SoundsAlike
		}
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Word < out[j].Word
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func codesOverlap(ap, as, bp, bs string) bool {
	for _, a := range []string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || a == bs {
			return true
		}
	}
	return false
}
