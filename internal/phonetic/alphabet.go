package phonetic

import (
	"strings"
)

// NotAvailable is the sentinel used for unknown words and unscoreable input.
const NotAvailable = "N/A"

// arpabetToIPA maps stress-free ARPABET symbols to IPA.
var arpabetToIPA = map[string]string{
	// Vowels
	"AA": "ɑ", "AE": "æ", "AH": "ə", "AO": "ɔ", "AW": "aʊ",
	"AY": "aɪ", "EH": "ɛ", "ER": "ɚ", "EY": "eɪ", "IH": "ɪ",
	"IY": "i", "OW": "oʊ", "OY": "ɔɪ", "UH": "ʊ", "UW": "u",

	// Consonants
	"B": "b", "CH": "tʃ", "D": "d", "DH": "ð", "F": "f",
	"G": "ɡ", "HH": "h", "JH": "dʒ", "K": "k", "L": "l",
	"M": "m", "N": "n", "NG": "ŋ", "P": "p", "R": "ɹ",
	"S": "s", "SH": "ʃ", "T": "t", "TH": "θ", "V": "v",
	"W": "w", "Y": "j", "Z": "z", "ZH": "ʒ",
}

// Normalize renders a whitespace-separated ARPABET sequence as an IPA string.
// Stress digits are dropped, unknown symbols are kept as-is and the result
// is written without separators. The "N/A" sentinel is returned unchanged.
func Normalize(compact string) string {
	if compact == NotAvailable {
		return NotAvailable
	}

	var b strings.Builder
	for _, token := range strings.Fields(compact) {
		clean := StripStress(token)
		if ipa, ok := arpabetToIPA[clean]; ok {
			b.WriteString(ipa)
		} else {
			b.WriteString(clean)
		}
	}
	return b.String()
}

// StripStress removes every ASCII digit from an ARPABET token.
func StripStress(token string) string {
	if strings.IndexAny(token, "0123456789") < 0 {
		return token
	}
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, token)
}

// Symbols returns the number of ARPABET symbols known to Normalize.
func Symbols() int {
	return len(arpabetToIPA)
}
