// Package phonetic scores a spoken-word transcription against reference
// pronunciations. It renders compact ARPABET sequences as IPA, looks up
// expected pronunciations per accent variant and computes a
// difflib-compatible similarity score between the transcription and the
// expected ARPABET form.
package phonetic
