// Package transcribe turns a recorded word into a raw phoneme-like symbol
// string. Providers wrap external speech models: a local wav2vec2 script,
// OpenAI's transcription API or Gemini. They can be chained with a fallback
// and guarded by a circuit breaker.
package transcribe
