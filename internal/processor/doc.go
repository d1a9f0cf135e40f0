// Package processor contains the pronunciation analysis pipeline. It
// validates an uploaded recording, runs it through the configured
// transcription provider, scores the transcription against the reference
// table and records the attempt. Both the HTTP server and the CLI drive
// analyses through an Analyzer.
package processor
