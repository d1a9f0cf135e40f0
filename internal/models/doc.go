// Package models describes the transcription models voicelab can use. It
// reports the locally configured providers and can query the OpenAI API
// for speech-to-text models available to the configured key.
package models
