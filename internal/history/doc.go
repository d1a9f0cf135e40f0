// Package history keeps a SQLite log of scored pronunciation attempts so
// learners can review their progress per word and accent.
package history
