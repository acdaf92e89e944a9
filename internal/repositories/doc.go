// Package repositories provides the persistence layer for upload history.
//
// The upload history is a supplement to the file-backed status store: the
// status store answers "where is upload X right now", the history answers
// "what has this pipeline processed" for the status CLI and the TUI.
// Terminal states are the only writes, so a crash mid-run leaves the
// history without a row rather than with a stale one.
package repositories
