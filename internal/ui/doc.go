// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for browsing upload history:
//  1. [UploadListView] : Browse recent uploads from history, newest first
//  2. [DetailView] : Inspect one upload's terminal status record and detail map
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// History rows come from the sqlite upload repository; the current status record is read from the file-backed status store.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
