package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/repositories"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgUploadsFetched MsgKind = iota
	MsgStatusFetched
)

// uploadsFetchedMsg is the constructor for [MsgUploadsFetched]
func uploadsFetchedMsg(uploads []*repositories.Upload, err error) Msg {
	return Msg{
		kind: MsgUploadsFetched,
		data: struct {
			uploads []*repositories.Upload
			err     error
		}{uploads, err},
	}
}

// statusFetchedMsg is the constructor for [MsgStatusFetched]
func statusFetchedMsg(record *models.UploadStatusRecord, err error) Msg {
	return Msg{
		kind: MsgStatusFetched,
		data: struct {
			record *models.UploadStatusRecord
			err    error
		}{record, err},
	}
}
