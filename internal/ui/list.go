package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/setcast/internal/repositories"
)

var _ list.Item = uploadItem{}

// uploadItem wraps a [repositories.Upload] row to implement [list.Item].
type uploadItem struct {
	upload *repositories.Upload
}

func (i uploadItem) FilterValue() string { return i.upload.UploadKey }
func (i uploadItem) Title() string {
	return fmt.Sprintf("%s  %s: %s", i.upload.BroadcastDate, i.upload.DJName, i.upload.Title)
}
func (i uploadItem) Description() string {
	desc := string(i.upload.Status)
	if i.upload.Message != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.upload.Message)
	}
	return desc
}
