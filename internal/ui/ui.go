package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setcast/internal/models"
	"github.com/desertthunder/setcast/internal/repositories"
	"github.com/desertthunder/setcast/internal/status"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	UploadListView ViewState = iota
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	history    *repositories.UploadRepository
	store      *status.Store
	width      int
	height     int
	uploadList list.Model
	uploads    []*repositories.Upload
	selected   *repositories.Upload
	record     *models.UploadStatusRecord
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, history *repositories.UploadRepository, store *status.Store) *Model {
	return &Model{
		ctx:     ctx,
		view:    UploadListView,
		history: history,
		store:   store,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching recent uploads.
func (m *Model) Init() tea.Cmd {
	return m.fetchUploads()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.uploadList.Width() == 0 {
			m.uploadList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case UploadListView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgUploadsFetched:
		data := msg.data.(struct {
			uploads []*repositories.Upload
			err     error
		})
		if data.err != nil {
			m.err = data.err
			return m, tea.Quit
		}
		m.uploads = data.uploads
		items := make([]list.Item, len(data.uploads))
		for i, u := range data.uploads {
			items[i] = uploadItem{upload: u}
		}
		m.uploadList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.uploadList.Title = "Recent Uploads"
		m.uploadList.SetSize(m.width-4, m.height-8)
		return m, nil

	case MsgStatusFetched:
		data := msg.data.(struct {
			record *models.UploadStatusRecord
			err    error
		})
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.record = data.record
		m.view = DetailView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case UploadListView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchUploads()
	case "enter":
		selected := m.uploadList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(uploadItem); ok {
				m.selected = item.upload
				return m, m.fetchStatus(item.upload.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.uploadList, cmd = m.uploadList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = UploadListView
		m.selected = nil
		m.record = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == UploadListView {
		m.uploadList, cmd = m.uploadList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchUploads() tea.Cmd {
	return func() tea.Msg {
		uploads, err := m.history.List(0)
		return uploadsFetchedMsg(uploads, err)
	}
}

func (m *Model) fetchStatus(uploadID string) tea.Cmd {
	return func() tea.Msg {
		record, err := m.store.Read(uploadID)
		if errors.Is(err, status.ErrNotFound) {
			// History outlives status records once an upload is pruned.
			return statusFetchedMsg(nil, nil)
		}
		return statusFetchedMsg(record, err)
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.uploadList.View(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	u := m.selected
	title := styles.title.Render(fmt.Sprintf("%s: %s (%s)", u.DJName, u.Title, u.BroadcastDate))

	statusLine := styles.warn.Render(string(u.Status))
	switch u.Status {
	case models.StatusCompleted:
		statusLine = styles.ok.Render(string(u.Status))
	case models.StatusError:
		statusLine = styles.err.Render(string(u.Status))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nStatus: %s\n%s\n", title, statusLine, u.Message)
	if u.Destinations != "" {
		fmt.Fprintf(&b, "Destinations: %s\n", u.Destinations)
	}

	if m.record != nil {
		fmt.Fprintf(&b, "\nLast update: %s\n", m.record.Timestamp.Format("2006-01-02 15:04:05 MST"))
		if len(m.record.Detail) > 0 {
			keys := make([]string, 0, len(m.record.Detail))
			for k := range m.record.Detail {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, "  %s: %v\n", k, m.record.Detail[k])
			}
		}
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}
