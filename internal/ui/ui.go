package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/cinelist/internal/cache"
	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListsView ViewState = iota
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	cache       *cache.ListCache
	snapshots   chan []models.CustomList
	unsubscribe func()
	width       int
	height      int
	lists       list.Model
	items       list.Model
	filter      models.Filter
	detail      *models.CustomList
	loading     bool
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a TUI model subscribed to c. Call [Model.Close] when the program exits.
//
// The subscription forwards each snapshot into a one-slot channel, replacing an unread one,
// so the cache never blocks on the UI.
func NewModel(ctx context.Context, c *cache.ListCache) *Model {
	m := &Model{
		ctx:       ctx,
		view:      ListsView,
		cache:     c,
		snapshots: make(chan []models.CustomList, 1),
		lists:     newList("My Lists"),
		items:     newList(""),
		loading:   true,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.unsubscribe = c.Subscribe(func(lists []models.CustomList) {
		select {
		case <-m.snapshots:
		default:
		}
		m.snapshots <- lists
	})
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.DisableQuitKeybindings()
	return l
}

// Close detaches the model from the cache.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init waits for the first snapshot and triggers a reload.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForSnapshot(), m.reload())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.lists.SetSize(msg.Width-4, msg.Height-8)
		m.items.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListsView:
			return m.handleListsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSnapshot:
		m.refresh()
		return m, m.waitForSnapshot()

	case MsgReloaded:
		m.loading = false
		m.status = fmt.Sprintf("%d lists • sorted by %s", len(m.cache.Snapshot()), m.filter.Sort)
		return m, nil

	case MsgListFetched:
		data := msg.data.(listFetched)
		m.loading = false
		if data.err != nil {
			m.err = data.err
			m.view = ListsView
			return m, nil
		}
		m.err = nil
		m.detail = data.list
		m.items.SetItems(toMovieItems(data.list.Items))
		m.items.Title = data.list.Name
		m.items.ResetSelected()
		m.view = DetailView
		return m, nil
	}
	return m, nil
}

// refresh rebuilds the browser rows from the cache under the current filter.
func (m *Model) refresh() {
	m.lists.SetItems(toListItems(m.cache.Filtered(m.filter)))
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderLists()
	}
}

func (m *Model) handleListsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.lists.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.sort):
		m.filter.Sort = m.filter.Sort.Next()
		m.refresh()
		m.status = fmt.Sprintf("sorted by %s", m.filter.Sort)
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.loading = true
		m.status = "reloading…"
		return m, m.reload()
	case key.Matches(msg, m.keys.enter):
		if selected, ok := m.lists.SelectedItem().(customListItem); ok {
			m.loading = true
			m.status = fmt.Sprintf("loading %s…", selected.list.Name)
			return m, m.fetchList(selected.list.ID)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ListsView
		m.detail = nil
		m.status = ""
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ListsView:
		m.lists, cmd = m.lists.Update(msg)
	case DetailView:
		m.items, cmd = m.items.Update(msg)
	}
	return m, cmd
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case lists := <-m.snapshots:
			return snapshotMsg(lists)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) reload() tea.Cmd {
	return func() tea.Msg {
		m.cache.Reload(m.ctx)
		return reloadedMsg()
	}
}

func (m *Model) fetchList(id string) tea.Cmd {
	return func() tea.Msg {
		l, err := m.cache.Get(m.ctx, id)
		return listFetchedMsg(l, err)
	}
}

func (m *Model) renderLists() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.sort, m.keys.reload, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	status := styles.status.Render(m.status)
	if m.err != nil {
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else if !m.loading && len(m.lists.Items()) == 0 {
		status = styles.warn.Render("No lists yet. Create one with `cinelist lists create`.")
	}

	return fmt.Sprintf("%s\n%s\n\n%s", m.lists.View(), status, helpView)
}

func (m *Model) renderDetail() string {
	if m.detail == nil {
		return ""
	}

	header := styles.badge.Render(fmt.Sprintf("%s • %d movies", shared.VisibilityString(m.detail.IsPublic), len(m.detail.Items)))
	unresolved := 0
	for _, item := range m.detail.Items {
		if item.Movie == nil {
			unresolved++
		}
	}
	if unresolved > 0 {
		header += " " + styles.warn.Render(fmt.Sprintf("%d without details", unresolved))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", header, m.items.View(), helpView)
}
