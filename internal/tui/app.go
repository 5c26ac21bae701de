// Package tui provides the terminal user interface for mira. All data and
// navigation state lives in the core packages; this layer only invokes
// their command methods and renders the result.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mirahq/mira/internal/api"
	"github.com/mirahq/mira/internal/chats"
	"github.com/mirahq/mira/internal/constants"
	"github.com/mirahq/mira/internal/directory"
	"github.com/mirahq/mira/internal/messages"
	"github.com/mirahq/mira/internal/record"
	"github.com/mirahq/mira/internal/session"
)

// Options configures the TUI model.
type Options struct {
	AccessCode  string // client-side login gate, empty accepts anything
	AutoLogin   bool
	NarrowWidth int
}

// Model is the main TUI model.
type Model struct {
	st     *session.State
	dir    *directory.Directory
	chats  *chats.Manager
	msgs   *messages.Loader
	client *api.Client
	opts   Options

	width  int
	height int

	instanceIdx int
	chatIdx     int
	input       InputModel
	loading     bool
}

// Async fetch results. Chat and message results are tagged with the
// selection they were issued for so stale responses can be discarded.
type instancesLoadedMsg struct {
	snap directory.Snapshot
	err  error
}

type chatsLoadedMsg struct {
	instanceID string
	recs       []record.Record
	err        error
}

type messagesLoadedMsg struct {
	chatID string
	recs   []record.Record
	err    error
}

type pruneNoticesMsg time.Time

// New creates a new TUI model.
func New(st *session.State, dir *directory.Directory, cm *chats.Manager, ml *messages.Loader, client *api.Client, opts Options) Model {
	if opts.NarrowWidth <= 0 {
		opts.NarrowWidth = constants.NarrowWidth
	}
	m := Model{
		st:     st,
		dir:    dir,
		chats:  cm,
		msgs:   ml,
		client: client,
		opts:   opts,
		input:  NewInputModel(),
	}
	if opts.AutoLogin {
		st.LoginSucceeded()
	} else {
		m.input.SetMode(InputModeAccessCode)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.noticeTick()}
	if m.st.IsAuthenticated {
		cmds = append(cmds, m.loadInstances())
	} else {
		cmds = append(cmds, m.input.Focus())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.st.NarrowLayout = msg.Width < m.opts.NarrowWidth
		m.input.SetWidth(msg.Width - 4)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case instancesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.dir.Fail(m.st)
			return m, nil
		}
		selected := m.dir.Apply(m.st, msg.snap)
		m.instanceIdx = 0
		if selected != "" {
			m.st.SelectInstance(selected)
			m.loading = true
			return m, m.loadChats(selected)
		}
		return m, nil

	case chatsLoadedMsg:
		m.loading = false
		// Discard responses for an instance the operator already left.
		if msg.instanceID != m.st.CurrentInstanceID {
			return m, nil
		}
		if msg.err != nil {
			m.chats.Fail(m.st)
			return m, nil
		}
		m.chats.Apply(m.st, msg.recs)
		m.chatIdx = 0
		return m, nil

	case messagesLoadedMsg:
		m.loading = false
		if msg.chatID != m.st.CurrentChatID {
			return m, nil
		}
		if msg.err != nil {
			m.msgs.Fail(m.st)
			return m, nil
		}
		m.msgs.Apply(m.st, msg.recs)
		return m, nil

	case pruneNoticesMsg:
		m.st.PruneNotices(time.Time(msg))
		return m, m.noticeTick()
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content string
	switch m.st.Screen {
	case session.ScreenLogin:
		content = m.renderLogin()
	case session.ScreenInstances:
		content = m.renderInstances()
	case session.ScreenChats:
		content = m.renderChats()
	}

	if notice := renderNotices(m.st.Notices, m.width); notice != "" {
		content += "\n" + notice
	}
	return content
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c quits even while the gate or search input is focused.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.input.IsActive() {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Logout):
		m.st.Logout()
		m.instanceIdx = 0
		m.chatIdx = 0
		m.input.SetMode(InputModeAccessCode)
		return m, m.input.Focus()

	case key.Matches(msg, keys.Back):
		if m.st.Screen == session.ScreenChats {
			m.st.Back()
		}
		return m, nil

	case key.Matches(msg, keys.Search):
		if m.st.Screen == session.ScreenInstances || m.st.Screen == session.ScreenChats {
			m.input.SetMode(InputModeSearch)
			return m, m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, keys.Refresh):
		return m.refresh()
	}

	switch m.st.Screen {
	case session.ScreenInstances:
		return m.handleInstancesKey(msg)
	case session.ScreenChats:
		return m.handleChatsKey(msg)
	}
	return m, nil
}

func (m Model) handleInstancesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.st.ActiveInstances()

	switch {
	case key.Matches(msg, keys.Up):
		if m.instanceIdx > 0 {
			m.instanceIdx--
		}

	case key.Matches(msg, keys.Down):
		if m.instanceIdx < len(visible)-1 {
			m.instanceIdx++
		}

	case key.Matches(msg, keys.Enter):
		if m.instanceIdx < len(visible) {
			id := record.InstanceID(visible[m.instanceIdx])
			m.st.SelectInstance(id)
			m.loading = true
			return m, m.loadChats(id)
		}
	}
	return m, nil
}

func (m Model) handleChatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := chats.Page(m.st, m.st.ChatPage)

	switch {
	case key.Matches(msg, keys.Up):
		if m.chatIdx > 0 {
			m.chatIdx--
		}

	case key.Matches(msg, keys.Down):
		if m.chatIdx < len(page.Items)-1 {
			m.chatIdx++
		}

	case key.Matches(msg, keys.NextPage):
		chats.NextPage(m.st)
		m.chatIdx = 0

	case key.Matches(msg, keys.PrevPage):
		chats.PrevPage(m.st)
		m.chatIdx = 0

	case key.Matches(msg, keys.Export):
		m.st.AddNotice("Export: " + m.client.ExportURL(m.st.CurrentInstanceID))

	case key.Matches(msg, keys.Enter):
		if m.chatIdx < len(page.Items) {
			rec := page.Items[m.chatIdx]
			m.st.SelectChat(record.CanonicalChatID(rec))
			m.loading = true
			return m, m.loadMessages(m.st.CurrentInstanceID, rec)
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		mode := m.input.Mode()
		m.input.Reset()
		if mode == InputModeSearch {
			m.clearSearch()
		}
		if m.st.Screen == session.ScreenLogin {
			// Login gate stays up until a code is accepted.
			m.input.SetMode(InputModeAccessCode)
			return m, m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		switch m.input.Mode() {
		case InputModeAccessCode:
			if m.opts.AccessCode != "" && value != m.opts.AccessCode {
				m.st.AddNotice("Código de acceso incorrecto")
				m.input.SetMode(InputModeAccessCode)
				return m, m.input.Focus()
			}
			m.input.Reset()
			m.st.LoginSucceeded()
			m.loading = true
			return m, m.loadInstances()

		case InputModeSearch:
			m.input.Reset()
			m.applySearch(value)
			return m, nil
		}
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Live filtering while typing a search.
	if m.input.Mode() == InputModeSearch {
		m.applySearch(m.input.Value())
	}
	return m, cmd
}

func (m *Model) applySearch(query string) {
	switch m.st.Screen {
	case session.ScreenInstances:
		m.dir.Search(m.st, query)
		m.instanceIdx = 0
	case session.ScreenChats:
		m.chats.Search(m.st, query)
		m.chatIdx = 0
	}
}

func (m *Model) clearSearch() {
	m.applySearch("")
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	switch m.st.Screen {
	case session.ScreenInstances:
		m.loading = true
		return m, m.loadInstances()
	case session.ScreenChats:
		m.loading = true
		return m, m.loadChats(m.st.CurrentInstanceID)
	}
	return m, nil
}

func (m Model) loadInstances() tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
		defer cancel()
		snap, err := dir.Fetch(ctx)
		return instancesLoadedMsg{snap: snap, err: err}
	}
}

func (m Model) loadChats(instanceID string) tea.Cmd {
	cm := m.chats
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
		defer cancel()
		recs, err := cm.Fetch(ctx, instanceID, "")
		return chatsLoadedMsg{instanceID: instanceID, recs: recs, err: err}
	}
}

func (m Model) loadMessages(instanceID string, chat record.Record) tea.Cmd {
	ml := m.msgs
	chatID := record.CanonicalChatID(chat)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout)
		defer cancel()
		recs, err := ml.Fetch(ctx, instanceID, chat)
		return messagesLoadedMsg{chatID: chatID, recs: recs, err: err}
	}
}

func (m Model) noticeTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return pruneNoticesMsg(t)
	})
}

// Key bindings
var keys = struct {
	Quit     key.Binding
	Logout   key.Binding
	Escape   key.Binding
	Enter    key.Binding
	Up       key.Binding
	Down     key.Binding
	Back     key.Binding
	Search   key.Binding
	Refresh  key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Export   key.Binding
}{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Logout:   key.NewBinding(key.WithKeys("ctrl+l")),
	Escape:   key.NewBinding(key.WithKeys("esc")),
	Enter:    key.NewBinding(key.WithKeys("enter")),
	Up:       key.NewBinding(key.WithKeys("up", "k")),
	Down:     key.NewBinding(key.WithKeys("down", "j")),
	Back:     key.NewBinding(key.WithKeys("esc", "backspace")),
	Search:   key.NewBinding(key.WithKeys("/")),
	Refresh:  key.NewBinding(key.WithKeys("r")),
	NextPage: key.NewBinding(key.WithKeys("n", "right")),
	PrevPage: key.NewBinding(key.WithKeys("p", "left")),
	Export:   key.NewBinding(key.WithKeys("e")),
}
