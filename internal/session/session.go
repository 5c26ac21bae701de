// Package session owns the navigation state: which screen is active, which
// instance and chat are selected, and the lists each screen shows. The
// transition methods here are the only writers of screen and selection
// fields; directory, chats and messages own their list fields.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/mirahq/mira/internal/constants"
	"github.com/mirahq/mira/internal/record"
)

// Screen identifies the active screen.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenInstances
	ScreenChats
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenInstances:
		return "instances"
	case ScreenChats:
		return "chats"
	default:
		return "unknown"
	}
}

// Notice is a transient user-visible warning. It auto-expires and never
// blocks interaction.
type Notice struct {
	ID      string
	Text    string
	Expires time.Time
}

// State is the session-scoped navigation state. It is created once at
// process start on the login screen and mutated only through component
// operations, never concurrently.
type State struct {
	ID              string
	Screen          Screen
	IsAuthenticated bool

	// Instance directory fields.
	Instances         []record.Record // full fetched list
	BaseInstances     []record.Record // hint-filtered superset
	FilteredInstances []record.Record // search view over base
	InstanceSearch    bool            // replaces the empty-slice sentinel
	Hint              string
	CurrentInstanceID string

	// Conversation fields.
	Chats         []record.Record
	FilteredChats []record.Record
	ChatSearch    bool
	ChatPage      int
	PageSize      int
	CurrentChatID string

	// Message thread for the current chat.
	Messages []record.Record

	Notices []Notice

	// Narrow terminals collapse the chats screen to one panel; back then
	// reveals the list panel before navigating up.
	NarrowLayout  bool
	PanelRevealed bool
}

// New returns a fresh state on the login screen.
func New() *State {
	return &State{
		ID:       uuid.NewString(),
		Screen:   ScreenLogin,
		PageSize: constants.PageSize,
	}
}

// LoginSucceeded moves to the instances screen.
func (s *State) LoginSucceeded() {
	s.IsAuthenticated = true
	s.enterInstances()
}

// EnterInstances navigates to the instances screen, clearing everything
// that only makes sense inside the chats screen.
func (s *State) EnterInstances() {
	if !s.IsAuthenticated {
		return
	}
	s.enterInstances()
}

func (s *State) enterInstances() {
	s.Screen = ScreenInstances
	s.CurrentInstanceID = ""
	s.clearChatState()
}

// SelectInstance opens an instance's conversation list.
func (s *State) SelectInstance(id string) {
	if !s.IsAuthenticated || id == "" {
		return
	}
	s.Screen = ScreenChats
	s.CurrentInstanceID = id
	s.clearChatState()
	s.PanelRevealed = true
}

// SelectChat opens a conversation within the chats screen.
func (s *State) SelectChat(id string) {
	if s.Screen != ScreenChats {
		return
	}
	s.CurrentChatID = id
	s.Messages = nil
	if s.NarrowLayout {
		s.PanelRevealed = false
	}
}

// Back navigates up one level. On narrow layouts with the list panel
// hidden, the first back reveals the panel and reports false; only the
// next back actually leaves the chats screen.
func (s *State) Back() bool {
	if s.Screen != ScreenChats {
		return false
	}
	if s.NarrowLayout && !s.PanelRevealed {
		s.PanelRevealed = true
		return false
	}
	s.enterInstances()
	return true
}

// Logout clears every instance, chat, message and session field and
// returns to the login screen.
func (s *State) Logout() {
	s.Screen = ScreenLogin
	s.IsAuthenticated = false
	s.Instances = nil
	s.BaseInstances = nil
	s.FilteredInstances = nil
	s.InstanceSearch = false
	s.Hint = ""
	s.CurrentInstanceID = ""
	s.clearChatState()
	s.Notices = nil
}

func (s *State) clearChatState() {
	s.Chats = nil
	s.FilteredChats = nil
	s.ChatSearch = false
	s.ChatPage = 0
	s.CurrentChatID = ""
	s.Messages = nil
}

// ActiveInstances returns the list the instances screen should show: the
// search view when a search is active, else the hint-filtered base.
func (s *State) ActiveInstances() []record.Record {
	if s.InstanceSearch {
		return s.FilteredInstances
	}
	return s.BaseInstances
}

// ActiveChats returns the list the conversation panel should show.
func (s *State) ActiveChats() []record.Record {
	if s.ChatSearch {
		return s.FilteredChats
	}
	return s.Chats
}

// AddNotice records a transient warning.
func (s *State) AddNotice(text string) {
	s.Notices = append(s.Notices, Notice{
		ID:      uuid.NewString(),
		Text:    text,
		Expires: time.Now().Add(constants.NoticeTTL),
	})
}

// PruneNotices drops expired notices and reports whether any remain.
func (s *State) PruneNotices(now time.Time) bool {
	kept := s.Notices[:0]
	for _, n := range s.Notices {
		if n.Expires.After(now) {
			kept = append(kept, n)
		}
	}
	s.Notices = kept
	return len(s.Notices) > 0
}
