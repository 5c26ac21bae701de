// Package chats manages the conversation list for a selected instance:
// one capped fetch, client-side search, and fixed-size paging.
package chats

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mirahq/mira/internal/api"
	"github.com/mirahq/mira/internal/constants"
	"github.com/mirahq/mira/internal/record"
	"github.com/mirahq/mira/internal/session"
)

// Manager owns the conversation-list fields of the session state.
type Manager struct {
	client *api.Client
}

// NewManager creates a conversation list manager.
func NewManager(client *api.Client) *Manager {
	return &Manager{client: client}
}

// Fetch requests the conversation set for an instance in one capped
// request, optionally server-filtered by query. Never touches session
// state.
func (m *Manager) Fetch(ctx context.Context, instanceID, query string) ([]record.Record, error) {
	recs, err := m.client.Chats(ctx, instanceID, constants.ChatFetchLimit, 0, query)
	if err != nil {
		return nil, fmt.Errorf("load chats: %w", err)
	}
	log.Debug().Str("instance", instanceID).Int("chats", len(recs)).Msg("Conversations loaded")
	return recs, nil
}

// Apply replaces the in-memory conversation set and resets paging and
// search.
func (m *Manager) Apply(st *session.State, recs []record.Record) {
	st.Chats = recs
	st.FilteredChats = nil
	st.ChatSearch = false
	st.ChatPage = 0
}

// Fail clears the conversation set after a fetch failure and records a
// notice. There is no automatic retry.
func (m *Manager) Fail(st *session.State) {
	st.Chats = nil
	st.FilteredChats = nil
	st.ChatSearch = false
	st.ChatPage = 0
	st.AddNotice("No se pudieron cargar las conversaciones")
}

// Load is Fetch followed by Apply, for callers that are not driving an
// event loop.
func (m *Manager) Load(ctx context.Context, st *session.State, instanceID, query string) error {
	recs, err := m.Fetch(ctx, instanceID, query)
	if err != nil {
		m.Fail(st)
		return err
	}
	m.Apply(st, recs)
	return nil
}

// Search filters the already-fetched set by case-insensitive substring
// over derived display name, preview text, or canonical id. An empty
// query reverts to the unfiltered set.
func (m *Manager) Search(st *session.State, query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		st.FilteredChats = nil
		st.ChatSearch = false
		st.ChatPage = 0
		return
	}

	filtered := make([]record.Record, 0, len(st.Chats))
	for _, r := range st.Chats {
		if chatMatches(r, query) {
			filtered = append(filtered, r)
		}
	}
	st.FilteredChats = filtered
	st.ChatSearch = true
	st.ChatPage = 0
}

func chatMatches(r record.Record, query string) bool {
	return strings.Contains(strings.ToLower(record.ChatDisplayName(r)), query) ||
		strings.Contains(strings.ToLower(record.ChatPreview(r)), query) ||
		strings.Contains(strings.ToLower(record.CanonicalChatID(r)), query)
}

// PageView is a fixed-size window over the active conversation set.
type PageView struct {
	Items   []record.Record
	Start   int // index of the first item, 0-based
	End     int // index one past the last item
	Total   int
	HasPrev bool
	HasNext bool
}

// Counter renders the "<shown> de <total>" progress counter.
func (p PageView) Counter() string {
	return fmt.Sprintf("%d de %d", p.End, p.Total)
}

// Page returns page n of the active (filtered-or-full) set. Purely a view
// over fetched data, never a network call.
func Page(st *session.State, n int) PageView {
	active := st.ActiveChats()
	total := len(active)
	size := st.PageSize
	if size <= 0 {
		size = constants.PageSize
	}

	start := n * size
	if start < 0 || start > total {
		start = 0
		n = 0
	}
	end := start + size
	if end > total {
		end = total
	}

	return PageView{
		Items:   active[start:end],
		Start:   start,
		End:     end,
		Total:   total,
		HasPrev: n > 0,
		HasNext: end < total,
	}
}

// NextPage advances paging when another page exists.
func NextPage(st *session.State) {
	if Page(st, st.ChatPage).HasNext {
		st.ChatPage++
	}
}

// PrevPage moves paging back when not on the first page.
func PrevPage(st *session.State) {
	if st.ChatPage > 0 {
		st.ChatPage--
	}
}

// ChatByID finds a conversation in the fetched set by canonical id.
func ChatByID(st *session.State, id string) (record.Record, bool) {
	for _, r := range st.Chats {
		if record.CanonicalChatID(r) == id {
			return r, true
		}
	}
	return nil, false
}
