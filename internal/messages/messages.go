// Package messages loads the message thread for a selected conversation,
// trying the conversation's identifier candidates in priority order.
package messages

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mirahq/mira/internal/api"
	"github.com/mirahq/mira/internal/constants"
	"github.com/mirahq/mira/internal/record"
	"github.com/mirahq/mira/internal/session"
)

// Loader owns the message-thread field of the session state.
type Loader struct {
	client *api.Client
}

// NewLoader creates a message thread loader.
func NewLoader(client *api.Client) *Loader {
	return &Loader{client: client}
}

// Candidates returns the ordered identifier candidates for a conversation
// record: the first is the primary id, the rest are fallbacks the backend
// may retry against.
func Candidates(chat record.Record) []string {
	return record.ChatIDCandidates(chat)
}

// Fetch requests the thread for a conversation. A record with no
// identifier candidate yields an empty thread without a network call.
// Never touches session state.
func (l *Loader) Fetch(ctx context.Context, instanceID string, chat record.Record) ([]record.Record, error) {
	candidates := Candidates(chat)
	if len(candidates) == 0 {
		return nil, nil
	}

	primary, alts := candidates[0], candidates[1:]
	recs, err := l.client.Messages(ctx, instanceID, primary, alts, constants.MessageFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	log.Debug().Str("instance", instanceID).Str("chat", primary).Int("messages", len(recs)).Msg("Thread loaded")
	return recs, nil
}

// Apply stores a fetched thread on the session state.
func (l *Loader) Apply(st *session.State, recs []record.Record) {
	st.Messages = recs
}

// Fail clears the thread after a network or shape failure and records a
// notice. Failures here never crash the client.
func (l *Loader) Fail(st *session.State) {
	st.Messages = nil
	st.AddNotice("No se pudieron cargar los mensajes")
}

// Load is Fetch followed by Apply, for callers that are not driving an
// event loop.
func (l *Loader) Load(ctx context.Context, st *session.State, instanceID string, chat record.Record) error {
	recs, err := l.Fetch(ctx, instanceID, chat)
	if err != nil {
		l.Fail(st)
		return err
	}
	l.Apply(st, recs)
	return nil
}
