package messages

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mirahq/mira/internal/api"
	"github.com/mirahq/mira/internal/record"
	"github.com/mirahq/mira/internal/session"
)

func newTestLoader(t *testing.T, handler http.HandlerFunc) (*Loader, *session.State, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client, err := api.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	st := session.New()
	st.LoginSucceeded()
	st.SelectInstance("inst-1")
	return NewLoader(client), st, srv.Close
}

func TestLoadPhoneOnlyRecord(t *testing.T) {
	var gotChatID, gotAlts string
	loader, st, done := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		gotChatID = r.URL.Query().Get("chatId")
		gotAlts = r.URL.Query().Get("alts")
		w.Write([]byte(`{"messages":[{"id":"m-1","body":"hola"}]}`))
	})
	defer done()

	chat := record.Record{"phone": "5511999"}
	if err := loader.Load(context.Background(), st, "inst-1", chat); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if gotChatID != "5511999" {
		t.Errorf("expected primary id 5511999, got %q", gotChatID)
	}
	if gotAlts != "" {
		t.Errorf("expected empty fallback list, got %q", gotAlts)
	}
	if len(st.Messages) != 1 {
		t.Errorf("expected 1 message, got %d", len(st.Messages))
	}
}

func TestLoadPassesFallbackCandidates(t *testing.T) {
	var gotChatID, gotAlts string
	loader, st, done := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		gotChatID = r.URL.Query().Get("chatId")
		gotAlts = r.URL.Query().Get("alts")
		w.Write([]byte(`[]`))
	})
	defer done()

	chat := record.Record{"jid": "j-1", "phone": "5511999", "id": "gen-1"}
	if err := loader.Load(context.Background(), st, "inst-1", chat); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if gotChatID != "j-1" {
		t.Errorf("expected primary j-1, got %q", gotChatID)
	}
	if gotAlts != "5511999,gen-1" {
		t.Errorf("expected fallbacks in priority order, got %q", gotAlts)
	}
}

func TestLoadNoCandidatesSkipsNetwork(t *testing.T) {
	called := false
	loader, st, done := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`[]`))
	})
	defer done()

	st.Messages = []record.Record{{"id": "stale"}}
	if err := loader.Load(context.Background(), st, "inst-1", record.Record{"unrelated": "x"}); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if called {
		t.Error("expected no network call without candidates")
	}
	if st.Messages != nil {
		t.Error("expected empty thread")
	}
}

func TestLoadFailureYieldsEmptyThreadAndNotice(t *testing.T) {
	loader, st, done := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer done()

	st.Messages = []record.Record{{"id": "stale"}}
	if err := loader.Load(context.Background(), st, "inst-1", record.Record{"jid": "j-1"}); err == nil {
		t.Fatal("expected error")
	}
	if st.Messages != nil {
		t.Error("expected thread cleared on failure")
	}
	if len(st.Notices) == 0 {
		t.Error("expected a notice on failure")
	}
}

func TestLoadShapeFailureIsWarningNotCrash(t *testing.T) {
	loader, st, done := newTestLoader(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nothing":"here"}`))
	})
	defer done()

	if err := loader.Load(context.Background(), st, "inst-1", record.Record{"jid": "j-1"}); err == nil {
		t.Fatal("expected shape error")
	}
	if st.Messages != nil {
		t.Error("expected empty thread after shape failure")
	}
	if len(st.Notices) == 0 {
		t.Error("expected a notice after shape failure")
	}
}
