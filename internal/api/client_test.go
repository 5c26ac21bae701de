package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); !errors.Is(err, ErrBadBaseURL) {
		t.Errorf("expected ErrBadBaseURL for ftp scheme, got %v", err)
	}
	if _, err := NewClient("not a url at all ://"); err == nil {
		t.Error("expected error for unparseable base")
	}

	c, err := NewClient("https://api.example.com///")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Base() != "https://api.example.com" {
		t.Errorf("expected trailing slashes stripped, got %q", c.Base())
	}
}

func TestInstances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instances" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"instances":[{"id":"A"},{"id":"B"}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	instances, err := c.Instances(context.Background())
	if err != nil {
		t.Fatalf("Instances() error: %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("expected 2 instances, got %d", len(instances))
	}
	if instances[0]["id"] != "A" {
		t.Errorf("expected first instance A, got %v", instances[0]["id"])
	}
}

func TestInstancesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.Instances(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestClientSettingsBothSpellings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"snake case", `{"instance_url":"https://hia.example.com/app"}`, "https://hia.example.com/app"},
		{"camel case", `{"instanceUrl":"https://hia.example.com/app"}`, "https://hia.example.com/app"},
		{"snake wins when both present", `{"instance_url":"https://a.example.com","instanceUrl":"https://b.example.com"}`, "https://a.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("client"); got != "hia" {
					t.Errorf("expected client=hia, got %q", got)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := NewClient(srv.URL)
			settings, err := c.ClientSettings(context.Background(), "hia")
			if err != nil {
				t.Fatalf("ClientSettings() error: %v", err)
			}
			if settings.InstanceURL != tt.want {
				t.Errorf("InstanceURL = %q, want %q", settings.InstanceURL, tt.want)
			}
		})
	}
}

func TestChatsQueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/instances/inst-1/chats" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("limit") != "5000" || q.Get("offset") != "0" {
			t.Errorf("unexpected paging params: %v", q)
		}
		if q.Get("q") != "alice" {
			t.Errorf("expected q=alice, got %q", q.Get("q"))
		}
		w.Write([]byte(`{"chats":[{"jid":"j-1"}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	recs, err := c.Chats(context.Background(), "inst-1", 5000, 0, "alice")
	if err != nil {
		t.Fatalf("Chats() error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(recs))
	}
}

func TestMessagesShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":"m1"},{"id":"m2"}]`, 2},
		{"messages envelope", `{"messages":[{"id":"m1"}]}`, 1},
		{"content envelope", `{"content":[{"id":"m1"},{"id":"m2"},{"id":"m3"}]}`, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("chatId") != "j-1" {
					t.Errorf("expected chatId=j-1, got %q", q.Get("chatId"))
				}
				if q.Get("alts") != "5511999,w-1" {
					t.Errorf("expected alts, got %q", q.Get("alts"))
				}
				if q.Get("limit") != "500" || q.Get("all") != "1" {
					t.Errorf("unexpected params: %v", q)
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, _ := NewClient(srv.URL)
			recs, err := c.Messages(context.Background(), "inst-1", "j-1", []string{"5511999", "w-1"}, 500)
			if err != nil {
				t.Fatalf("Messages() error: %v", err)
			}
			if len(recs) != tt.want {
				t.Errorf("expected %d messages, got %d", tt.want, len(recs))
			}
		})
	}
}

func TestMessagesNoArrayAnywhere(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL)
	if _, err := c.Messages(context.Background(), "inst-1", "j-1", nil, 500); err == nil {
		t.Error("expected shape error when no level holds an array")
	}
}

func TestURLBuilders(t *testing.T) {
	c, _ := NewClient("https://api.example.com")

	if got := c.ExportURL("inst 1"); got != "https://api.example.com/instances/inst%201/export.txt" {
		t.Errorf("ExportURL = %q", got)
	}

	proxied := c.MediaProxyURL("https://cdn.example/a.png?x=1")
	if !strings.HasPrefix(proxied, "https://api.example.com/media/proxy?url=") {
		t.Errorf("MediaProxyURL = %q", proxied)
	}
	if strings.Contains(strings.TrimPrefix(proxied, "https://api.example.com/media/proxy?url="), "?") {
		t.Errorf("expected inner URL encoded, got %q", proxied)
	}
}
