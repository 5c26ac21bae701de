package record

import (
	"testing"
)

func TestCanonicalChatIDPriority(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "internal id wins over everything",
			rec:  Record{"internalChatId": "int-1", "jid": "j-1", "id": "generic"},
			want: "int-1",
		},
		{
			name: "provider chat id before jid",
			rec:  Record{"wa_chatid": "wa-1", "jid": "j-1"},
			want: "wa-1",
		},
		{
			name: "phone before generic id",
			rec:  Record{"phone": "5511999", "id": "generic"},
			want: "5511999",
		},
		{
			name: "generic id as late fallback",
			rec:  Record{"id": "generic"},
			want: "generic",
		},
		{
			name: "numeric values are stringified",
			rec:  Record{"phone": float64(5511999)},
			want: "5511999",
		},
		{
			name: "empty values are skipped",
			rec:  Record{"internalChatId": "", "jid": "j-1"},
			want: "j-1",
		},
		{
			name: "no known key",
			rec:  Record{"unrelated": "x"},
			want: "",
		},
		{
			name: "nil record",
			rec:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalChatID(tt.rec); got != tt.want {
				t.Errorf("CanonicalChatID() = %q, want %q", got, tt.want)
			}
			// Idempotent: same input, same output.
			if got := CanonicalChatID(tt.rec); got != tt.want {
				t.Errorf("CanonicalChatID() second call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalMsgID(t *testing.T) {
	rec := Record{"messageid": "m-2", "key": map[string]any{"id": "nested-1"}}
	if got := CanonicalMsgID(rec); got != "m-2" {
		t.Errorf("expected flat key to win, got %q", got)
	}

	nested := Record{"key": map[string]any{"id": "nested-1"}}
	if got := CanonicalMsgID(nested); got != "nested-1" {
		t.Errorf("expected nested key.id, got %q", got)
	}

	if got := CanonicalMsgID(Record{}); got != "" {
		t.Errorf("expected empty for no keys, got %q", got)
	}
}

func TestChatIDCandidates(t *testing.T) {
	rec := Record{"jid": "j-1", "phone": "5511999", "id": "j-1"}
	got := ChatIDCandidates(rec)
	want := []string{"j-1", "5511999"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChatDisplayNameFallsBackToID(t *testing.T) {
	named := Record{"wa_contactName": "Alice", "phone": "5511999"}
	if got := ChatDisplayName(named); got != "Alice" {
		t.Errorf("expected contact name, got %q", got)
	}

	unnamed := Record{"phone": "5511999"}
	if got := ChatDisplayName(unnamed); got != "5511999" {
		t.Errorf("expected canonical id fallback, got %q", got)
	}
}

func TestMessageFromMe(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"flat bool", Record{"fromMe": true}, true},
		{"nested bool", Record{"key": map[string]any{"fromMe": true}}, true},
		{"string true", Record{"from_me": "true"}, true},
		{"any true wins", Record{"fromMe": false, "fromme": true}, true},
		{"all false", Record{"fromMe": false, "key": map[string]any{"fromMe": false}}, false},
		{"absent", Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessageFromMe(tt.rec); got != tt.want {
				t.Errorf("MessageFromMe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageTimestampScaling(t *testing.T) {
	// Ten digits, below 10^12: seconds, scaled to milliseconds.
	seconds := Record{"timestamp": float64(1700000000)}
	if got := MessageTimestamp(seconds); got != 1700000000000 {
		t.Errorf("expected seconds scaled to ms, got %d", got)
	}

	// Already milliseconds: used as-is.
	millis := Record{"timestamp": float64(1700000000000)}
	if got := MessageTimestamp(millis); got != 1700000000000 {
		t.Errorf("expected ms unchanged, got %d", got)
	}

	// Alternative key.
	alt := Record{"messageTimestamp": float64(1700000000)}
	if got := MessageTimestamp(alt); got != 1700000000000 {
		t.Errorf("expected alternative key scaled, got %d", got)
	}

	// Absent.
	if got := MessageTimestamp(Record{}); got != 0 {
		t.Errorf("expected 0 for absent timestamp, got %d", got)
	}
}

func TestInstanceFields(t *testing.T) {
	rec := Record{
		"id":          "inst-1",
		"name":        "HIA Clientes",
		"system_name": "hia-clientes",
		"avatar":      "https://cdn.example/a.png",
	}

	if got := InstanceID(rec); got != "inst-1" {
		t.Errorf("InstanceID = %q", got)
	}
	if got := InstanceName(rec); got != "HIA Clientes" {
		t.Errorf("InstanceName = %q", got)
	}
	if got := InstanceSystemName(rec); got != "hia-clientes" {
		t.Errorf("InstanceSystemName = %q", got)
	}
	if got := InstanceAvatar(rec); got != "https://cdn.example/a.png" {
		t.Errorf("InstanceAvatar = %q", got)
	}
}
