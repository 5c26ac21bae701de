// Package record normalizes heterogeneous backend records. Conversations and
// messages arrive with inconsistent field names depending on the upstream
// provider; each logical field is resolved through an ordered probe table,
// first present non-empty value wins.
package record

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mirahq/mira/internal/constants"
)

// Record is a backend record of no fixed schema.
type Record map[string]any

// Probe tables. Order is the contract: earlier keys take priority.
// A dotted key descends one level into a nested object.
var (
	chatIDKeys = []string{
		"internalChatId", "wa_chatid", "wa_fastid", "jid", "wid",
		"phone", "id", "chatid", "chatId", "chat_jid",
	}
	msgIDKeys = []string{
		"id", "messageid", "messageId", "msgId", "key.id",
	}
	chatNameKeys = []string{
		"wa_contactName", "wa_name", "name", "contactName", "pushname", "pushName",
	}
	chatPreviewKeys = []string{
		"wa_lastMsgBody", "lastMessage", "last_message", "preview", "body",
	}
	msgTextKeys = []string{
		"body", "text", "message", "content", "caption",
	}
	fromMeKeys = []string{
		"fromMe", "fromme", "from_me", "key.fromMe",
	}
	timestampKeys = []string{
		"timestamp", "messageTimestamp", "t", "time",
	}
	instanceNameKeys   = []string{"name", "instanceName", "instance_name"}
	instanceSystemKeys = []string{"systemName", "system_name", "system"}
	instanceAvatarKeys = []string{"profilePicUrl", "profile_pic_url", "avatar", "image"}
)

// CanonicalChatID derives the stable conversation identifier. Returns ""
// when no known key is present.
func CanonicalChatID(r Record) string {
	return FirstString(r, chatIDKeys)
}

// CanonicalMsgID derives the stable message identifier.
func CanonicalMsgID(r Record) string {
	return FirstString(r, msgIDKeys)
}

// ChatIDCandidates returns every distinct non-empty chat-id value in probe
// order. The first element is the primary identifier; the rest are
// fallbacks a backend may retry against.
func ChatIDCandidates(r Record) []string {
	var out []string
	seen := make(map[string]bool)
	for _, key := range chatIDKeys {
		v := stringAt(r, key)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ChatDisplayName derives a display name, falling back to the canonical id.
func ChatDisplayName(r Record) string {
	if name := FirstString(r, chatNameKeys); name != "" {
		return name
	}
	return CanonicalChatID(r)
}

// ChatPreview derives the last-message preview text.
func ChatPreview(r Record) string {
	return FirstString(r, chatPreviewKeys)
}

// MessageText derives the message body.
func MessageText(r Record) string {
	return FirstString(r, msgTextKeys)
}

// MessageFromMe reports whether a message is outbound. Providers put the
// flag in different places; any one of them being true is enough.
func MessageFromMe(r Record) bool {
	for _, key := range fromMeKeys {
		switch v := valueAt(r, key).(type) {
		case bool:
			if v {
				return true
			}
		case string:
			if v == "true" || v == "1" {
				return true
			}
		}
	}
	return false
}

// MessageTimestamp derives a millisecond timestamp. Numeric values below
// 10^12 are seconds and get scaled. Returns 0 when absent.
func MessageTimestamp(r Record) int64 {
	for _, key := range timestampKeys {
		ts, ok := asInt64(valueAt(r, key))
		if !ok || ts <= 0 {
			continue
		}
		if ts < constants.TimestampMillisFloor {
			ts *= 1000
		}
		return ts
	}
	return 0
}

// InstanceID returns the instance identifier, the only field instances are
// guaranteed to carry.
func InstanceID(r Record) string {
	return stringAt(r, "id")
}

// InstanceName derives the instance display name.
func InstanceName(r Record) string {
	return FirstString(r, instanceNameKeys)
}

// InstanceSystemName derives the account-grouping system name.
func InstanceSystemName(r Record) string {
	return FirstString(r, instanceSystemKeys)
}

// InstanceAvatar derives an avatar URL from any of the known keys.
func InstanceAvatar(r Record) string {
	return FirstString(r, instanceAvatarKeys)
}

// FirstString evaluates a probe table against a record and returns the
// first present non-empty value, or "".
func FirstString(r Record, keys []string) string {
	for _, key := range keys {
		if v := stringAt(r, key); v != "" {
			return v
		}
	}
	return ""
}

// valueAt fetches a value, descending one level for dotted keys.
func valueAt(r Record, key string) any {
	if r == nil {
		return nil
	}
	parent, child, nested := strings.Cut(key, ".")
	if !nested {
		return r[key]
	}
	inner, ok := r[parent].(map[string]any)
	if !ok {
		return nil
	}
	return inner[child]
}

// stringAt fetches a value and coerces scalars to a trimmed string.
func stringAt(r Record, key string) string {
	switch v := valueAt(r, key).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
		return 0, false
	default:
		return 0, false
	}
}
