package record

import (
	"encoding/json"
	"strings"
)

// InstanceConnected reports whether an instance's status field carries a
// connection signal. The field is either a structured object with a boolean
// "connected", or an opaque blob whose serialized form is scanned for a
// truthy signal.
func InstanceConnected(r Record) bool {
	status, ok := r["status"]
	if !ok {
		return false
	}

	switch v := status.(type) {
	case map[string]any:
		if c, ok := v["connected"].(bool); ok {
			return c
		}
		return scanConnected(serialize(v))
	case bool:
		return v
	case string:
		return scanConnected(v)
	default:
		return scanConnected(serialize(v))
	}
}

// scanConnected looks for any of the truthy-connection markers providers
// are known to emit.
func scanConnected(s string) bool {
	s = strings.ToLower(s)
	if s == "" {
		return false
	}
	switch s {
	case "open", "connected", "online":
		return true
	}
	markers := []string{
		`"connected":true`,
		`"connected": true`,
		`state":"open`,
		`state": "open`,
		`status":"online`,
	}
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func serialize(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
