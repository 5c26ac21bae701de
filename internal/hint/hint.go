// Package hint derives the "system" hint used to narrow the instance list
// to one client's accounts.
package hint

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mirahq/mira/internal/api"
)

// Resolve determines the lowercase system hint for a client. An explicit
// hint wins verbatim. Otherwise the client's stored settings are fetched
// and the hint is the first DNS label of the configured instance URL.
// Lookup failure is not an error: no hint is a valid outcome.
func Resolve(ctx context.Context, client *api.Client, slug, explicit string) string {
	if h := strings.ToLower(strings.TrimSpace(explicit)); h != "" {
		return h
	}
	if slug == "" {
		return ""
	}

	settings, err := client.ClientSettings(ctx, slug)
	if err != nil {
		log.Debug().Err(err).Str("client", slug).Msg("Hint lookup failed, continuing without hint")
		return ""
	}
	return FromURL(settings.InstanceURL)
}

// FromURL extracts the hint from a configured instance URL: the first DNS
// label of its hostname, lowercased. Returns "" for anything unparseable.
func FromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	label, _, _ := strings.Cut(host, ".")
	return strings.ToLower(label)
}
