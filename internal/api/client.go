// Package api is the REST client for the dashboard backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mirahq/mira/internal/constants"
	"github.com/mirahq/mira/internal/record"
)

// ErrBadBaseURL is returned when the configured API base is not http(s).
var ErrBadBaseURL = errors.New("api base must be an http or https URL")

// Client talks to the dashboard backend.
type Client struct {
	base       string
	httpClient *http.Client
}

// NewClient validates the base URL and returns a client. Trailing slashes
// are stripped so paths join cleanly.
func NewClient(base string) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return nil, fmt.Errorf("parse api base: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrBadBaseURL
	}
	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{
			Timeout: constants.RequestTimeout,
		},
	}, nil
}

// Base returns the validated base URL without a trailing slash.
func (c *Client) Base() string {
	return c.base
}

// Settings is the per-client configuration the backend stores.
type Settings struct {
	InstanceURL string
}

// UnmarshalJSON accepts both key spellings the backend has used.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw struct {
		InstanceURLSnake string `json:"instance_url"`
		InstanceURLCamel string `json:"instanceUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.InstanceURL = raw.InstanceURLSnake
	if s.InstanceURL == "" {
		s.InstanceURL = raw.InstanceURLCamel
	}
	return nil
}

// Instances fetches the full instance list.
func (c *Client) Instances(ctx context.Context) ([]record.Record, error) {
	var envelope struct {
		Instances []record.Record `json:"instances"`
	}
	if err := c.getJSON(ctx, "/instances", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetch instances: %w", err)
	}
	return envelope.Instances, nil
}

// ClientSettings fetches the stored configuration for a client slug.
func (c *Client) ClientSettings(ctx context.Context, slug string) (Settings, error) {
	var settings Settings
	q := url.Values{"client": {slug}}
	if err := c.getJSON(ctx, "/client-settings", q, &settings); err != nil {
		return Settings{}, fmt.Errorf("fetch client settings: %w", err)
	}
	return settings, nil
}

// ResolveInstance asks the backend for the preferred instance id for a
// client slug. An empty id means the backend has no preference.
func (c *Client) ResolveInstance(ctx context.Context, slug string) (string, error) {
	var resolved struct {
		ID string `json:"id"`
	}
	q := url.Values{"client": {slug}}
	if err := c.getJSON(ctx, "/instances/resolve", q, &resolved); err != nil {
		return "", fmt.Errorf("resolve instance: %w", err)
	}
	return resolved.ID, nil
}

// Chats fetches conversations for an instance, optionally server-filtered.
func (c *Client) Chats(ctx context.Context, instanceID string, limit, offset int, query string) ([]record.Record, error) {
	var envelope struct {
		Chats []record.Record `json:"chats"`
	}
	q := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	if query != "" {
		q.Set("q", query)
	}
	path := "/instances/" + url.PathEscape(instanceID) + "/chats"
	if err := c.getJSON(ctx, path, q, &envelope); err != nil {
		return nil, fmt.Errorf("fetch chats: %w", err)
	}
	return envelope.Chats, nil
}

// Messages fetches a message thread. The primary chat id goes in chatId;
// alternates go in alts so the backend may retry internally. The response
// shape is inconsistent across providers: the array may be the whole body,
// or sit under "messages" or "content". The first level that is an array
// wins.
func (c *Client) Messages(ctx context.Context, instanceID, chatID string, alts []string, limit int) ([]record.Record, error) {
	q := url.Values{
		"chatId": {chatID},
		"limit":  {strconv.Itoa(limit)},
		"all":    {"1"},
	}
	if len(alts) > 0 {
		q.Set("alts", strings.Join(alts, ","))
	}
	path := "/instances/" + url.PathEscape(instanceID) + "/messages"

	body, err := c.get(ctx, path, q)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	msgs, err := decodeMessages(body)
	if err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

// decodeMessages tries each known nesting level in order.
func decodeMessages(body []byte) ([]record.Record, error) {
	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, err
	}

	if arr, ok := top.([]any); ok {
		return toRecords(arr), nil
	}
	if obj, ok := top.(map[string]any); ok {
		for _, key := range []string{"messages", "content"} {
			if arr, ok := obj[key].([]any); ok {
				return toRecords(arr), nil
			}
		}
	}
	return nil, errors.New("no message array found in response")
}

func toRecords(arr []any) []record.Record {
	out := make([]record.Record, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, record.Record(m))
		}
	}
	return out
}

// ExportURL builds the conversation-export navigation target for an
// instance. Export rendering itself happens server side.
func (c *Client) ExportURL(instanceID string) string {
	return c.base + "/instances/" + url.PathEscape(instanceID) + "/export.txt"
}

// MediaProxyURL rewrites a third-party media URL to a same-origin proxy
// target.
func (c *Client) MediaProxyURL(raw string) string {
	return c.base + "/media/proxy?url=" + url.QueryEscape(raw)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("http error %d: %s", resp.StatusCode, excerpt(body))
	}
	return body, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
