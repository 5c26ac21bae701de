// Package directory fetches, filters and auto-selects messaging instances.
package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mirahq/mira/internal/api"
	"github.com/mirahq/mira/internal/hint"
	"github.com/mirahq/mira/internal/record"
	"github.com/mirahq/mira/internal/session"
)

// Directory loads the instance list and owns the instance-list fields of
// the session state.
type Directory struct {
	client *api.Client

	slug         string // client slug, empty when not embedding for a client
	explicitHint string // explicit system hint, overrides derivation
	instanceHint string // preferred instance id or name substring
}

// New creates a directory. slug, systemHint and instanceHint mirror the
// client/system/inst parameters of the embedding contract and may all be
// empty.
func New(client *api.Client, slug, systemHint, instanceHint string) *Directory {
	return &Directory{
		client:       client,
		slug:         slug,
		explicitHint: systemHint,
		instanceHint: instanceHint,
	}
}

// Snapshot is the joined result of one directory fetch: the instance list
// plus whatever the auxiliary lookups produced.
type Snapshot struct {
	Instances []record.Record
	Settings  api.Settings
	Resolved  string // server-resolved preferred instance id, "" when none
}

// Fetch issues the instance list, client settings and server-side resolve
// requests concurrently and joins them. Only the instance list is
// critical; the auxiliary fetches degrade to zero values. Fetch never
// touches session state.
func (d *Directory) Fetch(ctx context.Context) (Snapshot, error) {
	var (
		wg   sync.WaitGroup
		snap Snapshot
		err  error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap.Instances, err = d.client.Instances(ctx)
	}()

	if d.slug != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, serr := d.client.ClientSettings(ctx, d.slug)
			if serr != nil {
				log.Debug().Err(serr).Str("client", d.slug).Msg("Client settings unavailable")
				return
			}
			snap.Settings = s
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			id, rerr := d.client.ResolveInstance(ctx, d.slug)
			if rerr != nil {
				log.Debug().Err(rerr).Str("client", d.slug).Msg("Server-side instance resolution unavailable")
				return
			}
			snap.Resolved = id
		}()
	}

	wg.Wait()

	if err != nil {
		return Snapshot{}, fmt.Errorf("load instances: %w", err)
	}
	return snap, nil
}

// Apply writes a fetched snapshot into the session state: derives the
// authoritative hint, builds the hint-filtered base list, sorts it
// connected-first, and evaluates the auto-selection cascade. Returns the
// auto-selected instance id, or "" when no rule matched or the target was
// not in the rendered list (the latter records a notice, not an error).
func (d *Directory) Apply(st *session.State, snap Snapshot) string {
	// The freshly fetched settings are the authoritative hint source,
	// superseding anything resolved earlier.
	h := strings.ToLower(strings.TrimSpace(d.explicitHint))
	if h == "" {
		h = hint.FromURL(snap.Settings.InstanceURL)
	}

	st.Instances = snap.Instances
	st.Hint = h
	st.BaseInstances = baseFilter(snap.Instances, h)
	sortConnectedFirst(st.BaseInstances)
	st.FilteredInstances = nil
	st.InstanceSearch = false

	target := d.autoSelect(st.BaseInstances, snap.Instances, snap.Resolved, h)
	if target == "" {
		return ""
	}
	if !containsID(st.BaseInstances, target) {
		log.Warn().Str("instance", target).Str("hint", h).Msg("Auto-select target not in rendered list")
		st.AddNotice("La instancia preferida no está en la lista")
		return ""
	}
	return target
}

// Fail clears the instance lists after a fatal fetch and records a notice.
func (d *Directory) Fail(st *session.State) {
	st.Instances = nil
	st.BaseInstances = nil
	st.FilteredInstances = nil
	st.InstanceSearch = false
	st.AddNotice("No se pudieron cargar las instancias")
}

// Load is Fetch followed by Apply, for callers that are not driving an
// event loop.
func (d *Directory) Load(ctx context.Context, st *session.State) (string, error) {
	snap, err := d.Fetch(ctx)
	if err != nil {
		d.Fail(st)
		return "", err
	}
	return d.Apply(st, snap), nil
}

// autoSelect evaluates the selection cascade, first match wins: the
// server-resolved id, then the inst hint (exact id, else name substring),
// then an exact systemName match against the system hint.
func (d *Directory) autoSelect(base, all []record.Record, resolved, systemHint string) string {
	if resolved != "" {
		return resolved
	}

	if ih := strings.ToLower(strings.TrimSpace(d.instanceHint)); ih != "" {
		for _, r := range all {
			if strings.ToLower(record.InstanceID(r)) == ih {
				return record.InstanceID(r)
			}
		}
		for _, r := range all {
			if strings.Contains(strings.ToLower(record.InstanceName(r)), ih) {
				return record.InstanceID(r)
			}
		}
	}

	if systemHint != "" {
		for _, r := range base {
			if strings.ToLower(record.InstanceSystemName(r)) == systemHint {
				return record.InstanceID(r)
			}
		}
	}
	return ""
}

// Search re-filters the base subset. Matching is a case-insensitive
// substring over name, system name, and a synthesized online/offline
// token. An empty query clears the filter.
func (d *Directory) Search(st *session.State, query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		st.FilteredInstances = nil
		st.InstanceSearch = false
		return
	}

	filtered := make([]record.Record, 0, len(st.BaseInstances))
	for _, r := range st.BaseInstances {
		if instanceMatches(r, query) {
			filtered = append(filtered, r)
		}
	}
	st.FilteredInstances = filtered
	st.InstanceSearch = true
}

// InstanceByID finds an instance in the full fetched list by exact id.
func InstanceByID(st *session.State, id string) (record.Record, bool) {
	for _, r := range st.Instances {
		if record.InstanceID(r) == id {
			return r, true
		}
	}
	return nil, false
}

func instanceMatches(r record.Record, query string) bool {
	if strings.Contains(strings.ToLower(record.InstanceName(r)), query) {
		return true
	}
	if strings.Contains(strings.ToLower(record.InstanceSystemName(r)), query) {
		return true
	}
	token := "offline"
	if record.InstanceConnected(r) {
		token = "online"
	}
	return strings.Contains(token, query)
}

// baseFilter keeps the instances whose systemName or name contains the
// hint. No hint means the base is the full list.
func baseFilter(instances []record.Record, h string) []record.Record {
	if h == "" {
		base := make([]record.Record, len(instances))
		copy(base, instances)
		return base
	}
	base := make([]record.Record, 0, len(instances))
	for _, r := range instances {
		if strings.Contains(strings.ToLower(record.InstanceSystemName(r)), h) ||
			strings.Contains(strings.ToLower(record.InstanceName(r)), h) {
			base = append(base, r)
		}
	}
	return base
}

// sortConnectedFirst puts connected instances ahead of disconnected ones,
// preserving input order within each group.
func sortConnectedFirst(instances []record.Record) {
	sort.SliceStable(instances, func(i, j int) bool {
		return record.InstanceConnected(instances[i]) && !record.InstanceConnected(instances[j])
	})
}

func containsID(instances []record.Record, id string) bool {
	for _, r := range instances {
		if record.InstanceID(r) == id {
			return true
		}
	}
	return false
}
