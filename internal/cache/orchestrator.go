package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache key schema: <category>:<team>[:qualifier]. All invalidation
// patterns are expressed against this schema with path.Match globs.
const (
	keyIssues    = "team-issues:%s"
	keyConfig    = "team-config:%s"
	keyHierarchy = "team-hierarchy:%s"
)

// IssuesKey is the cache key for a team's issue list.
func IssuesKey(teamID string) string { return fmt.Sprintf(keyIssues, teamID) }

// ConfigKey is the cache key for a team's workflow/label configuration.
func ConfigKey(teamID string) string { return fmt.Sprintf(keyConfig, teamID) }

// HierarchyKey is the cache key for a team's issue-hierarchy data.
func HierarchyKey(teamID string) string { return fmt.Sprintf(keyHierarchy, teamID) }

// TTLClasses maps data categories to lifetimes. A zero duration means
// the category is never cached: GetOrFetch bypasses the store and every
// call hits the source. That is how identity/permission data stays
// effectively uncached without the store ever seeing a zero TTL.
type TTLClasses struct {
	// Issues covers near-real-time issue lists.
	Issues time.Duration
	// Config covers slow-changing workflow and label definitions.
	Config time.Duration
	// Identity covers identity/permission data. Conventionally zero.
	Identity time.Duration
}

// DefaultTTLClasses are the recommended lifetimes.
func DefaultTTLClasses() TTLClasses {
	return TTLClasses{
		Issues:   3 * time.Minute,
		Config:   20 * time.Minute,
		Identity: 0,
	}
}

// Event is a domain event that invalidates cached state.
type Event string

const (
	EventIssueStateChanged     Event = "issue-state-changed"
	EventTeamMembershipChanged Event = "team-membership-changed"
	EventLogout                Event = "logout"
)

// invalidationPatterns maps each event to the key globs it deletes.
// %s is the team ID. This table is static; invalidation is never
// inferred from key contents.
var invalidationPatterns = map[Event][]string{
	EventIssueStateChanged:     {"team-issues:%s"},
	EventTeamMembershipChanged: {"team-config:%s", "team-hierarchy:*"},
}

// ErrUnknownEvent is returned by Invalidate for events outside the
// static table.
var ErrUnknownEvent = errors.New("cache: unknown invalidation event")

// Orchestrator decides which keys are read and written at which TTL,
// collapses concurrent fetches for the same key into one upstream
// call, and applies the event-to-pattern invalidation table.
type Orchestrator struct {
	store   *Store
	ttls    TTLClasses
	group   singleflight.Group
	logger  *zap.Logger
	metrics *Metrics
}

// NewOrchestrator creates an Orchestrator over store. Logger and
// metrics may be nil.
func NewOrchestrator(store *Store, ttls TTLClasses, logger *zap.Logger, metrics *Metrics) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:   store,
		ttls:    ttls,
		logger:  logger,
		metrics: metrics,
	}
}

// TTLs returns the orchestrator's TTL class table.
func (o *Orchestrator) TTLs() TTLClasses { return o.ttls }

// Stats returns the underlying store's observability snapshot.
func (o *Orchestrator) Stats() Stats { return o.store.Stats() }

// Invalidate applies the static event-to-pattern table. The team ID is
// substituted into team-scoped patterns; logout clears every tier.
func (o *Orchestrator) Invalidate(event Event, teamID string) error {
	if o.metrics != nil {
		o.metrics.RecordInvalidation(string(event))
	}

	if event == EventLogout {
		o.store.Clear()
		o.logger.Info("cache cleared on logout")
		return nil
	}

	patterns, ok := invalidationPatterns[event]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	for _, p := range patterns {
		pattern := p
		if strings.Contains(p, "%s") {
			pattern = fmt.Sprintf(p, teamID)
		}
		removed, err := o.store.DeletePattern(pattern)
		if err != nil {
			return fmt.Errorf("invalidate %s: %w", event, err)
		}
		o.logger.Debug("cache invalidated",
			zap.String("event", string(event)),
			zap.String("pattern", pattern),
			zap.Int("removed", removed),
		)
	}
	return nil
}

// GetOrFetch returns the cached value for key, or fetches, caches, and
// returns it. Values round-trip through JSON.
//
// Concurrency: at most one fetch is in flight per key. Late callers
// wait on the existing flight and receive its result or its error.
// Cancellation is caller-local: if ctx is done while a shared fetch is
// in flight, the caller gets ctx.Err() but the fetch runs to
// completion and still populates the cache.
//
// A ttl of zero bypasses the cache entirely (always fetch, never
// store). Fetch failures propagate and are never cached, so the next
// call retries cleanly. Set options (e.g. WithDurable) apply to the
// store write after a successful fetch.
func GetOrFetch[T any](ctx context.Context, o *Orchestrator, key string, ttl time.Duration, fetch func(context.Context) (T, error), opts ...SetOption) (T, error) {
	var zero T

	if ttl == 0 {
		return fetch(ctx)
	}

	if raw, ok := o.store.Get(key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		// Undecodable entry (schema drift across versions): drop it
		// and fall through to a fresh fetch.
		o.logger.Warn("dropping undecodable cache entry", zap.String("key", key))
		o.store.Delete(key)
	}

	ch := o.group.DoChan(key, func() (interface{}, error) {
		// Detach from the triggering caller so its cancellation cannot
		// abort a fetch other callers are waiting on.
		fetchCtx := context.WithoutCancel(ctx)

		if o.metrics != nil {
			o.metrics.RecordFetch()
		}
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cache value for %q: %w", key, err)
		}
		if err := o.store.Set(key, raw, ttl, opts...); err != nil {
			// Caching is an optimization; the fetched value is still
			// good. Serve it and log the store failure.
			o.logger.Warn("cache store failed after fetch",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared && o.metrics != nil {
			o.metrics.RecordShared()
		}
		return res.Val.(T), nil
	}
}
