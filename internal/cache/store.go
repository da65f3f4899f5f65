// Package cache implements the multi-tier cache behind the board view:
// a volatile in-memory tier, an optional durable tier for entries that
// must survive restarts, and an orchestrator that collapses concurrent
// fetches and maps domain events to invalidations.
package cache

import (
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrInvalidTTL is returned by Set when the TTL is not a positive
	// duration. A missing TTL must never degrade to "never expires".
	ErrInvalidTTL = errors.New("cache: ttl must be a positive duration")
	// ErrNotFound is returned by durable tiers for absent keys.
	ErrNotFound = errors.New("cache: key not found")
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("cache: store is closed")
)

// entry is a volatile-tier cache entry. The value is JSON bytes; the
// store never interprets it.
type entry struct {
	value     []byte
	expiresAt time.Time
	durable   bool
}

// Stats is the observability snapshot exposed to tooling.
type Stats struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hitRatio"`
	Entries  int     `json:"entries"`
}

// Store is a thread-safe key/value cache with per-entry TTL.
//
// Lookup order is volatile tier first, then the durable tier for keys
// written with the Durable option; durable hits are promoted back into
// the volatile tier. An entry past its expiry is absent on read
// regardless of whether the janitor has physically purged it yet.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	closed  bool

	hits   uint64
	misses uint64

	durable Durable
	logger  *zap.Logger
	metrics *Metrics

	janitorStop chan struct{}
	janitorDone chan struct{}
}

// Options configures a Store. All fields are optional.
type Options struct {
	// Durable is the persistent tier. Nil disables durability; entries
	// set with the Durable option then live in the volatile tier only.
	Durable Durable
	// Logger records durable-tier degradation. Nil disables logging.
	Logger *zap.Logger
	// Metrics tracks hit/miss/size gauges. Nil disables metrics.
	Metrics *Metrics
	// JanitorInterval is how often expired entries are physically
	// purged from both tiers. Zero disables the janitor; expired
	// entries are then only evicted lazily on read.
	JanitorInterval time.Duration
}

// NewStore creates a Store.
func NewStore(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		entries: make(map[string]entry),
		durable: opts.Durable,
		logger:  logger,
		metrics: opts.Metrics,
	}
	if opts.JanitorInterval > 0 {
		s.janitorStop = make(chan struct{})
		s.janitorDone = make(chan struct{})
		go s.janitor(opts.JanitorInterval)
	}
	return s
}

// SetOption modifies a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	durable bool
}

// WithDurable writes the entry through to the durable tier so it
// survives a process restart.
func WithDurable() SetOption {
	return func(o *setOptions) { o.durable = true }
}

// Set stores value under key for ttl. A non-positive ttl is a
// programmer error and is rejected with ErrInvalidTTL rather than being
// treated as infinite.
func (s *Store) Set(key string, value []byte, ttl time.Duration, opts ...SetOption) error {
	if ttl <= 0 {
		return fmt.Errorf("%w (got %v for key %q)", ErrInvalidTTL, ttl, key)
	}
	var so setOptions
	for _, opt := range opts {
		opt(&so)
	}

	expiresAt := time.Now().Add(ttl)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.entries[key] = entry{value: value, expiresAt: expiresAt, durable: so.durable}
	size := len(s.entries)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetEntries(size)
	}

	if so.durable && s.durable != nil {
		if err := s.durable.Set(key, value, expiresAt); err != nil {
			// Durability is best-effort: the volatile entry is already
			// live, so correctness is preserved.
			s.logger.Warn("durable tier write failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return nil
}

// Get returns the value for key, or false if the key is absent or its
// entry has expired. A durable-tier hit is promoted into the volatile
// tier with its remaining lifetime.
func (s *Store) Get(key string) ([]byte, bool) {
	now := time.Now()

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, false
	}
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok {
		if now.Before(e.expiresAt) {
			s.recordHit()
			return e.value, true
		}
		// Lazy eviction of the expired entry.
		s.mu.Lock()
		if cur, still := s.entries[key]; still && !now.Before(cur.expiresAt) {
			delete(s.entries, key)
		}
		size := len(s.entries)
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.SetEntries(size)
			s.metrics.RecordEviction()
		}
	}

	if value, expiresAt, ok := s.durableGet(key, now); ok {
		s.promote(key, value, expiresAt)
		s.recordHit()
		return value, true
	}

	s.recordMiss()
	return nil, false
}

// durableGet reads key from the durable tier, treating expired entries
// as absent and purging them.
func (s *Store) durableGet(key string, now time.Time) ([]byte, time.Time, bool) {
	if s.durable == nil {
		return nil, time.Time{}, false
	}
	value, expiresAt, err := s.durable.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("durable tier read failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, time.Time{}, false
	}
	if !now.Before(expiresAt) {
		if err := s.durable.Delete(key); err != nil {
			s.logger.Warn("durable tier purge failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil, time.Time{}, false
	}
	return value, expiresAt, true
}

// promote re-inserts a durable-tier hit into the volatile tier.
func (s *Store) promote(key string, value []byte, expiresAt time.Time) {
	s.mu.Lock()
	if !s.closed {
		s.entries[key] = entry{value: value, expiresAt: expiresAt, durable: true}
	}
	size := len(s.entries)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetEntries(size)
	}
}

// Delete removes key from all tiers. No-op for absent keys.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	size := len(s.entries)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetEntries(size)
	}

	if s.durable != nil {
		if err := s.durable.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("durable tier delete failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}

// DeletePattern removes every key matching a shell-style glob (the
// path.Match syntax, e.g. "team-issues:ENG:*") from all tiers. The
// effect is synchronous: a matched key is absent from the very next
// Get. Returns the number of volatile-tier keys removed.
func (s *Store) DeletePattern(pattern string) (int, error) {
	// Validate the pattern up front so a malformed glob fails loudly
	// instead of silently matching nothing.
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, fmt.Errorf("cache: invalid pattern %q: %w", pattern, err)
	}

	s.mu.Lock()
	removed := 0
	for key := range s.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.entries, key)
			removed++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetEntries(size)
	}

	if s.durable != nil {
		keys, err := s.durable.Keys()
		if err != nil {
			s.logger.Warn("durable tier key listing failed", zap.Error(err))
			return removed, nil
		}
		for _, key := range keys {
			if ok, _ := path.Match(pattern, key); ok {
				if err := s.durable.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
					s.logger.Warn("durable tier delete failed",
						zap.String("key", key),
						zap.Error(err),
					)
				}
			}
		}
	}
	return removed, nil
}

// Clear empties all tiers. Used on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetEntries(0)
	}

	if s.durable != nil {
		if err := s.durable.Clear(); err != nil {
			s.logger.Warn("durable tier clear failed", zap.Error(err))
		}
	}
}

// Stats returns a point-in-time observability snapshot.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Stats{
		Hits:    s.hits,
		Misses:  s.misses,
		Entries: len(s.entries),
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRatio = float64(s.hits) / float64(total)
	}
	return st
}

// Close stops the janitor and closes the durable tier. The store
// rejects writes afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	if s.janitorStop != nil {
		close(s.janitorStop)
		<-s.janitorDone
	}
	if s.durable != nil {
		return s.durable.Close()
	}
	return nil
}

func (s *Store) recordHit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordHit()
	}
}

func (s *Store) recordMiss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.RecordMiss()
	}
}

// janitor periodically purges expired entries so the durable tier does
// not accumulate dead rows. Lazy eviction on read already guarantees
// correctness; this loop only reclaims space.
func (s *Store) janitor(interval time.Duration) {
	defer close(s.janitorDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.janitorStop:
			return
		case <-ticker.C:
			s.purgeExpired(time.Now())
		}
	}
}

func (s *Store) purgeExpired(now time.Time) {
	s.mu.Lock()
	purged := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			purged++
		}
	}
	size := len(s.entries)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetEntries(size)
		for i := 0; i < purged; i++ {
			s.metrics.RecordEviction()
		}
	}

	if s.durable != nil {
		if err := s.durable.PurgeExpired(now); err != nil {
			s.logger.Warn("durable tier purge failed", zap.Error(err))
		}
	}
}
