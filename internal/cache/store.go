package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/textlinq/smsbridge-admin/internal/metrics"
)

// FetchFunc produces the payload for a cache entry.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Store holds one cache entry per (endpoint, arguments) key with tag-based
// invalidation, in-flight request de-duplication and subscriber-driven
// eviction. It is a constructed object, not a package global; every client
// owns its own instance.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	grace   time.Duration
	log     *zap.Logger
	metrics *metrics.Metrics
	stop    chan struct{}
	once    sync.Once
	now     func() time.Time
}

type entry struct {
	data      json.RawMessage
	err       error
	tags      map[string]struct{}
	flight    *flight
	watchers  map[int]chan struct{}
	nextWatch int
	subs      int
	// gen increments on every fetch start and every invalidation; a fetch
	// result is only stored when its generation is still current, so a
	// response for superseded state never overwrites fresher state.
	gen       uint64
	stale     bool
	fetchedAt time.Time
	idleSince time.Time
}

type flight struct {
	done chan struct{}
	gen  uint64
	data json.RawMessage
	err  error
}

// Options configures a Store.
type Options struct {
	// Grace is how long a zero-subscriber entry survives before eviction.
	// Entries are not evicted immediately so a quickly remounted consumer
	// finds its data still warm.
	Grace time.Duration
	// SweepEvery is the sweeper interval; defaults to Grace/2.
	SweepEvery time.Duration
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// New creates a Store and starts its eviction sweeper.
func New(opts Options) *Store {
	if opts.Grace == 0 {
		opts.Grace = 60 * time.Second
	}
	if opts.SweepEvery == 0 {
		opts.SweepEvery = opts.Grace / 2
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Store{
		entries: make(map[string]*entry),
		grace:   opts.Grace,
		log:     opts.Logger,
		metrics: opts.Metrics,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go s.sweepLoop(opts.SweepEvery)
	return s
}

// Close stops the sweeper.
func (s *Store) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Key builds the cache key for an endpoint and its arguments. Arguments are
// plain structs, so their JSON encoding is deterministic.
func Key(endpoint string, args any) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s|%v", endpoint, args)
	}
	return endpoint + "|" + string(encoded)
}

// Fetch returns the cached payload for key, or runs f to produce it. Two
// concurrent callers with the same key share a single in-flight fetch. A
// result whose generation was superseded (by Invalidate or ForceRefetch
// while in flight) is handed to its direct waiters but never stored.
func (s *Store) Fetch(ctx context.Context, key string, tags []string, f FetchFunc) (json.RawMessage, error) {
	s.mu.Lock()
	e := s.ensure(key)
	e.addTags(tags)

	if !e.stale && (e.data != nil || e.err != nil) {
		data, err := e.data, e.err
		s.mu.Unlock()
		s.metrics.CacheHit()
		return data, err
	}

	if e.flight != nil {
		fl := e.flight
		s.mu.Unlock()
		s.metrics.CacheJoin()
		select {
		case <-fl.done:
			return fl.data, fl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e.gen++
	fl := &flight{done: make(chan struct{}), gen: e.gen}
	e.flight = fl
	s.mu.Unlock()
	s.metrics.CacheMiss()

	data, err := f(ctx)

	s.mu.Lock()
	if e.flight == fl {
		e.flight = nil
	}
	if fl.gen == e.gen {
		e.data, e.err = data, err
		e.stale = false
		e.fetchedAt = s.now()
		if e.subs == 0 {
			e.idleSince = s.now()
		}
		e.notifyLocked()
	} else {
		s.log.Debug("discarding superseded fetch result", zap.String("key", key))
	}
	s.mu.Unlock()

	fl.data, fl.err = data, err
	close(fl.done)
	return data, err
}

// Invalidate marks every entry carrying any of the given tags as stale and
// notifies its subscribers. In-flight fetches for those entries are
// superseded: their results will be discarded.
func (s *Store) Invalidate(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if !e.hasAnyTag(tags) {
			continue
		}
		e.stale = true
		e.gen++
		e.notifyLocked()
		n++
		s.log.Debug("invalidated", zap.String("key", key))
	}
	s.metrics.Invalidated(n)
}

// AddTags attaches extra tags to an existing entry. Used for per-item tags
// that are only known once a list result has been decoded.
func (s *Store) AddTags(key string, tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.addTags(tags)
	}
}

// ForceRefetch marks a single key stale regardless of tags.
func (s *Store) ForceRefetch(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		e.stale = true
		e.gen++
		e.notifyLocked()
	}
}

// Subscription notifies a consumer whenever its entry is invalidated or
// replaced, and keeps the entry pinned until Cancel.
type Subscription struct {
	// C receives a signal when the entry changes; the consumer reacts by
	// calling Fetch again.
	C      <-chan struct{}
	cancel func()
}

// Cancel releases the subscription. The entry becomes eligible for
// eviction once its last subscriber is gone and the grace period passes.
func (sub *Subscription) Cancel() {
	sub.cancel()
}

// Subscribe pins the entry for key and returns a change-notification
// subscription.
func (s *Store) Subscribe(key string) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensure(key)
	e.subs++
	id := e.nextWatch
	e.nextWatch++
	ch := make(chan struct{}, 1)
	e.watchers[id] = ch

	var once sync.Once
	return &Subscription{
		C: ch,
		cancel: func() {
			once.Do(func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				delete(e.watchers, id)
				e.subs--
				if e.subs == 0 {
					e.idleSince = s.now()
				}
			})
		},
	}
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) ensure(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{
			tags:      make(map[string]struct{}),
			watchers:  make(map[int]chan struct{}),
			idleSince: s.now(),
		}
		s.entries[key] = e
	}
	return e
}

func (s *Store) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep evicts entries that have had no subscribers for the grace period.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	cutoff := s.now().Add(-s.grace)
	for key, e := range s.entries {
		if e.subs > 0 || e.flight != nil {
			continue
		}
		if e.idleSince.After(cutoff) {
			continue
		}
		delete(s.entries, key)
		n++
	}
	if n > 0 {
		s.metrics.Evicted(n)
		s.log.Debug("evicted idle cache entries", zap.Int("count", n))
	}
}

func (e *entry) addTags(tags []string) {
	for _, t := range tags {
		e.tags[t] = struct{}{}
	}
}

func (e *entry) hasAnyTag(tags []string) bool {
	for _, t := range tags {
		if _, ok := e.tags[t]; ok {
			return true
		}
	}
	return false
}

func (e *entry) notifyLocked() {
	for _, ch := range e.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
