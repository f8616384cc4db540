package querycache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"tscribe/internal/logging"
	"tscribe/internal/notifications"
)

const defaultGCTime = 5 * time.Minute

// Store owns every cache entry. Construct with NewStore, start the janitor
// with Init, and release with Dispose.
type Store struct {
	mu       sync.Mutex
	entries  map[Key]*entry
	group    singleflight.Group
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	disposed bool
	janitor  bool
	nextSub  uint64

	logger   *slog.Logger
	notifier notifications.Notifier
	now      func() time.Time
	gcTime   time.Duration
	sweep    time.Duration
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logging.NewComponentLogger(logger, "querycache")
	}
}

// WithNotifier sets where mutation success notifications go.
func WithNotifier(n notifications.Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithGCTime sets the default lifetime of unobserved entries.
func WithGCTime(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.gcTime = d
		}
	}
}

// WithJanitorInterval sets how often Init's janitor collects entries. Zero
// disables the janitor.
func WithJanitorInterval(d time.Duration) Option {
	return func(s *Store) {
		s.sweep = d
	}
}

// NewStore builds an empty store. Call Init before relying on garbage collection.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[Key]*entry),
		logger:   logging.NewComponentLogger(nil, "querycache"),
		notifier: notifications.Nop{},
		now:      time.Now,
		gcTime:   defaultGCTime,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Init binds the store to ctx and starts the janitor. Fetches started before
// Init run on a background context.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	if s.ctx == nil {
		s.ctx, s.cancel = context.WithCancel(ctx)
	}
	if s.sweep > 0 && !s.janitor {
		s.janitor = true
		s.wg.Add(1)
		go s.runJanitor(s.ctx, s.sweep)
	}
	return nil
}

// Dispose cancels in-flight fetches, drops every entry and subscription, and
// waits for background work to stop. It is safe to call more than once.
func (s *Store) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.entries = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Store) runJanitor(ctx context.Context, every time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Collect(s.now()); n > 0 {
				s.logger.Debug("cache entries collected", logging.Int("count", n))
			}
		}
	}
}

// Collect drops entries that are unobserved, idle, and past their GC time.
// It returns how many entries were removed.
func (s *Store) Collect(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.entries {
		if len(e.subs) > 0 || e.inflight {
			continue
		}
		gc := e.policy.GCTime
		if gc == Forever {
			continue
		}
		if gc <= 0 {
			gc = s.gcTime
		}
		if now.Sub(e.lastUsed) >= gc {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports how many entries exist.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Invalidate marks each existing entry stale. An entry with a fetch in flight
// gets a new generation so the older result is discarded; an entry with
// subscribers whose policy asks for it is refetched immediately. Marking
// completes before Invalidate returns.
func (s *Store) Invalidate(keys ...Key) {
	var (
		notes  []*entry
		starts []flightStart
	)
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	for _, key := range keys {
		e, ok := s.entries[key]
		if !ok || (e.state == Idle && !e.inflight) {
			continue
		}
		refetch := e.inflight || (len(e.subs) > 0 && e.policy.RefetchOnInvalidate)
		if refetch && e.fetch != nil {
			starts = append(starts, s.startLocked(e))
		} else {
			e.stale = true
		}
		notes = append(notes, e)
	}
	base := s.baseLocked()
	subs := s.subscribersLocked(notes)
	s.mu.Unlock()

	for _, e := range notes {
		s.logger.Debug("cache invalidated", logging.String(logging.FieldCacheKey, e.key.String()))
	}
	s.publish(subs)
	for _, st := range starts {
		s.launch(base, st)
	}
}

type flightStart struct {
	e   *entry
	gen uint64
}

// startLocked begins a new fetch generation for e.
func (s *Store) startLocked(e *entry) flightStart {
	e.gen++
	e.inflight = true
	e.state = Loading
	e.stale = false
	e.err = nil
	return flightStart{e: e, gen: e.gen}
}

func (s *Store) baseLocked() context.Context {
	if s.ctx == nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	return s.ctx
}

func (s *Store) entryLocked(key Key, policy Policy, fetch fetchFunc) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key, policy: policy}
		s.entries[key] = e
	}
	if fetch != nil {
		e.fetch = fetch
		e.policy = policy
	}
	e.lastUsed = s.now()
	return e
}

func (s *Store) needsFetch(e *entry, retryErrors bool) bool {
	if e.inflight || e.fetch == nil {
		return false
	}
	switch e.state {
	case Idle:
		return true
	case Error:
		return retryErrors || e.stale
	case Ready:
		return e.stale || e.policy.expired(e.fetchedAt, s.now())
	default:
		return false
	}
}

// launch starts the flight for st without waiting on it.
func (s *Store) launch(ctx context.Context, st flightStart) <-chan singleflight.Result {
	return s.group.DoChan(st.e.key.flight(st.gen), s.flight(ctx, st))
}

// flight returns the singleflight body for one generation. A late joiner for
// an already settled generation gets the stored outcome without a network
// call; a joiner for a superseded generation is told to retry.
func (s *Store) flight(ctx context.Context, st flightStart) func() (any, error) {
	return func() (any, error) {
		s.mu.Lock()
		e := st.e
		switch {
		case s.disposed || s.entries[e.key] != e:
			s.mu.Unlock()
			return nil, ErrDisposed
		case e.gen != st.gen:
			s.mu.Unlock()
			return nil, errSuperseded
		case e.settled == st.gen:
			value, err := e.value, e.err
			s.mu.Unlock()
			if err != nil {
				return nil, err
			}
			return value, nil
		}
		fetch := e.fetch
		base := s.baseLocked()
		s.wg.Add(1)
		s.mu.Unlock()
		defer s.wg.Done()

		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		stop := context.AfterFunc(base, cancel)
		value, err := fetch(fctx)
		stop()
		cancel()

		return s.settle(st, value, err)
	}
}

func (s *Store) settle(st flightStart, value any, err error) (any, error) {
	s.mu.Lock()
	e := st.e
	if s.disposed || s.entries[e.key] != e {
		s.mu.Unlock()
		return nil, ErrDisposed
	}
	if e.gen != st.gen {
		s.mu.Unlock()
		s.logger.Debug("cache fetch superseded",
			logging.String(logging.FieldCacheKey, e.key.String()),
			logging.Uint64("generation", st.gen),
		)
		return nil, errSuperseded
	}
	e.inflight = false
	e.settled = st.gen
	e.stale = false
	if err != nil {
		e.state = Error
		e.err = err
	} else {
		e.state = Ready
		e.value = value
		e.err = nil
		e.fetchedAt = s.now()
	}
	subs := s.subscribersLocked([]*entry{e})
	s.mu.Unlock()

	s.publish(subs)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// read is the untyped blocking read used by Fetch.
func (s *Store) read(ctx context.Context, key Key, policy Policy, fetch fetchFunc) (any, error) {
	for {
		s.mu.Lock()
		if s.disposed {
			s.mu.Unlock()
			return nil, ErrDisposed
		}
		e := s.entryLocked(key, policy, fetch)
		if e.state == Ready && !s.needsFetch(e, false) {
			value := e.value
			s.mu.Unlock()
			return value, nil
		}
		var started []*entry
		if s.needsFetch(e, true) {
			s.startLocked(e)
			started = append(started, e)
		}
		st := flightStart{e: e, gen: e.gen}
		subs := s.subscribersLocked(started)
		s.mu.Unlock()
		s.publish(subs)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res := <-s.launch(ctx, st):
			if errors.Is(res.Err, errSuperseded) {
				continue
			}
			return res.Val, res.Err
		}
	}
}

// use snapshots the entry for key and returns a func that starts the fetch
// when one is needed. The func runs outside the store lock.
func (s *Store) use(ctx context.Context, key Key, policy Policy, fetch fetchFunc) (*entry, func()) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, func() {}
	}
	e := s.entryLocked(key, policy, fetch)
	if !s.needsFetch(e, false) {
		snap := *e
		s.mu.Unlock()
		return &snap, func() {}
	}
	st := s.startLocked(e)
	snap := *e
	subs := s.subscribersLocked([]*entry{e})
	s.mu.Unlock()
	return &snap, func() {
		s.publish(subs)
		s.launch(ctx, st)
	}
}

func (s *Store) peek(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return &entry{key: key}
	}
	e.lastUsed = s.now()
	snap := *e
	return &snap
}

func (s *Store) set(key Key, policy Policy, value any) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	e := s.entryLocked(key, policy, nil)
	e.policy = policy
	e.gen++
	e.settled = e.gen
	e.inflight = false
	e.state = Ready
	e.value = value
	e.err = nil
	e.stale = false
	e.fetchedAt = s.now()
	subs := s.subscribersLocked([]*entry{e})
	s.mu.Unlock()
	s.publish(subs)
}

func (s *Store) notify(ctx context.Context, n notifications.Notification) {
	s.notifier.Notify(ctx, n)
}

type subscription struct {
	key    Key
	fn     func(Key)
	active atomic.Bool
}

// Subscribe registers fn to be called after every transition of key. The
// returned function unsubscribes; once it returns no new call of fn starts.
func (s *Store) Subscribe(key Key, fn func(Key)) (unsubscribe func()) {
	sub := &subscription{key: key, fn: fn}
	sub.active.Store(true)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return func() {}
	}
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key, lastUsed: s.now()}
		s.entries[key] = e
	}
	if e.subs == nil {
		e.subs = make(map[uint64]*subscription)
	}
	s.nextSub++
	id := s.nextSub
	e.subs[id] = sub
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.entries[key]; ok {
				delete(cur.subs, id)
				cur.lastUsed = s.now()
			}
		})
	}
}

func (s *Store) subscribersLocked(entries []*entry) []*subscription {
	var out []*subscription
	for _, e := range entries {
		for _, sub := range e.subs {
			out = append(out, sub)
		}
	}
	return out
}

func (s *Store) publish(subs []*subscription) {
	for _, sub := range subs {
		if sub.active.Load() {
			sub.fn(sub.key)
		}
	}
}
