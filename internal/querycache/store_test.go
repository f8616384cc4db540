package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tscribe/internal/querycache"
	"tscribe/internal/services"
)

var projectsKey = querycache.NewKey("projects")

func counting(calls *atomic.Int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return value, nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestKeyStringAndEquality(t *testing.T) {
	if got := querycache.NewKey("projects", "p1", "transcript").String(); got != "projects/p1/transcript" {
		t.Fatalf("unexpected key string %q", got)
	}
	if querycache.NewKey("projects", "p1") != (querycache.Key{Domain: "projects", ID: "p1"}) {
		t.Fatal("expected structural equality")
	}
	if querycache.NewKey("projects") == querycache.NewKey("projects", "p1") {
		t.Fatal("expected list and item keys to differ")
	}
}

func TestConcurrentFetchesShareOneRequest(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	release := make(chan struct{})
	var calls atomic.Int32
	query := querycache.Query[string]{
		Key: projectsKey,
		Fetch: func(context.Context) (string, error) {
			calls.Add(1)
			<-release
			return "ok", nil
		},
		Policy: querycache.ServerData,
	}

	const readers = 25
	var wg sync.WaitGroup
	results := make(chan string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := querycache.Fetch(context.Background(), store, query)
			if err != nil {
				t.Errorf("Fetch returned error: %v", err)
				return
			}
			results <- v
		}()
	}
	waitFor(t, func() bool { return calls.Load() == 1 })
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != "ok" {
			t.Fatalf("unexpected value %q", v)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one fetch, got %d", got)
	}
}

func TestUseIsNonBlockingAndCachesReadyValue(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	var calls atomic.Int32
	query := querycache.Query[string]{Key: projectsKey, Fetch: counting(&calls, "v1"), Policy: querycache.ServerData}

	first := querycache.Use(context.Background(), store, query)
	if first.State != querycache.Loading {
		t.Fatalf("expected loading on first use, got %s", first.State)
	}
	if _, err := first.Value(); !errors.Is(err, services.ErrCacheConsistency) {
		t.Fatalf("expected cache consistency error reading loading entry, got %v", err)
	}

	waitFor(t, func() bool { return querycache.Peek[string](store, projectsKey).State == querycache.Ready })
	entry := querycache.Use(context.Background(), store, query)
	value, err := entry.Value()
	if err != nil || value != "v1" {
		t.Fatalf("unexpected ready value %q err=%v", value, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one fetch, got %d", calls.Load())
	}
}

func TestInvalidateMarksStaleAndNextReadRefetches(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	var calls atomic.Int32
	query := querycache.Query[string]{Key: projectsKey, Fetch: counting(&calls, "v"), Policy: querycache.ServerData}
	if _, err := querycache.Fetch(context.Background(), store, query); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	store.Invalidate(projectsKey)
	if entry := querycache.Peek[string](store, projectsKey); !entry.Stale {
		t.Fatalf("expected stale entry after invalidation, got %+v", entry)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no eager refetch without subscribers, got %d calls", calls.Load())
	}

	if _, err := querycache.Fetch(context.Background(), store, query); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected refetch after invalidation, got %d calls", calls.Load())
	}
	if entry := querycache.Peek[string](store, projectsKey); entry.Stale || entry.State != querycache.Ready {
		t.Fatalf("expected fresh ready entry, got %+v", entry)
	}
}

func TestInvalidateUnknownKeyIsNoop(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()
	store.Invalidate(querycache.NewKey("nothing"))
	if store.Len() != 0 {
		t.Fatalf("expected no entries, got %d", store.Len())
	}
}

func TestLastInitiatedFetchWins(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	releaseOld := make(chan struct{})
	var calls atomic.Int32
	query := querycache.Query[string]{
		Key: projectsKey,
		Fetch: func(context.Context) (string, error) {
			if calls.Add(1) == 1 {
				<-releaseOld
				return "old", nil
			}
			return "new", nil
		},
		Policy: querycache.ServerData,
	}

	waiter := make(chan string, 1)
	go func() {
		v, err := querycache.Fetch(context.Background(), store, query)
		if err != nil {
			t.Errorf("Fetch returned error: %v", err)
		}
		waiter <- v
	}()
	waitFor(t, func() bool { return calls.Load() == 1 })

	// Invalidating while the first fetch is in flight starts a newer one.
	store.Invalidate(projectsKey)
	waitFor(t, func() bool { return querycache.Peek[string](store, projectsKey).State == querycache.Ready })
	close(releaseOld)

	if got := <-waiter; got != "new" {
		t.Fatalf("expected waiter to observe the later fetch, got %q", got)
	}
	time.Sleep(20 * time.Millisecond)
	value, err := querycache.Peek[string](store, projectsKey).Value()
	if err != nil || value != "new" {
		t.Fatalf("expected late old response to be discarded, got %q err=%v", value, err)
	}
}

func TestCancelledCallerDoesNotFailOtherWaiters(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	release := make(chan struct{})
	var fetchErr atomic.Value
	query := querycache.Query[string]{
		Key: projectsKey,
		Fetch: func(ctx context.Context) (string, error) {
			<-release
			if err := ctx.Err(); err != nil {
				fetchErr.Store(err)
				return "", err
			}
			return "done", nil
		},
		Policy: querycache.ServerData,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := querycache.Fetch(ctx, store, query)
		cancelled <- err
	}()
	waitFor(t, func() bool { return querycache.Peek[string](store, projectsKey).State == querycache.Loading })

	other := make(chan string, 1)
	go func() {
		v, _ := querycache.Fetch(context.Background(), store, query)
		other <- v
	}()

	cancel()
	if err := <-cancelled; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled caller to stop waiting, got %v", err)
	}
	close(release)
	if got := <-other; got != "done" {
		t.Fatalf("expected other waiter to receive value, got %q", got)
	}
	if fetchErr.Load() != nil {
		t.Fatalf("fetch context should not be cancelled by a caller: %v", fetchErr.Load())
	}
}

func TestErrorEntryRetriedByFetchButNotUse(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	var calls atomic.Int32
	boom := errors.New("boom")
	query := querycache.Query[string]{
		Key: projectsKey,
		Fetch: func(context.Context) (string, error) {
			if calls.Add(1) == 1 {
				return "", boom
			}
			return "recovered", nil
		},
		Policy: querycache.ServerData,
	}

	if _, err := querycache.Fetch(context.Background(), store, query); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	entry := querycache.Use(context.Background(), store, query)
	if entry.State != querycache.Error || !errors.Is(entry.Err, boom) {
		t.Fatalf("expected error entry, got %+v", entry)
	}
	if calls.Load() != 1 {
		t.Fatalf("Use should not retry an error entry, got %d calls", calls.Load())
	}

	value, err := querycache.Fetch(context.Background(), store, query)
	if err != nil || value != "recovered" {
		t.Fatalf("expected Fetch to retry, got %q err=%v", value, err)
	}
}

func TestStaleTimeExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	store := querycache.NewStore(querycache.WithClock(clock))
	defer store.Dispose()

	var calls atomic.Int32
	query := querycache.Query[string]{
		Key:    querycache.NewKey("drafts", "process"),
		Fetch:  counting(&calls, "draft"),
		Policy: querycache.ClientState,
	}
	for i := 0; i < 3; i++ {
		if _, err := querycache.Fetch(context.Background(), store, query); err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected fresh entry to be reused, got %d calls", calls.Load())
	}

	mu.Lock()
	now = now.Add(25 * time.Hour)
	mu.Unlock()
	if _, err := querycache.Fetch(context.Background(), store, query); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected refetch after stale time, got %d calls", calls.Load())
	}
}

func TestSubscribersReceiveTransitionsAndEagerRefetch(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	var calls atomic.Int32
	query := querycache.Query[string]{Key: projectsKey, Fetch: counting(&calls, "v"), Policy: querycache.ServerData}

	var mu sync.Mutex
	var states []querycache.State
	unsubscribe := store.Subscribe(projectsKey, func(k querycache.Key) {
		mu.Lock()
		states = append(states, querycache.Peek[string](store, k).State)
		mu.Unlock()
	})

	if _, err := querycache.Fetch(context.Background(), store, query); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	store.Invalidate(projectsKey)
	waitFor(t, func() bool { return calls.Load() == 2 })
	waitFor(t, func() bool { return querycache.Peek[string](store, projectsKey).State == querycache.Ready })

	unsubscribe()
	mu.Lock()
	seen := len(states)
	mu.Unlock()
	if seen < 3 {
		t.Fatalf("expected loading/ready transitions to be published, got %v", states)
	}

	store.Invalidate(projectsKey)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	after := len(states)
	mu.Unlock()
	if after != seen {
		t.Fatalf("expected no callbacks after unsubscribe, got %d more", after-seen)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected no eager refetch without subscribers, got %d calls", calls.Load())
	}
}

func TestCollectHonorsPolicy(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := querycache.NewStore(querycache.WithClock(func() time.Time { return now }), querycache.WithGCTime(time.Minute))
	defer store.Dispose()

	var calls atomic.Int32
	server := querycache.Query[string]{Key: projectsKey, Fetch: counting(&calls, "s"), Policy: querycache.ServerData}
	draft := querycache.Query[string]{Key: querycache.NewKey("drafts", "apikey"), Fetch: counting(&calls, "d"), Policy: querycache.ClientState}
	observed := querycache.NewKey("prompts")

	for _, q := range []querycache.Query[string]{server, draft} {
		if _, err := querycache.Fetch(context.Background(), store, q); err != nil {
			t.Fatalf("Fetch returned error: %v", err)
		}
	}
	unsubscribe := store.Subscribe(observed, func(querycache.Key) {})
	defer unsubscribe()

	if n := store.Collect(now.Add(30 * time.Second)); n != 0 {
		t.Fatalf("expected nothing collected before gc time, got %d", n)
	}
	if n := store.Collect(now.Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected only the server entry to be collected, got %d", n)
	}
	if querycache.Peek[string](store, projectsKey).State != querycache.Idle {
		t.Fatal("expected collected entry to be absent")
	}
	if querycache.Peek[string](store, draft.Key).State != querycache.Ready {
		t.Fatal("expected forever entry to survive")
	}
}

func TestSetSupersedesAndPublishes(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	key := querycache.NewKey("drafts", "prompt")
	var published atomic.Int32
	unsubscribe := store.Subscribe(key, func(querycache.Key) { published.Add(1) })
	defer unsubscribe()

	querycache.Set(store, key, querycache.ClientState, "hello")
	value, err := querycache.Peek[string](store, key).Value()
	if err != nil || value != "hello" {
		t.Fatalf("unexpected value %q err=%v", value, err)
	}
	if published.Load() != 1 {
		t.Fatalf("expected one publish, got %d", published.Load())
	}
}

func TestTypeMismatchIsConsistencyError(t *testing.T) {
	store := querycache.NewStore()
	defer store.Dispose()

	querycache.Set(store, projectsKey, querycache.ServerData, 42)
	if _, err := querycache.Peek[string](store, projectsKey).Value(); !errors.Is(err, services.ErrCacheConsistency) {
		t.Fatalf("expected consistency error, got %v", err)
	}
}

func TestDisposeStopsReadsAndCancelsFetches(t *testing.T) {
	store := querycache.NewStore(querycache.WithJanitorInterval(10 * time.Millisecond))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}

	started := make(chan struct{})
	query := querycache.Query[string]{
		Key: projectsKey,
		Fetch: func(ctx context.Context) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		},
		Policy: querycache.ServerData,
	}
	querycache.Use(context.Background(), store, query)
	<-started

	store.Dispose()
	store.Dispose()

	if _, err := querycache.Fetch(context.Background(), store, query); !errors.Is(err, querycache.ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if err := store.Init(context.Background()); !errors.Is(err, querycache.ErrDisposed) {
		t.Fatalf("expected Init after Dispose to fail, got %v", err)
	}
}
