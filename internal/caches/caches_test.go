package caches_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tscribe/internal/api"
	"tscribe/internal/caches"
	"tscribe/internal/notifications"
	"tscribe/internal/provider"
	"tscribe/internal/querycache"
	"tscribe/internal/transport"
)

type backend struct {
	mu       sync.Mutex
	fail     atomic.Bool
	requests []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+path)
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet && b.fail.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"backend exploded"}`))
		return
	}
	switch {
	case r.Method != http.MethodGet:
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	case path == "/config/apikeys":
		_, _ = w.Write([]byte(`{"gemini":false,"openai":true}`))
	case path == "/config/defaultmodel":
		_, _ = w.Write([]byte(`{"model":"gpt-4"}`))
	case strings.HasSuffix(path, "/transcript"):
		_, _ = w.Write([]byte(`{"projectId":"x1","text":"hello"}`))
	case strings.HasPrefix(path, "/prompts/"):
		_, _ = w.Write([]byte(`{"promptData":{"yourRole":"narrator"}}`))
	default:
		_, _ = w.Write([]byte(`[]`))
	}
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, req := range b.requests {
		if req == method+" "+path {
			n++
		}
	}
	return n
}

type harness struct {
	backend *backend
	store   *querycache.Store
	caches  *caches.Caches
	rec     *notifications.Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := &backend{}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	rec := &notifications.Recorder{}
	exec := transport.NewExecutor(transport.NewClient(srv.URL+"/api", 2*time.Second, transport.WithHTTPClient(srv.Client())), rec, nil)
	store := querycache.NewStore(querycache.WithNotifier(rec))
	t.Cleanup(store.Dispose)
	return &harness{backend: be, store: store, caches: caches.New(store, exec), rec: rec}
}

// seedAll reads every key family so each has a Ready entry.
func (h *harness) seedAll(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	c := h.caches
	steps := []func() error{
		func() error { _, err := c.Transcripts.List(ctx); return err },
		func() error { _, err := c.Projects.List(ctx); return err },
		func() error { _, err := c.Projects.Transcript(ctx, id); return err },
		func() error { _, err := c.Projects.Transcript(ctx, "other"); return err },
		func() error { _, err := c.Prompts.List(ctx); return err },
		func() error { _, err := c.Prompts.Get(ctx, id); return err },
		func() error { _, err := c.Prompts.Get(ctx, "other"); return err },
		func() error { _, err := c.Settings.APIKeys(ctx); return err },
		func() error { _, err := c.Settings.Models(ctx); return err },
		func() error { _, err := c.Settings.DefaultModel(ctx); return err },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func allKeys(id string) []querycache.Key {
	return []querycache.Key{
		caches.TranscriptsKey,
		caches.ProjectsKey,
		caches.ProjectTranscriptKey(id),
		caches.ProjectTranscriptKey("other"),
		caches.PromptsKey,
		caches.PromptKey(id),
		caches.PromptKey("other"),
		caches.APIKeysKey,
		caches.AvailableModelsKey,
		caches.DefaultModelKey,
	}
}

type mutationCase struct {
	name string
	run  func(ctx context.Context, c *caches.Caches, id string) error
}

func mutationCases() []mutationCase {
	return []mutationCase{
		{caches.MutationProcess, func(ctx context.Context, c *caches.Caches, _ string) error {
			_, err := c.Transcripts.Process.Do(ctx, api.ProcessInput{URL: "https://youtu.be/dQw4w9WgXcQ"})
			return err
		}},
		{caches.MutationProcessWithModel, func(ctx context.Context, c *caches.Caches, _ string) error {
			_, err := c.Transcripts.ProcessWithModel.Do(ctx, api.ProcessInput{URL: "https://youtu.be/dQw4w9WgXcQ", Model: "gpt-4"})
			return err
		}},
		{caches.MutationGenerateAudio, func(ctx context.Context, c *caches.Caches, id string) error {
			_, err := c.Transcripts.GenerateAudio.Do(ctx, id)
			return err
		}},
		{caches.MutationSavePrompt, func(ctx context.Context, c *caches.Caches, _ string) error {
			_, err := c.Prompts.Save.Do(ctx, api.SavePromptInput{PromptName: "Intro"})
			return err
		}},
		{caches.MutationDeletePrompt, func(ctx context.Context, c *caches.Caches, id string) error {
			_, err := c.Prompts.Delete.Do(ctx, id)
			return err
		}},
		{caches.MutationDeleteProject, func(ctx context.Context, c *caches.Caches, id string) error {
			_, err := c.Projects.Delete.Do(ctx, id)
			return err
		}},
		{caches.MutationSaveAPIKey, func(ctx context.Context, c *caches.Caches, _ string) error {
			_, err := c.Settings.SaveAPIKey.Do(ctx, api.SaveAPIKeyInput{Provider: provider.Gemini, Key: "abc"})
			return err
		}},
		{caches.MutationDeleteAPIKey, func(ctx context.Context, c *caches.Caches, _ string) error {
			_, err := c.Settings.DeleteAPIKey.Do(ctx, provider.Gemini)
			return err
		}},
		{caches.MutationSaveDefaultModel, func(ctx context.Context, c *caches.Caches, _ string) error {
			_, err := c.Settings.SaveDefaultModel.Do(ctx, "gpt-4")
			return err
		}},
	}
}

func TestEveryMutationHasInvalidationEntry(t *testing.T) {
	cases := mutationCases()
	if len(cases) != len(caches.Invalidations) {
		t.Fatalf("expected %d mutations, table has %d", len(cases), len(caches.Invalidations))
	}
	for _, mc := range cases {
		if _, ok := caches.Invalidations[mc.name]; !ok {
			t.Fatalf("mutation %s missing from invalidation table", mc.name)
		}
	}
}

func TestMutationSuccessInvalidatesExactlyDeclaredKeys(t *testing.T) {
	const id = "x1"
	for _, mc := range mutationCases() {
		t.Run(mc.name, func(t *testing.T) {
			h := newHarness(t)
			h.seedAll(t, id)

			if err := mc.run(context.Background(), h.caches, id); err != nil {
				t.Fatalf("mutation returned error: %v", err)
			}

			expected := map[querycache.Key]bool{}
			for _, key := range caches.Invalidations[mc.name](id) {
				expected[key] = true
			}
			for _, key := range allKeys(id) {
				entry := querycache.Peek[any](h.store, key)
				if entry.Stale != expected[key] {
					t.Fatalf("key %s: stale=%v, want %v", key, entry.Stale, expected[key])
				}
			}
			notes := h.rec.All()
			if len(notes) != 1 || notes[0].Kind != notifications.Success {
				t.Fatalf("expected exactly one success notification, got %+v", notes)
			}
		})
	}
}

func TestMutationFailureInvalidatesNothing(t *testing.T) {
	const id = "x1"
	for _, mc := range mutationCases() {
		t.Run(mc.name, func(t *testing.T) {
			h := newHarness(t)
			h.seedAll(t, id)
			h.backend.fail.Store(true)

			err := mc.run(context.Background(), h.caches, id)
			var merr *querycache.MutationError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *querycache.MutationError, got %T %v", err, err)
			}
			if !strings.Contains(err.Error(), "backend exploded") {
				t.Fatalf("expected server message in error, got %v", err)
			}
			for _, key := range allKeys(id) {
				entry := querycache.Peek[any](h.store, key)
				if entry.Stale || entry.State != querycache.Ready {
					t.Fatalf("key %s changed after failed mutation: %+v", key, entry)
				}
			}
			notes := h.rec.All()
			if len(notes) != 1 || notes[0].Kind != notifications.Error || notes[0].Text != "backend exploded" {
				t.Fatalf("expected exactly one error notification, got %+v", notes)
			}
		})
	}
}

func TestInvalidatedListRefetchesOnNextRead(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.caches.Projects.List(ctx); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if _, err := h.caches.Projects.List(ctx); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if n := h.backend.count(http.MethodGet, "/projects"); n != 1 {
		t.Fatalf("expected cached second read, got %d requests", n)
	}
	if _, err := h.caches.Projects.Delete.Do(ctx, "p1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	projects, err := h.caches.Projects.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", projects)
	}
	if n := h.backend.count(http.MethodGet, "/projects"); n != 2 {
		t.Fatalf("expected refetch after delete, got %d requests", n)
	}
}

func TestSubscribedListRefetchesEagerly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	unsubscribe := h.store.Subscribe(caches.TranscriptsKey, func(querycache.Key) {})
	defer unsubscribe()

	if _, err := h.caches.Transcripts.List(ctx); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if _, err := h.caches.Transcripts.GenerateAudio.Do(ctx, "t1"); err != nil {
		t.Fatalf("GenerateAudio returned error: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for h.backend.count(http.MethodGet, "/transcripts") < 2 {
		if time.Now().After(deadline) {
			t.Fatal("expected eager refetch of observed transcripts list")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReadFailureNotifiesOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	rec := &notifications.Recorder{}
	exec := transport.NewExecutor(transport.NewClient(srv.URL, time.Second), rec, nil)
	store := querycache.NewStore(querycache.WithNotifier(rec))
	defer store.Dispose()
	c := caches.New(store, exec)

	if _, err := c.Prompts.List(context.Background()); err == nil {
		t.Fatal("expected list to fail")
	}
	entry := c.Prompts.UseList(context.Background())
	if entry.State != querycache.Error || entry.Err == nil {
		t.Fatalf("expected error entry, got %+v", entry)
	}
	if entry.Err.Error() != "request failed with status code 503" {
		t.Fatalf("unexpected fallback message %q", entry.Err.Error())
	}
	if n := len(rec.All()); n != 1 || rec.Count(notifications.Error) != 1 {
		t.Fatalf("expected exactly one error notification, got %+v", rec.All())
	}
}
