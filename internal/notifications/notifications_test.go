package notifications_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tscribe/internal/config"
	"tscribe/internal/notifications"
)

type failingSink struct{ calls int }

func (f *failingSink) Deliver(context.Context, notifications.Notification) error {
	f.calls++
	return errors.New("sink down")
}

func TestConsoleSinkWritesPlainLines(t *testing.T) {
	var buf bytes.Buffer
	sink := notifications.NewConsoleSink(&buf)
	if err := sink.Deliver(context.Background(), notifications.Notification{Kind: notifications.Success, Text: "Project deleted"}); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if got := buf.String(); got != "[OK] Project deleted\n" {
		t.Fatalf("unexpected console output %q", got)
	}
}

type blockingSink struct {
	release   chan struct{}
	delivered atomic.Int32
	ctxErr    atomic.Value
}

func (b *blockingSink) Deliver(ctx context.Context, _ notifications.Notification) error {
	select {
	case <-b.release:
		b.delivered.Add(1)
		return nil
	case <-ctx.Done():
		b.ctxErr.Store(ctx.Err())
		return ctx.Err()
	}
}

func TestHubDeliversBackgroundSinksWithoutBlocking(t *testing.T) {
	var buf bytes.Buffer
	slow := &blockingSink{release: make(chan struct{})}
	hub := notifications.NewHub(nil, notifications.Background(slow, time.Minute), notifications.NewConsoleSink(&buf))

	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		hub.Notify(ctx, notifications.Notification{Kind: notifications.Error, Text: "boom"})
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a background sink")
	}
	if !strings.Contains(buf.String(), "[ERROR] boom") {
		t.Fatalf("expected console delivery inline, got %q", buf.String())
	}

	// The caller going away does not cancel the pending delivery.
	cancel()
	close(slow.release)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := hub.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if slow.delivered.Load() != 1 {
		t.Fatalf("expected one background delivery, got %d", slow.delivered.Load())
	}
}

func TestHubBackgroundDeliveryIsBounded(t *testing.T) {
	slow := &blockingSink{release: make(chan struct{})}
	hub := notifications.NewHub(nil, notifications.Background(slow, 50*time.Millisecond))

	hub.Notify(context.Background(), notifications.Notification{Kind: notifications.Info, Text: "x"})
	waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.Wait(waitCtx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err, _ := slow.ctxErr.Load().(error); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected delivery deadline, got %v", err)
	}
}

func TestHubFansOutAndSwallowsSinkErrors(t *testing.T) {
	var buf bytes.Buffer
	bad := &failingSink{}
	hub := notifications.NewHub(nil, bad, notifications.NewConsoleSink(&buf))

	hub.Notify(context.Background(), notifications.Notification{Kind: notifications.Error, Text: "boom"})

	if bad.calls != 1 {
		t.Fatalf("expected failing sink to be called once, got %d", bad.calls)
	}
	if !strings.Contains(buf.String(), "[ERROR] boom") {
		t.Fatalf("expected console sink to still receive notification, got %q", buf.String())
	}
}

func TestNtfySinkFormatsRequest(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := notifications.NewNtfySink(srv.URL, srv.Client())
	if err := sink.Deliver(context.Background(), notifications.Notification{Kind: notifications.Error, Text: "request failed"}); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if gotTitle != "tscribe - ERROR" || gotTags != "tscribe,error" || gotPriority != "high" || gotBody != "request failed" {
		t.Fatalf("unexpected ntfy request: title=%q tags=%q priority=%q body=%q", gotTitle, gotTags, gotPriority, gotBody)
	}
}

func TestNtfySinkReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	sink := notifications.NewNtfySink(srv.URL, srv.Client())
	err := sink.Deliver(context.Background(), notifications.Notification{Kind: notifications.Info, Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestNewFromConfigRespectsConsoleToggle(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.Console = false
	var buf bytes.Buffer
	hub := notifications.NewFromConfig(&cfg, &buf, nil)
	hub.Notify(context.Background(), notifications.Notification{Kind: notifications.Info, Text: "hidden"})
	if buf.Len() != 0 {
		t.Fatalf("expected no console output, got %q", buf.String())
	}
}

func TestRecorderCounts(t *testing.T) {
	rec := &notifications.Recorder{}
	rec.Notify(context.Background(), notifications.Notification{Kind: notifications.Success, Text: "a"})
	rec.Notify(context.Background(), notifications.Notification{Kind: notifications.Error, Text: "b"})
	if rec.Count(notifications.Success) != 1 || rec.Count(notifications.Error) != 1 || len(rec.All()) != 2 {
		t.Fatalf("unexpected recorder state %v", rec.All())
	}
	rec.Reset()
	if len(rec.All()) != 0 {
		t.Fatal("expected reset to clear recorder")
	}
}
