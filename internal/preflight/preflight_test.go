package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tscribe/internal/config"
	"tscribe/internal/preflight"
	"tscribe/internal/transport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := preflight.CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := preflight.CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckBackend_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/test" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"API is working"}`))
	}))
	defer srv.Close()

	result := preflight.CheckBackend(context.Background(), transport.NewClient(srv.URL+"/api", time.Second))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckBackend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model catalogue unavailable"}`))
	}))
	defer srv.Close()

	result := preflight.CheckBackend(context.Background(), transport.NewClient(srv.URL+"/api", time.Second))
	if result.Passed {
		t.Fatal("expected failure for server error")
	}
	if result.Detail == "" {
		t.Fatal("expected detail")
	}
}

func TestCheckBackend_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	result := preflight.CheckBackend(context.Background(), transport.NewClient(url+"/api", time.Second))
	if result.Passed {
		t.Fatal("expected failure for closed server")
	}
}

func TestCheckDrafts(t *testing.T) {
	result := preflight.CheckDrafts(filepath.Join(t.TempDir(), "drafts.db"))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAllCoversEnabledChecks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	base := t.TempDir()
	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/api"
	cfg.Downloads.Dir = base
	cfg.Logging.Dir = base
	cfg.Drafts.Enabled = false

	results := preflight.RunAll(context.Background(), &cfg, transport.NewFromConfig(&cfg))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %+v", results)
	}
	if preflight.Failed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
}
