package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"tscribe/internal/api"
	"tscribe/internal/drafts"
	"tscribe/internal/transport"
)

const backendTimeout = 5 * time.Second

// CheckBackend verifies that the backend answers its test endpoint.
func CheckBackend(ctx context.Context, client *transport.Client) Result {
	const name = "Backend"
	if client == nil || client.BaseURL() == "" {
		return Result{Name: name, Detail: "missing api.base_url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, backendTimeout)
	defer cancel()

	req := api.Ping()
	resp, err := client.Send(checkCtx, req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (unreachable: %v)", client.BaseURL(), summarize(transport.Normalize(req.Operation, err)))}
	}
	defer resp.Body.Close()
	if err := transport.CheckResponse(req.Operation, resp); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", client.BaseURL(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable)", client.BaseURL())}
}

func summarize(err *transport.Error) string {
	if err.Timeout {
		return fmt.Sprintf("timed out after %s", backendTimeout)
	}
	return err.Message
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDrafts opens the drafts database, creating it when missing.
func CheckDrafts(path string) Result {
	const name = "Drafts store"
	store, err := drafts.Open(path)
	if err != nil {
		if errors.Is(err, drafts.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema mismatch, run `tscribe drafts clear` after deleting the file)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (ok)", path)}
}
