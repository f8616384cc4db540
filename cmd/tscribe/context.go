package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"tscribe/internal/caches"
	"tscribe/internal/config"
	"tscribe/internal/download"
	"tscribe/internal/drafts"
	"tscribe/internal/logging"
	"tscribe/internal/notifications"
	"tscribe/internal/querycache"
	"tscribe/internal/services"
	"tscribe/internal/telemetry"
	"tscribe/internal/transport"
	"tscribe/internal/workspace"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// session is everything one command invocation needs to talk to the backend.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *querycache.Store
	executor   *transport.Executor
	workspace  *workspace.Workspace
	downloader *download.Downloader
}

// reportedError marks an error the notification console already showed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// errorTally counts error notifications so main can skip repeating them.
type errorTally struct {
	notifications.Notifier
	errors atomic.Int32
}

func (t *errorTally) Notify(ctx context.Context, n notifications.Notification) {
	if n.Kind == notifications.Error {
		t.errors.Add(1)
	}
	t.Notifier.Notify(ctx, n)
}

// withSession wires a session for the duration of fn and tears it down after.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Warn("tracing disabled", logging.Error(err))
	}
	defer func() {
		if shutdown != nil {
			_ = shutdown(context.WithoutCancel(ctx))
		}
	}()

	hub := notifications.NewFromConfig(cfg, cmd.ErrOrStderr(), logger)
	defer func() {
		waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(cfg.Notifications.RequestTimeout)*time.Second)
		defer cancel()
		if err := hub.Wait(waitCtx); err != nil {
			logger.Warn("pending notifications dropped", logging.Error(err))
		}
	}()
	notifier := &errorTally{Notifier: hub}
	client := transport.NewFromConfig(cfg)
	executor := transport.NewExecutor(client, notifier, logger)

	store := querycache.NewStore(
		querycache.WithLogger(logger),
		querycache.WithNotifier(notifier),
		querycache.WithGCTime(cfg.GCInterval()),
		querycache.WithJanitorInterval(cfg.JanitorInterval()),
	)
	if err := store.Init(ctx); err != nil {
		return err
	}
	defer store.Dispose()

	backend, err := drafts.OpenFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open drafts: %w", err)
	}
	defer backend.Close()

	s := &session{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		executor:   executor,
		workspace:  workspace.New(caches.New(store, executor), drafts.NewCache(store, backend), logger),
		downloader: download.New(client, cfg.Downloads.Dir, logger),
	}

	if err := fn(ctx, s); err != nil {
		if cfg.Notifications.Console && notifier.errors.Load() > 0 && services.IsUserFacing(err) {
			return &reportedError{err: err}
		}
		return err
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
