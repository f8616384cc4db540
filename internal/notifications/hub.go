package notifications

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"tscribe/internal/config"
	"tscribe/internal/logging"
)

const defaultBackgroundTimeout = 10 * time.Second

// Sink delivers a notification to one destination.
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

type backgroundSink struct {
	sink    Sink
	timeout time.Duration
}

func (b *backgroundSink) Deliver(ctx context.Context, n Notification) error {
	return b.sink.Deliver(ctx, n)
}

// Background marks sink for delivery off the notifying goroutine, each
// delivery bounded by timeout.
func Background(sink Sink, timeout time.Duration) Sink {
	if sink == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultBackgroundTimeout
	}
	return &backgroundSink{sink: sink, timeout: timeout}
}

// Hub fans notifications out to sinks.
type Hub struct {
	sinks   []Sink
	logger  *slog.Logger
	pending sync.WaitGroup
}

// NewHub builds a hub over the provided sinks. Nil sinks are skipped.
func NewHub(logger *slog.Logger, sinks ...Sink) *Hub {
	hub := &Hub{logger: logging.NewComponentLogger(logger, "notifications")}
	for _, sink := range sinks {
		if sink != nil {
			hub.sinks = append(hub.sinks, sink)
		}
	}
	return hub
}

// NewFromConfig wires the console sink (writing to out) and, when a topic is
// configured, the ntfy sink in the background.
func NewFromConfig(cfg *config.Config, out io.Writer, logger *slog.Logger) *Hub {
	if cfg == nil {
		return NewHub(logger, NewConsoleSink(out))
	}
	var sinks []Sink
	if cfg.Notifications.Console {
		sinks = append(sinks, NewConsoleSink(out))
	}
	if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
		timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
		sinks = append(sinks, Background(NewNtfySink(topic, &http.Client{}), timeout))
	}
	return NewHub(logger, sinks...)
}

// Notify delivers n to every sink. Background sinks run on their own
// goroutine with a context detached from ctx's cancellation.
func (h *Hub) Notify(ctx context.Context, n Notification) {
	if h == nil {
		return
	}
	for _, sink := range h.sinks {
		bg, ok := sink.(*backgroundSink)
		if !ok {
			h.report(n, sink.Deliver(ctx, n))
			continue
		}
		h.pending.Add(1)
		go func() {
			defer h.pending.Done()
			deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bg.timeout)
			defer cancel()
			h.report(n, bg.sink.Deliver(deliverCtx, n))
		}()
	}
}

// Wait blocks until background deliveries finish or ctx is done.
func (h *Hub) Wait(ctx context.Context) error {
	if h == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		h.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) report(n Notification, err error) {
	if err == nil {
		return
	}
	h.logger.Warn("notification delivery failed",
		logging.String(logging.FieldEventType, "notification_failed"),
		logging.String("kind", n.Kind.String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications settings in config.toml"),
	)
}
