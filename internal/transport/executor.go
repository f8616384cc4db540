package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tscribe/internal/api"
	"tscribe/internal/logging"
	"tscribe/internal/notifications"
	"tscribe/internal/services"
)

const maxBodyBytes = 4 << 20

// Call performs exactly one transport call.
type Call func(ctx context.Context) (*http.Response, error)

// Executor runs backend calls with uniform error semantics.
type Executor struct {
	client   *Client
	notifier notifications.Notifier
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewExecutor wires an executor. A nil notifier discards notifications.
func NewExecutor(client *Client, notifier notifications.Notifier, logger *slog.Logger) *Executor {
	if notifier == nil {
		notifier = notifications.Nop{}
	}
	return &Executor{
		client:   client,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "executor"),
		tracer:   otel.Tracer("tscribe/internal/transport"),
	}
}

// Do sends req through the client and decodes the payload into out.
// Download requests are rejected; they bypass the executor.
func (e *Executor) Do(ctx context.Context, req api.Request, out any) error {
	if req.Download {
		return services.Wrap(services.ErrValidation, "executor", req.Operation, "download endpoints are fetched out-of-band", nil)
	}
	return e.Execute(ctx, req, func(ctx context.Context) (*http.Response, error) {
		return e.client.Send(ctx, req)
	}, out)
}

// Execute runs call, decoding a 2xx JSON body into out. On failure it returns
// *Error after emitting one Error notification.
func (e *Executor) Execute(ctx context.Context, req api.Request, call Call, out any) error {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	ctx = services.WithOperation(ctx, req.Operation)

	spanName := req.Operation
	if spanName == "" {
		spanName = req.Method + " " + req.Path
	}
	ctx, span := e.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	started := time.Now()
	status, err := e.run(ctx, req, call, out)
	elapsed := time.Since(started)
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}

	logger := logging.WithContext(ctx, e.logger)
	attrs := []logging.Attr{
		logging.String("method", req.Method),
		logging.String("path", req.Path),
		logging.Int("status", status),
		logging.Duration("duration", elapsed),
	}

	if err == nil {
		span.SetStatus(codes.Ok, "")
		logger.Info("request completed", logging.Args(append(attrs, logging.String("outcome", "success"))...)...)
		return nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errors.Is(err, context.Canceled) {
		// The caller stopped waiting; nothing to tell the user.
		logger.Debug("request canceled", logging.Args(append(attrs, logging.String("outcome", "canceled"), logging.Error(err))...)...)
		return err
	}

	// Failures reach the user as an Error notification. Log at info.
	attrs = append(attrs,
		logging.String("outcome", "failure"),
		logging.String(logging.FieldEventType, "request_failed"),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check api.base_url and that the backend is running"),
	)
	var terr *Error
	if errors.As(err, &terr) && terr.cause != nil {
		attrs = append(attrs, logging.String("cause", terr.cause.Error()))
	}
	logger.Info("request failed", logging.Args(attrs...)...)
	e.notifier.Notify(ctx, notifications.Notification{Kind: notifications.Error, Text: err.Error()})
	return err
}

func (e *Executor) run(ctx context.Context, req api.Request, call Call, out any) (int, error) {
	resp, err := call(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return 0, fmt.Errorf("%s: %w", req.Operation, err)
		}
		normalized := Normalize(req.Operation, err)
		return normalized.HTTPStatus, normalized
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, statusError(req.Operation, resp.StatusCode, body)
	}
	if readErr != nil {
		return resp.StatusCode, networkError(req.Operation, readErr)
	}
	if out == nil || len(strings.TrimSpace(string(body))) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, decodeError(req.Operation, resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}
