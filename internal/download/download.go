package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tscribe/internal/api"
	"tscribe/internal/logging"
	"tscribe/internal/services"
	"tscribe/internal/transport"
)

const lockRetryDelay = 50 * time.Millisecond

var errNotLocked = errors.New("download target is locked")

// Result describes a completed download.
type Result struct {
	Path  string
	Bytes int64
}

// Downloader writes file endpoints into a directory.
type Downloader struct {
	client *transport.Client
	dir    string
	logger *slog.Logger
	tracer trace.Tracer
}

// New returns a downloader writing into dir.
func New(client *transport.Client, dir string, logger *slog.Logger) *Downloader {
	return &Downloader{
		client: client,
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "download"),
		tracer: otel.Tracer("tscribe/internal/download"),
	}
}

// Transcript downloads the transcript text of project id.
func (d *Downloader) Transcript(ctx context.Context, id string) (Result, error) {
	if id == "" {
		return Result{}, services.Wrap(services.ErrValidation, "download", "projects.transcript_download", "project id is required", nil)
	}
	return d.fetch(ctx, api.ProjectTranscriptDownload(id), fmt.Sprintf("transcript-%s.txt", SanitizeFilename(id)))
}

// Audio downloads one audio file of project id.
func (d *Downloader) Audio(ctx context.Context, id, filename string) (Result, error) {
	const op = "projects.audio_download"
	if id == "" {
		return Result{}, services.Wrap(services.ErrValidation, "download", op, "project id is required", nil)
	}
	if !ValidAudioFilename(filename) {
		return Result{}, services.Wrap(services.ErrValidation, "download", op, fmt.Sprintf("invalid audio filename %q", filename), nil)
	}
	return d.fetch(ctx, api.ProjectAudioDownload(id, filename), SanitizeFilename(filename))
}

func (d *Downloader) fetch(ctx context.Context, req api.Request, fallback string) (Result, error) {
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	ctx = services.WithOperation(ctx, req.Operation)
	ctx, span := d.tracer.Start(ctx, req.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.path", req.Path)),
	)
	defer span.End()

	logger := logging.WithContext(ctx, d.logger)
	result, err := d.fetchTo(ctx, req, fallback)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		attrs := []logging.Attr{
			logging.String("path", req.Path),
			logging.String(logging.FieldEventType, "download_failed"),
			logging.Error(err),
		}
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Cause() != nil {
			attrs = append(attrs, logging.String("cause", terr.Cause().Error()))
		}
		// main prints the returned error.
		logger.Info("download failed", logging.Args(attrs...)...)
		return Result{}, err
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("download completed",
		logging.String("path", req.Path),
		logging.String("file", result.Path),
		logging.Int("bytes", int(result.Bytes)),
	)
	return result, nil
}

func (d *Downloader) fetchTo(ctx context.Context, req api.Request, fallback string) (Result, error) {
	resp, err := d.client.Send(ctx, req)
	if err != nil {
		return Result{}, transport.Normalize(req.Operation, err)
	}
	defer resp.Body.Close()
	if err := transport.CheckResponse(req.Operation, resp); err != nil {
		return Result{}, err
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = fallback
	}
	if name == "" {
		return Result{}, services.Wrap(services.ErrValidation, "download", req.Operation, "could not determine a filename", nil)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create download directory: %w", err)
	}
	target := filepath.Join(d.dir, name)

	lock := flock.New(filepath.Join(d.dir, "."+name+".lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err == nil && !locked {
		err = errNotLocked
	}
	if err != nil {
		return Result{}, fmt.Errorf("acquire lock for %s: %w", name, err)
	}
	defer func() { _ = lock.Unlock() }()

	written, err := writeAtomic(target, resp.Body)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: target, Bytes: written}, nil
}

func writeAtomic(target string, src io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	written, err := io.Copy(tmp, src)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("write download: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, fmt.Errorf("sync download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("close download: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return 0, fmt.Errorf("rename download: %w", err)
	}
	return written, nil
}
