package workspace

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"tscribe/internal/api"
	"tscribe/internal/caches"
	"tscribe/internal/drafts"
	"tscribe/internal/logging"
	"tscribe/internal/provider"
)

// Workspace holds the interactive state of one user session.
type Workspace struct {
	caches *caches.Caches
	drafts *drafts.Cache
	logger *slog.Logger

	mu       sync.Mutex
	selected string
	dialogs  map[Dialog]bool
}

// New composes a workspace over the domain caches and the drafts cache.
func New(c *caches.Caches, d *drafts.Cache, logger *slog.Logger) *Workspace {
	return &Workspace{
		caches:  c,
		drafts:  d,
		logger:  logging.NewComponentLogger(logger, "workspace"),
		dialogs: map[Dialog]bool{},
	}
}

// Caches exposes the underlying entity caches.
func (w *Workspace) Caches() *caches.Caches {
	return w.caches
}

// settle applies the dialog outcome of a write: success closes dialog, a
// failure leaves it as is.
func (w *Workspace) settle(ctx context.Context, dialog Dialog, err error) {
	if err == nil {
		w.Close(dialog)
		return
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		logging.WithContext(ctx, w.logger).Debug("input rejected",
			logging.String("dialog", dialog.String()),
			logging.String("field", fieldErr.Field),
		)
	}
}

// ProcessTranscript submits a video for processing with the default model.
func (w *Workspace) ProcessTranscript(ctx context.Context, in api.ProcessInput) (api.ProcessResult, error) {
	result, err := w.processTranscript(ctx, in)
	w.settle(ctx, DialogProcess, err)
	return result, err
}

func (w *Workspace) processTranscript(ctx context.Context, in api.ProcessInput) (api.ProcessResult, error) {
	if err := validateProcess(in); err != nil {
		return api.ProcessResult{}, err
	}
	return w.caches.Transcripts.Process.Do(ctx, in)
}

// ProcessTranscriptWithModel submits a video for processing with in.Model.
func (w *Workspace) ProcessTranscriptWithModel(ctx context.Context, in api.ProcessInput) (api.ProcessResult, error) {
	result, err := w.processTranscriptWithModel(ctx, in)
	w.settle(ctx, DialogProcess, err)
	return result, err
}

func (w *Workspace) processTranscriptWithModel(ctx context.Context, in api.ProcessInput) (api.ProcessResult, error) {
	if err := validateProcess(in); err != nil {
		return api.ProcessResult{}, err
	}
	if strings.TrimSpace(in.Model) == "" {
		return api.ProcessResult{}, invalid(FieldModel, "a model is required")
	}
	return w.caches.Transcripts.ProcessWithModel.Do(ctx, in)
}

// GenerateAudio voices an existing transcript.
func (w *Workspace) GenerateAudio(ctx context.Context, transcriptID string) (api.AudioResult, error) {
	if strings.TrimSpace(transcriptID) == "" {
		return api.AudioResult{}, invalid("transcriptId", "a transcript id is required")
	}
	return w.caches.Transcripts.GenerateAudio.Do(ctx, transcriptID)
}

// SavePrompt stores a named prompt. An empty name is rejected locally.
func (w *Workspace) SavePrompt(ctx context.Context, in api.SavePromptInput) (api.SavePromptResult, error) {
	result, err := w.savePrompt(ctx, in)
	w.settle(ctx, DialogSavePrompt, err)
	return result, err
}

func (w *Workspace) savePrompt(ctx context.Context, in api.SavePromptInput) (api.SavePromptResult, error) {
	in.PromptName = strings.TrimSpace(in.PromptName)
	if in.PromptName == "" {
		return api.SavePromptResult{}, invalid(FieldPromptName, "a prompt name is required")
	}
	return w.caches.Prompts.Save.Do(ctx, in)
}

// DeletePrompt removes a saved prompt.
func (w *Workspace) DeletePrompt(ctx context.Context, id string) (api.Ack, error) {
	var (
		ack api.Ack
		err error
	)
	if strings.TrimSpace(id) == "" {
		err = invalid("id", "a prompt id is required")
	} else {
		ack, err = w.caches.Prompts.Delete.Do(ctx, id)
	}
	w.settle(ctx, DialogDeletePrompt, err)
	return ack, err
}

// DeleteProject removes a project and clears the detail view when it showed
// that project.
func (w *Workspace) DeleteProject(ctx context.Context, id string) (api.Ack, error) {
	var (
		ack api.Ack
		err error
	)
	if strings.TrimSpace(id) == "" {
		err = invalid("id", "a project id is required")
	} else {
		ack, err = w.caches.Projects.Delete.Do(ctx, id)
	}
	if err == nil {
		w.clearSelectionIf(id)
	}
	w.settle(ctx, DialogDeleteProject, err)
	return ack, err
}

// SaveAPIKey stores key for p. Empty keys never reach the backend.
func (w *Workspace) SaveAPIKey(ctx context.Context, p provider.Provider, key string) (api.Ack, error) {
	var (
		ack api.Ack
		err error
	)
	key = strings.TrimSpace(key)
	switch {
	case !p.Valid():
		err = invalid(FieldProvider, "unknown provider")
	case key == "":
		err = invalid(FieldKey, "an API key is required")
	default:
		ack, err = w.caches.Settings.SaveAPIKey.Do(ctx, api.SaveAPIKeyInput{Provider: p, Key: key})
	}
	w.settle(ctx, DialogAPIKey, err)
	return ack, err
}

// DeleteAPIKey removes the key for p.
func (w *Workspace) DeleteAPIKey(ctx context.Context, p provider.Provider) (api.Ack, error) {
	if !p.Valid() {
		return api.Ack{}, invalid(FieldProvider, "unknown provider")
	}
	return w.caches.Settings.DeleteAPIKey.Do(ctx, p)
}

// SaveDefaultModel replaces the backend default model.
func (w *Workspace) SaveDefaultModel(ctx context.Context, model string) (api.Ack, error) {
	var (
		ack api.Ack
		err error
	)
	model = strings.TrimSpace(model)
	if model == "" {
		err = invalid(FieldModel, "a model is required")
	} else {
		ack, err = w.caches.Settings.SaveDefaultModel.Do(ctx, model)
	}
	w.settle(ctx, DialogDefaultModel, err)
	return ack, err
}

func validateProcess(in api.ProcessInput) error {
	if strings.TrimSpace(in.URL) == "" {
		return invalid(FieldURL, "a video URL is required")
	}
	if _, ok := VideoID(in.URL); !ok {
		return invalid(FieldURL, "URL does not contain an 11-character video id")
	}
	if in.Duration < 0 {
		return invalid(FieldDuration, "duration cannot be negative")
	}
	return nil
}
