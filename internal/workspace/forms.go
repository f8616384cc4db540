package workspace

import (
	"context"
	"strconv"
	"strings"

	"tscribe/internal/api"
	"tscribe/internal/drafts"
	"tscribe/internal/provider"
)

// Draft field names.
const (
	FieldURL                    = "url"
	FieldTitle                  = "title"
	FieldDuration               = "duration"
	FieldModel                  = "model"
	FieldPromptName             = "promptName"
	FieldProvider               = "provider"
	FieldKey                    = "key"
	FieldYourRole               = "yourRole"
	FieldScriptStructure        = "scriptStructure"
	FieldToneAndStyle           = "toneAndStyle"
	FieldRetentionAndFlow       = "retentionAndFlow"
	FieldAdditionalInstructions = "additionalInstructions"
)

// Draft returns the current draft of form.
func (w *Workspace) Draft(ctx context.Context, form drafts.Form) (drafts.Draft, error) {
	return w.drafts.Get(ctx, form)
}

// SetField updates one field of a form draft.
func (w *Workspace) SetField(ctx context.Context, form drafts.Form, field, value string) error {
	current, err := w.drafts.Get(ctx, form)
	if err != nil {
		return err
	}
	current.Form = form
	return w.drafts.Put(ctx, current.With(field, value))
}

// ClearDraft discards the draft for form.
func (w *Workspace) ClearDraft(ctx context.Context, form drafts.Form) error {
	return w.drafts.Clear(ctx, form)
}

// SubmitProcess processes the video described by the process draft. A model
// in the draft selects the model-specific endpoint. The draft is cleared on
// success.
func (w *Workspace) SubmitProcess(ctx context.Context) (api.ProcessResult, error) {
	draft, err := w.drafts.Get(ctx, drafts.FormProcess)
	if err != nil {
		return api.ProcessResult{}, err
	}
	in, err := processInput(draft)
	if err != nil {
		w.settle(ctx, DialogProcess, err)
		return api.ProcessResult{}, err
	}
	var result api.ProcessResult
	if in.Model != "" {
		result, err = w.ProcessTranscriptWithModel(ctx, in)
	} else {
		result, err = w.ProcessTranscript(ctx, in)
	}
	if err != nil {
		return result, err
	}
	return result, w.drafts.Clear(ctx, drafts.FormProcess)
}

// SubmitPrompt saves the prompt draft as a template. The draft is kept so
// variants can be saved under new names.
func (w *Workspace) SubmitPrompt(ctx context.Context) (api.SavePromptResult, error) {
	draft, err := w.drafts.Get(ctx, drafts.FormPrompt)
	if err != nil {
		return api.SavePromptResult{}, err
	}
	return w.SavePrompt(ctx, api.SavePromptInput{
		PromptName: draft.Get(FieldPromptName),
		PromptData: promptData(draft),
	})
}

// SubmitAPIKey saves the key entered in the API key draft and clears it on
// success.
func (w *Workspace) SubmitAPIKey(ctx context.Context) (api.Ack, error) {
	draft, err := w.drafts.Get(ctx, drafts.FormAPIKey)
	if err != nil {
		return api.Ack{}, err
	}
	p, err := provider.Parse(draft.Get(FieldProvider))
	if err != nil {
		err = invalid(FieldProvider, "unknown provider")
		w.settle(ctx, DialogAPIKey, err)
		return api.Ack{}, err
	}
	ack, err := w.SaveAPIKey(ctx, p, draft.Get(FieldKey))
	if err != nil {
		return ack, err
	}
	return ack, w.drafts.Clear(ctx, drafts.FormAPIKey)
}

// SubmitDefaultModel saves the model held in the default model draft.
func (w *Workspace) SubmitDefaultModel(ctx context.Context) (api.Ack, error) {
	draft, err := w.drafts.Get(ctx, drafts.FormDefaultModel)
	if err != nil {
		return api.Ack{}, err
	}
	ack, err := w.SaveDefaultModel(ctx, draft.Get(FieldModel))
	if err != nil {
		return ack, err
	}
	return ack, w.drafts.Clear(ctx, drafts.FormDefaultModel)
}

func processInput(d drafts.Draft) (api.ProcessInput, error) {
	in := api.ProcessInput{
		URL:        strings.TrimSpace(d.Get(FieldURL)),
		Title:      strings.TrimSpace(d.Get(FieldTitle)),
		PromptData: promptData(d),
		Model:      strings.TrimSpace(d.Get(FieldModel)),
	}
	if raw := strings.TrimSpace(d.Get(FieldDuration)); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			return api.ProcessInput{}, invalid(FieldDuration, "duration must be a whole number of minutes")
		}
		in.Duration = minutes
	}
	return in, nil
}

func promptData(d drafts.Draft) api.PromptData {
	return api.PromptData{
		YourRole:               d.Get(FieldYourRole),
		ScriptStructure:        d.Get(FieldScriptStructure),
		ToneAndStyle:           d.Get(FieldToneAndStyle),
		RetentionAndFlow:       d.Get(FieldRetentionAndFlow),
		AdditionalInstructions: d.Get(FieldAdditionalInstructions),
	}
}

// Drafts returns every persisted draft.
func (w *Workspace) Drafts(ctx context.Context) ([]drafts.Draft, error) {
	return w.drafts.List(ctx)
}
