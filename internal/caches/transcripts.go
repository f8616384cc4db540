package caches

import (
	"context"

	"tscribe/internal/api"
	"tscribe/internal/querycache"
)

// Transcripts caches the processed transcript list and owns processing and
// audio generation.
type Transcripts struct {
	store *querycache.Store
	list  querycache.Query[[]api.Transcript]

	Process          *querycache.Mutation[api.ProcessInput, api.ProcessResult]
	ProcessWithModel *querycache.Mutation[api.ProcessInput, api.ProcessResult]
	GenerateAudio    *querycache.Mutation[string, api.AudioResult]
}

// NewTranscripts builds the transcript cache and its processing mutations.
func NewTranscripts(store *querycache.Store, doer Doer) *Transcripts {
	return &Transcripts{
		store:            store,
		list:             query[[]api.Transcript](doer, TranscriptsKey, api.ListTranscripts()),
		Process:          mutation[api.ProcessInput, api.ProcessResult](store, doer, MutationProcess, "Transcript processing started", api.ProcessTranscript, nil),
		ProcessWithModel: mutation[api.ProcessInput, api.ProcessResult](store, doer, MutationProcessWithModel, "Transcript processing started", api.ProcessTranscriptWithModel, nil),
		GenerateAudio:    mutation[string, api.AudioResult](store, doer, MutationGenerateAudio, "Audio generation requested", api.GenerateAudio, self),
	}
}

// List returns the transcript list, fetching it when stale.
func (c *Transcripts) List(ctx context.Context) ([]api.Transcript, error) {
	return querycache.Fetch(ctx, c.store, c.list)
}

// UseList returns the cached transcript list without blocking.
func (c *Transcripts) UseList(ctx context.Context) querycache.Entry[[]api.Transcript] {
	return querycache.Use(ctx, c.store, c.list)
}
