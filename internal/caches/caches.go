package caches

import (
	"context"

	"tscribe/internal/api"
	"tscribe/internal/querycache"
)

// Doer executes a backend request and decodes its payload into out.
type Doer interface {
	Do(ctx context.Context, req api.Request, out any) error
}

// Caches bundles the four entity caches over one store.
type Caches struct {
	Transcripts *Transcripts
	Prompts     *Prompts
	Projects    *Projects
	Settings    *Settings
}

// New builds the four domain caches over one store and executor.
func New(store *querycache.Store, doer Doer) *Caches {
	return &Caches{
		Transcripts: NewTranscripts(store, doer),
		Prompts:     NewPrompts(store, doer),
		Projects:    NewProjects(store, doer),
		Settings:    NewSettings(store, doer),
	}
}

func query[T any](doer Doer, key querycache.Key, req api.Request) querycache.Query[T] {
	return querycache.Query[T]{
		Key: key,
		Fetch: func(ctx context.Context) (T, error) {
			var out T
			err := doer.Do(ctx, req, &out)
			return out, err
		},
		Policy: querycache.ServerData,
	}
}

func run[In, Out any](doer Doer, build func(In) api.Request) func(context.Context, In) (Out, error) {
	return func(ctx context.Context, in In) (Out, error) {
		var out Out
		err := doer.Do(ctx, build(in), &out)
		return out, err
	}
}

func mutation[In, Out any](store *querycache.Store, doer Doer, name, message string, build func(In) api.Request, id func(In) string) *querycache.Mutation[In, Out] {
	return &querycache.Mutation[In, Out]{
		Name:           name,
		Store:          store,
		Run:            run[In, Out](doer, build),
		Invalidates:    invalidates[In, Out](name, id),
		SuccessMessage: message,
	}
}

func self(id string) string { return id }
