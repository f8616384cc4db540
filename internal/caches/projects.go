package caches

import (
	"context"

	"tscribe/internal/api"
	"tscribe/internal/querycache"
)

// Projects caches the project list and per-project transcript text.
type Projects struct {
	store *querycache.Store
	doer  Doer
	list  querycache.Query[[]api.Project]

	Delete *querycache.Mutation[string, api.Ack]
}

// NewProjects builds the project cache.
func NewProjects(store *querycache.Store, doer Doer) *Projects {
	return &Projects{
		store:  store,
		doer:   doer,
		list:   query[[]api.Project](doer, ProjectsKey, api.ListProjects()),
		Delete: mutation[string, api.Ack](store, doer, MutationDeleteProject, "Project deleted", api.DeleteProject, self),
	}
}

// List returns the project list, fetching it when stale.
func (c *Projects) List(ctx context.Context) ([]api.Project, error) {
	return querycache.Fetch(ctx, c.store, c.list)
}

// UseList returns the cached project list without blocking.
func (c *Projects) UseList(ctx context.Context) querycache.Entry[[]api.Project] {
	return querycache.Use(ctx, c.store, c.list)
}

// Transcript returns the transcript text of project id.
func (c *Projects) Transcript(ctx context.Context, id string) (api.ProjectTranscript, error) {
	return querycache.Fetch(ctx, c.store, c.transcript(id))
}

func (c *Projects) UseTranscript(ctx context.Context, id string) querycache.Entry[api.ProjectTranscript] {
	return querycache.Use(ctx, c.store, c.transcript(id))
}

func (c *Projects) transcript(id string) querycache.Query[api.ProjectTranscript] {
	return query[api.ProjectTranscript](c.doer, ProjectTranscriptKey(id), api.GetProjectTranscript(id))
}
