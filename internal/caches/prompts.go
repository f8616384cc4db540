package caches

import (
	"context"

	"tscribe/internal/api"
	"tscribe/internal/querycache"
)

// Prompts caches prompt templates.
type Prompts struct {
	store *querycache.Store
	doer  Doer
	list  querycache.Query[[]api.Prompt]

	Save   *querycache.Mutation[api.SavePromptInput, api.SavePromptResult]
	Delete *querycache.Mutation[string, api.Ack]
}

// NewPrompts builds the prompt cache.
func NewPrompts(store *querycache.Store, doer Doer) *Prompts {
	return &Prompts{
		store:  store,
		doer:   doer,
		list:   query[[]api.Prompt](doer, PromptsKey, api.ListPrompts()),
		Save:   mutation[api.SavePromptInput, api.SavePromptResult](store, doer, MutationSavePrompt, "Prompt saved", api.SavePrompt, nil),
		Delete: mutation[string, api.Ack](store, doer, MutationDeletePrompt, "Prompt deleted", api.DeletePrompt, self),
	}
}

// List returns the saved prompts, fetching them when stale.
func (c *Prompts) List(ctx context.Context) ([]api.Prompt, error) {
	return querycache.Fetch(ctx, c.store, c.list)
}

func (c *Prompts) UseList(ctx context.Context) querycache.Entry[[]api.Prompt] {
	return querycache.Use(ctx, c.store, c.list)
}

// Get returns one prompt with its data.
func (c *Prompts) Get(ctx context.Context, id string) (api.PromptDetail, error) {
	return querycache.Fetch(ctx, c.store, c.item(id))
}

func (c *Prompts) UseGet(ctx context.Context, id string) querycache.Entry[api.PromptDetail] {
	return querycache.Use(ctx, c.store, c.item(id))
}

func (c *Prompts) item(id string) querycache.Query[api.PromptDetail] {
	return query[api.PromptDetail](c.doer, PromptKey(id), api.GetPrompt(id))
}
