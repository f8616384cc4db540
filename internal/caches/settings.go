package caches

import (
	"context"

	"tscribe/internal/api"
	"tscribe/internal/provider"
	"tscribe/internal/querycache"
)

// Settings caches the config domain: API key status, available models, and
// the default model.
type Settings struct {
	store        *querycache.Store
	apiKeys      querycache.Query[api.APIKeyStatus]
	models       querycache.Query[[]api.ModelOption]
	defaultModel querycache.Query[api.DefaultModel]

	SaveAPIKey       *querycache.Mutation[api.SaveAPIKeyInput, api.Ack]
	DeleteAPIKey     *querycache.Mutation[provider.Provider, api.Ack]
	SaveDefaultModel *querycache.Mutation[string, api.Ack]
}

// NewSettings builds the API key and model cache.
func NewSettings(store *querycache.Store, doer Doer) *Settings {
	return &Settings{
		store:            store,
		apiKeys:          query[api.APIKeyStatus](doer, APIKeysKey, api.ListAPIKeys()),
		models:           query[[]api.ModelOption](doer, AvailableModelsKey, api.ListModels()),
		defaultModel:     query[api.DefaultModel](doer, DefaultModelKey, api.GetDefaultModel()),
		SaveAPIKey:       mutation[api.SaveAPIKeyInput, api.Ack](store, doer, MutationSaveAPIKey, "API key saved", api.SaveAPIKey, nil),
		DeleteAPIKey:     mutation[provider.Provider, api.Ack](store, doer, MutationDeleteAPIKey, "API key deleted", api.DeleteAPIKey, nil),
		SaveDefaultModel: mutation[string, api.Ack](store, doer, MutationSaveDefaultModel, "Default model saved", api.SaveDefaultModel, nil),
	}
}

// APIKeys returns which providers have a key configured.
func (c *Settings) APIKeys(ctx context.Context) (api.APIKeyStatus, error) {
	return querycache.Fetch(ctx, c.store, c.apiKeys)
}

// UseAPIKeys returns the cached key status without blocking.
func (c *Settings) UseAPIKeys(ctx context.Context) querycache.Entry[api.APIKeyStatus] {
	return querycache.Use(ctx, c.store, c.apiKeys)
}

// Models returns the model catalogue.
func (c *Settings) Models(ctx context.Context) ([]api.ModelOption, error) {
	return querycache.Fetch(ctx, c.store, c.models)
}

func (c *Settings) UseModels(ctx context.Context) querycache.Entry[[]api.ModelOption] {
	return querycache.Use(ctx, c.store, c.models)
}

// DefaultModel returns the backend default model.
func (c *Settings) DefaultModel(ctx context.Context) (api.DefaultModel, error) {
	return querycache.Fetch(ctx, c.store, c.defaultModel)
}

func (c *Settings) UseDefaultModel(ctx context.Context) querycache.Entry[api.DefaultModel] {
	return querycache.Use(ctx, c.store, c.defaultModel)
}
