package drafts

import (
	"context"

	"tscribe/internal/querycache"
)

// Key is the cache key of one form's draft.
func Key(form Form) querycache.Key {
	return querycache.NewKey("drafts", string(form))
}

// Cache serves drafts through the query cache, loading from and writing
// through to a Backend.
type Cache struct {
	store   *querycache.Store
	backend Backend
}

// NewCache layers backend under the drafts key family of store.
func NewCache(store *querycache.Store, backend Backend) *Cache {
	if backend == nil {
		backend = NewMemory()
	}
	return &Cache{store: store, backend: backend}
}

func (c *Cache) query(form Form) querycache.Query[Draft] {
	return querycache.Query[Draft]{
		Key: Key(form),
		Fetch: func(ctx context.Context) (Draft, error) {
			return c.backend.Get(ctx, form)
		},
		Policy: querycache.ClientState,
	}
}

// Get returns the current draft for form.
func (c *Cache) Get(ctx context.Context, form Form) (Draft, error) {
	d, err := querycache.Fetch(ctx, c.store, c.query(form))
	if err != nil {
		return Draft{}, err
	}
	return d.Clone(), nil
}

// Put persists draft and replaces the cached copy.
func (c *Cache) Put(ctx context.Context, draft Draft) error {
	if err := c.backend.Save(ctx, draft); err != nil {
		return err
	}
	querycache.Set(c.store, Key(draft.Form), querycache.ClientState, draft.Clone())
	return nil
}

// Clear removes the draft for form.
func (c *Cache) Clear(ctx context.Context, form Form) error {
	if err := c.backend.Delete(ctx, form); err != nil {
		return err
	}
	querycache.Set(c.store, Key(form), querycache.ClientState, Draft{Form: form, Fields: map[string]string{}})
	return nil
}

// List returns every persisted draft.
func (c *Cache) List(ctx context.Context) ([]Draft, error) {
	return c.backend.List(ctx)
}
