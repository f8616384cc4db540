package drafts

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"
	"time"
)

// Form names one form whose input can be drafted.
type Form string

const (
	FormProcess      Form = "process"
	FormPrompt       Form = "prompt"
	FormAPIKey       Form = "apikey"
	FormDefaultModel Form = "defaultmodel"
)

// ErrInvalidForm is returned for an empty form name.
var ErrInvalidForm = errors.New("draft form name is required")

// Draft is the raw field values of one form.
type Draft struct {
	Form      Form              `json:"form"`
	Fields    map[string]string `json:"fields"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Get returns a field value, empty when unset.
func (d Draft) Get(field string) string {
	return d.Fields[field]
}

// With returns a copy of d with field set to value.
func (d Draft) With(field, value string) Draft {
	next := d.Clone()
	if next.Fields == nil {
		next.Fields = map[string]string{}
	}
	next.Fields[field] = value
	return next
}

// Clone returns a copy that shares no field map with d.
func (d Draft) Clone() Draft {
	d.Fields = maps.Clone(d.Fields)
	return d
}

// Empty reports whether no field holds a value.
func (d Draft) Empty() bool {
	for _, v := range d.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// Backend stores drafts.
type Backend interface {
	Get(ctx context.Context, form Form) (Draft, error)
	Save(ctx context.Context, draft Draft) error
	Delete(ctx context.Context, form Form) error
	List(ctx context.Context) ([]Draft, error)
	Close() error
}

// Memory is an in-process Backend.
type Memory struct {
	mu     sync.Mutex
	drafts map[Form]Draft
	now    func() time.Time
}

// NewMemory returns a process-local backend.
func NewMemory() *Memory {
	return &Memory{drafts: map[Form]Draft{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, form Form) (Draft, error) {
	if form == "" {
		return Draft{}, ErrInvalidForm
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.drafts[form]; ok {
		return d.Clone(), nil
	}
	return Draft{Form: form, Fields: map[string]string{}}, nil
}

func (m *Memory) Save(_ context.Context, draft Draft) error {
	if draft.Form == "" {
		return ErrInvalidForm
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	draft = draft.Clone()
	draft.UpdatedAt = m.now().UTC()
	m.drafts[draft.Form] = draft
	return nil
}

func (m *Memory) Delete(_ context.Context, form Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, form)
	return nil
}

func (m *Memory) List(context.Context) ([]Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Form < out[j].Form })
	return out, nil
}

func (m *Memory) Close() error { return nil }
