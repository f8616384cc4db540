// Package provider enumerates the LLM providers the backend can hold API keys for.
package provider

import (
	"fmt"
	"strings"

	"tscribe/internal/services"
)

// Provider identifies an LLM vendor. The zero value is not a valid provider.
type Provider int

const (
	OpenAI Provider = iota + 1
	Gemini
	Anthropic
	DeepSeek
	Qwen
)

type info struct {
	id    string
	label string
	env   string
}

var table = map[Provider]info{
	OpenAI:    {id: "openai", label: "OpenAI", env: "OPENAI_API_KEY"},
	Gemini:    {id: "gemini", label: "Google Gemini", env: "GEMINI_API_KEY"},
	Anthropic: {id: "anthropic", label: "Anthropic", env: "ANTHROPIC_API_KEY"},
	DeepSeek:  {id: "deepseek", label: "DeepSeek", env: "DEEPSEEK_API_KEY"},
	Qwen:      {id: "qwen", label: "Qwen", env: "QWEN_API_KEY"},
}

// All returns every known provider in declaration order.
func All() []Provider {
	return []Provider{OpenAI, Gemini, Anthropic, DeepSeek, Qwen}
}

// Parse resolves a wire identifier ("gemini") into a Provider.
func Parse(value string) (Provider, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	for _, p := range All() {
		if table[p].id == needle {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown provider %q", services.ErrValidation, value)
}

// Valid reports whether p is one of the enumerated providers.
func (p Provider) Valid() bool {
	_, ok := table[p]
	return ok
}

// String returns the wire identifier used by the backend.
func (p Provider) String() string {
	if meta, ok := table[p]; ok {
		return meta.id
	}
	return fmt.Sprintf("provider(%d)", int(p))
}

// Label returns the human readable provider name.
func (p Provider) Label() string {
	return table[p].label
}

// EnvVar returns the environment variable the backend reads the key from.
func (p Provider) EnvVar() string {
	return table[p].env
}

func (p Provider) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: invalid provider %d", services.ErrValidation, int(p))
	}
	return []byte(table[p].id), nil
}

func (p *Provider) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
