package querycache

import (
	"fmt"
	"strings"
)

// Key identifies a cached collection (domain), a resource (domain, id), or a
// nested resource (domain, id, sub). Keys compare with ==.
type Key struct {
	Domain string
	ID     string
	Sub    string
}

// NewKey builds a key from one to three parts. It panics on any other count.
func NewKey(parts ...string) Key {
	switch len(parts) {
	case 1:
		return Key{Domain: parts[0]}
	case 2:
		return Key{Domain: parts[0], ID: parts[1]}
	case 3:
		return Key{Domain: parts[0], ID: parts[1], Sub: parts[2]}
	default:
		panic(fmt.Sprintf("querycache: NewKey takes 1-3 parts, got %d", len(parts)))
	}
}

func (k Key) String() string {
	parts := []string{k.Domain}
	if k.ID != "" || k.Sub != "" {
		parts = append(parts, k.ID)
	}
	if k.Sub != "" {
		parts = append(parts, k.Sub)
	}
	return strings.Join(parts, "/")
}

func (k Key) flight(gen uint64) string {
	return fmt.Sprintf("%q|%q|%q#%d", k.Domain, k.ID, k.Sub, gen)
}
