package querycache

import "time"

// Forever disables garbage collection for an entry.
const Forever time.Duration = -1

// Policy controls freshness and lifetime of the entries a query owns.
type Policy struct {
	// StaleTime is how long a Ready entry stays fresh. Zero keeps it fresh
	// until invalidated.
	StaleTime time.Duration
	// GCTime is how long an unobserved entry survives after its last use.
	// Zero uses the store default; Forever keeps it for the store's lifetime.
	GCTime time.Duration
	// RefetchOnInvalidate refetches immediately on invalidation when the
	// entry has subscribers.
	RefetchOnInvalidate bool
}

// ServerData is the policy for backend collections: fetched on first read,
// refetched after invalidation, collected after the store default.
var ServerData = Policy{RefetchOnInvalidate: true}

// ClientState is the policy for client-only persisted form state.
var ClientState = Policy{StaleTime: 24 * time.Hour, GCTime: Forever}

func (p Policy) expired(fetchedAt, now time.Time) bool {
	return p.StaleTime > 0 && now.Sub(fetchedAt) > p.StaleTime
}
