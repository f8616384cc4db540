// Package querycache is the client-side cache store for server-derived and
// client-only state.
//
// A Store holds exactly one entry per Key. Reads go through Use (non-blocking,
// starts a fetch when the entry is absent or stale) or Fetch (blocks until the
// entry settles). Concurrent reads of a loading key share one in-flight fetch:
// flights are coalesced with singleflight keyed by key and fetch generation,
// and a fetch whose generation was superseded is discarded so the most
// recently initiated fetch always determines the stored value.
//
// Writes go through Mutation: on success the declared keys are invalidated
// under the store lock before the mutation resolves, then one Success
// notification is emitted. A failed mutation invalidates nothing.
//
// Fetches run on a context owned by the store. A caller cancelling its context
// only stops waiting; Dispose cancels everything.
//
// Observers register with Subscribe and are called (outside the store lock)
// on every transition of their key. They pull the current entry with Peek.
package querycache
