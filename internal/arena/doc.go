// Package arena provides the insertion-ordered object pool behind a multikey store.
//
// Values live in a dense slot slice addressed by the caller's identifier.
// Occupied slots are tracked in a roaring bitmap; removed slots become
// tombstones that are reclaimed by compaction once they outnumber the live
// entries.
//
// # Ordering
//
// Iteration visits live values in insertion order. Compaction preserves that
// order because it only squeezes tombstones out of the slice.
//
// # Safety
//
// An Arena is not safe for concurrent use. Removing entries while ranging
// over All is allowed; compaction is deferred until the range completes.
package arena
