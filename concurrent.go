package multikey

import (
	"io"
	"iter"
	"sync"
)

// Concurrent guards a Store with a single read-write lock.
//
// Lookups share the read lock; Add, Set, SetKey, Pop and Clear take the write
// lock, so each of them is atomic with respect to every other caller.
type Concurrent[K comparable, V any] struct {
	mu    sync.RWMutex
	store *Store[K, V]
}

// NewConcurrent creates a Store and wraps it.
func NewConcurrent[K comparable, V any](keySpaces []string, opts ...Option) (*Concurrent[K, V], error) {
	s, err := New[K, V](keySpaces, opts...)
	if err != nil {
		return nil, err
	}
	return Synchronized(s), nil
}

// Synchronized wraps an existing store. The caller must stop using s directly.
func Synchronized[K comparable, V any](s *Store[K, V]) *Concurrent[K, V] {
	return &Concurrent[K, V]{store: s}
}

// Read runs fn with shared access to the store. fn must not mutate the
// store, nor range over All or Values, which track iteration state.
func (c *Concurrent[K, V]) Read(fn func(s *Store[K, V]) error) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fn(c.store)
}

// Update runs fn with exclusive access to the store, for multi-step changes
// that must appear atomic to other callers.
func (c *Concurrent[K, V]) Update(fn func(s *Store[K, V]) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.store)
}

// KeySpaces is Store.KeySpaces. The names never change, so no lock is taken.
func (c *Concurrent[K, V]) KeySpaces() []string {
	return c.store.KeySpaces()
}

// HasKeySpace is Store.HasKeySpace without locking.
func (c *Concurrent[K, V]) HasKeySpace(name string) bool {
	return c.store.HasKeySpace(name)
}

// Len is Store.Len under the read lock.
func (c *Concurrent[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}

// String implements fmt.Stringer.
func (c *Concurrent[K, V]) String() string {
	return c.store.String()
}

// Add is Store.Add under the write lock.
func (c *Concurrent[K, V]) Add(keys map[string]K, v V) (ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Add(keys, v)
}

// Lookup is Store.Lookup under the read lock.
func (c *Concurrent[K, V]) Lookup(space string, key K) (V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Lookup(space, key)
}

// Get is Store.Get under the read lock.
func (c *Concurrent[K, V]) Get(space string, key K, def V) (V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Get(space, key, def)
}

// GetID is Store.GetID under the read lock.
func (c *Concurrent[K, V]) GetID(space string, key K) (ID, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetID(space, key)
}

// HasKey is Store.HasKey under the read lock.
func (c *Concurrent[K, V]) HasKey(space string, key K) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.HasKey(space, key)
}

// GetDict is Store.GetDict under the read lock.
func (c *Concurrent[K, V]) GetDict(space string) (map[K]V, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetDict(space)
}

// Keys is Store.Keys under the read lock.
func (c *Concurrent[K, V]) Keys(space string) ([]K, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Keys(space)
}

// KeysOf is Store.KeysOf under the read lock.
func (c *Concurrent[K, V]) KeysOf(id ID) (map[string]K, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.KeysOf(id)
}

// Set is Store.Set under the write lock.
func (c *Concurrent[K, V]) Set(space string, key K, v V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Set(space, key, v)
}

// SetKey is Store.SetKey under the write lock.
func (c *Concurrent[K, V]) SetKey(id ID, space string, key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.SetKey(id, space, key)
}

// Pop is Store.Pop under the write lock.
func (c *Concurrent[K, V]) Pop(space string, key K) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Pop(space, key)
}

// Clear is Store.Clear under the write lock.
func (c *Concurrent[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Clear()
}

// Items returns an iterator over a copy of the (key, value) pairs of space,
// taken when the range starts. The lock is not held while yielding.
func (c *Concurrent[K, V]) Items(space string) (iter.Seq2[K, V], error) {
	if !c.store.HasKeySpace(space) {
		return nil, keySpaceError("items", space)
	}
	return func(yield func(K, V) bool) {
		c.mu.RLock()
		items := c.store.spaces[space]
		keys := make([]K, 0, len(items))
		values := make([]V, 0, len(items))
		for key, id := range items {
			v, _ := c.store.pool.Get(id)
			keys = append(keys, key)
			values = append(values, v)
		}
		c.mu.RUnlock()

		for i, key := range keys {
			if !yield(key, values[i]) {
				return
			}
		}
	}, nil
}

// All returns an iterator over a copy of the (id, value) pairs in insertion
// order, taken when the range starts. The lock is not held while yielding.
func (c *Concurrent[K, V]) All() iter.Seq2[ID, V] {
	return func(yield func(ID, V) bool) {
		ids, values := c.snapshot()
		for i, id := range ids {
			if !yield(id, values[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over a copy of the stored values, taken when
// the range starts. The lock is not held while yielding.
func (c *Concurrent[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		_, values := c.snapshot()
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}
}

// snapshot copies the pool in insertion order under the read lock.
func (c *Concurrent[K, V]) snapshot() ([]ID, []V) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]ID, 0, c.store.Len())
	values := make([]V, 0, c.store.Len())
	c.store.pool.Walk(func(id ID, v V) bool {
		ids = append(ids, id)
		values = append(values, v)
		return true
	})
	return ids, values
}

// Save writes a snapshot under the read lock.
func (c *Concurrent[K, V]) Save(w io.Writer, opts ...SnapshotOption) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Save(w, opts...)
}
