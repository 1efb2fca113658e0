package multikey

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/multikey/internal/arena"
)

// Store is a pool of values reachable through several uniquely keyed
// lookup tables, the key spaces.
//
// Every stored object has an identity record listing the (key space, key)
// pairs bound to it, so removing the object through any one key removes all
// of its bindings. An object holds at most one key per key space.
//
// A Store is not safe for concurrent use; see Concurrent.
type Store[K comparable, V any] struct {
	keySpaces []string
	spaces    map[string]map[K]ID
	records   map[ID]map[string]K
	pool      *arena.Arena[ID, V]

	idGenerator IDGenerator
	checker     ValueChecker
	logger      *Logger
	metrics     MetricsCollector
}

// New creates an empty Store with a fixed set of key spaces.
//
// keySpaces must be non-empty and free of duplicates and empty names.
func New[K comparable, V any](keySpaces []string, opts ...Option) (*Store[K, V], error) {
	if len(keySpaces) == 0 {
		return nil, fmt.Errorf("multikey: new: %w", ErrNoKeySpaces)
	}

	spaces := make(map[string]map[K]ID, len(keySpaces))
	for _, name := range keySpaces {
		if name == "" {
			return nil, fmt.Errorf("multikey: new: %w", ErrInvalidKeySpace)
		}
		if _, dup := spaces[name]; dup {
			return nil, fmt.Errorf("multikey: new: %w: %q", ErrDuplicateKeySpace, name)
		}
		spaces[name] = make(map[K]ID)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	names := slices.Clone(keySpaces)
	return &Store[K, V]{
		keySpaces:   names,
		spaces:      spaces,
		records:     make(map[ID]map[string]K),
		pool:        arena.New[ID, V](o.compactThreshold),
		idGenerator: o.idGenerator,
		checker:     o.checker,
		logger:      o.logger.WithStore(names),
		metrics:     o.metricsCollector,
	}, nil
}

// KeySpaces returns the key space names in construction order.
func (s *Store[K, V]) KeySpaces() []string {
	return slices.Clone(s.keySpaces)
}

// HasKeySpace reports whether name is one of the store's key spaces.
func (s *Store[K, V]) HasKeySpace(name string) bool {
	_, ok := s.spaces[name]
	return ok
}

// Len returns the number of stored objects, not the number of keys.
func (s *Store[K, V]) Len() int {
	return s.pool.Len()
}

// String implements fmt.Stringer.
func (s *Store[K, V]) String() string {
	return "multikey.Store[" + strings.Join(s.keySpaces, " ") + "]"
}

// Add stores v under every (key space, key) pair in keys and returns the id
// of the new object.
//
// All names and keys are validated before anything is written: a failed Add
// leaves the store unchanged.
func (s *Store[K, V]) Add(keys map[string]K, v V) (id ID, err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordAdd(time.Since(start), err)
		s.logger.LogAdd(context.Background(), id, len(keys), err)
	}()

	if len(keys) == 0 {
		return "", fmt.Errorf("multikey: add: %w", ErrNoKeys)
	}

	if err := s.checkFree("add", keys); err != nil {
		return "", err
	}
	if err := checkValue(s.checker, "add", v); err != nil {
		return "", err
	}

	newID := s.idGenerator.NewID()
	if s.pool.Contains(newID) {
		return "", &IDError{Op: "add", ID: newID, Err: ErrIDCollision}
	}
	if err := s.insert(newID, keys, v); err != nil {
		return "", fmt.Errorf("multikey: add: %w", err)
	}
	return newID, nil
}

// checkFree verifies that every name in keys is a key space and every key
// is unbound. Names are checked in sorted order so failures are deterministic.
func (s *Store[K, V]) checkFree(op string, keys map[string]K) error {
	for _, name := range slices.Sorted(maps.Keys(keys)) {
		index, ok := s.spaces[name]
		if !ok {
			return keySpaceError(op, name)
		}
		if owner, taken := index[keys[name]]; taken {
			return keyOccupied(op, name, keys[name], owner)
		}
	}
	return nil
}

// insert writes a validated object into the pool, its identity record and
// every named key space.
func (s *Store[K, V]) insert(id ID, keys map[string]K, v V) error {
	if err := s.pool.Insert(id, v); err != nil {
		return err
	}
	s.records[id] = maps.Clone(keys)
	for name, key := range keys {
		s.spaces[name][key] = id
	}
	return nil
}

// resolve maps (space, key) to the bound id.
func (s *Store[K, V]) resolve(op, space string, key K) (ID, error) {
	index, ok := s.spaces[space]
	if !ok {
		return "", keySpaceError(op, space)
	}
	id, ok := index[key]
	s.metrics.RecordLookup(ok)
	if !ok {
		return "", keyNotFound(op, space, key)
	}
	return id, nil
}

// Lookup returns the value bound to key in space.
func (s *Store[K, V]) Lookup(space string, key K) (V, error) {
	id, err := s.resolve("lookup", space, key)
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := s.pool.Get(id)
	return v, nil
}

// Get returns the value bound to key in space, or def if the key is not
// bound. An unknown key space is still an error.
func (s *Store[K, V]) Get(space string, key K, def V) (V, error) {
	v, err := s.Lookup(space, key)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, ErrKeyNotFound) {
		return def, nil
	}
	return def, err
}

// GetID returns the internal id bound to key in space. The id correlates
// an object across key spaces and is the handle SetKey and KeysOf take.
func (s *Store[K, V]) GetID(space string, key K) (ID, error) {
	return s.resolve("get id", space, key)
}

// HasKey reports whether key is bound in space.
func (s *Store[K, V]) HasKey(space string, key K) (bool, error) {
	_, err := s.resolve("has key", space, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	return false, err
}

// GetDict returns a copy of space as a key -> value map.
func (s *Store[K, V]) GetDict(space string) (map[K]V, error) {
	index, ok := s.spaces[space]
	if !ok {
		return nil, keySpaceError("get dict", space)
	}
	out := make(map[K]V, len(index))
	for key, id := range index {
		out[key], _ = s.pool.Get(id)
	}
	return out, nil
}

// Keys returns the keys bound in space, in no particular order.
func (s *Store[K, V]) Keys(space string) ([]K, error) {
	index, ok := s.spaces[space]
	if !ok {
		return nil, keySpaceError("keys", space)
	}
	return slices.Collect(maps.Keys(index)), nil
}

// Items returns an iterator over the (key, value) pairs of space.
// Values are read when yielded, so the sequence reflects later changes.
func (s *Store[K, V]) Items(space string) (iter.Seq2[K, V], error) {
	index, ok := s.spaces[space]
	if !ok {
		return nil, keySpaceError("items", space)
	}
	return func(yield func(K, V) bool) {
		for key, id := range index {
			v, ok := s.pool.Get(id)
			if !ok {
				continue
			}
			if !yield(key, v) {
				return
			}
		}
	}, nil
}

// KeysOf returns a copy of the identity record of id: every key space it is
// registered in, with its key there.
func (s *Store[K, V]) KeysOf(id ID) (map[string]K, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, &IDError{Op: "keys of", ID: id, Err: ErrUnknownID}
	}
	return maps.Clone(record), nil
}

// Set replaces the value bound to key in space. Key bindings do not change.
func (s *Store[K, V]) Set(space string, key K, v V) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordUpdate(time.Since(start), err)
		s.logger.LogUpdate(context.Background(), space, err)
	}()

	id, err := s.resolve("set", space, key)
	if err != nil {
		return err
	}
	if err := checkValue(s.checker, "set", v); err != nil {
		return err
	}
	s.pool.Set(id, v)
	return nil
}

// SetKey binds key in space to the object id.
//
// Binding a key the object already holds is a no-op. If the object is
// registered in space under another key, that key is released. A key bound
// to a different object is never taken over.
func (s *Store[K, V]) SetKey(id ID, space string, key K) (err error) {
	start := time.Now()
	replaced := false
	defer func() {
		s.metrics.RecordSetKey(time.Since(start), err)
		s.logger.LogSetKey(context.Background(), id, space, replaced, err)
	}()

	index, ok := s.spaces[space]
	if !ok {
		return keySpaceError("set key", space)
	}
	record, ok := s.records[id]
	if !ok {
		return &IDError{Op: "set key", ID: id, Err: ErrUnknownID}
	}
	if owner, taken := index[key]; taken {
		if owner != id {
			return keyOccupied("set key", space, key, owner)
		}
		return nil
	}

	if old, had := record[space]; had {
		delete(index, old)
		replaced = true
	}
	record[space] = key
	index[key] = id
	return nil
}

// Pop removes the object bound to key in space and returns its value.
// Every binding of the object is removed, in all key spaces.
func (s *Store[K, V]) Pop(space string, key K) (v V, err error) {
	start := time.Now()
	var id ID
	removed := 0
	defer func() {
		s.metrics.RecordPop(time.Since(start), removed, err)
		s.logger.LogPop(context.Background(), id, removed, err)
	}()

	id, err = s.resolve("pop", space, key)
	if err != nil {
		return v, err
	}

	for name, k := range s.records[id] {
		if s.spaces[name][k] == id {
			delete(s.spaces[name], k)
			removed++
		}
	}
	delete(s.records, id)
	v, _ = s.pool.Delete(id)
	return v, nil
}

// Clear removes every object and every key binding.
func (s *Store[K, V]) Clear() {
	objects := s.pool.Len()
	for name := range s.spaces {
		s.spaces[name] = make(map[K]ID)
	}
	s.records = make(map[ID]map[string]K)
	s.pool.Reset()

	s.metrics.RecordClear(objects)
	s.logger.LogClear(context.Background(), objects)
}

// All returns an iterator over (id, value) pairs in insertion order.
// Popping objects while ranging is allowed. Clear ends a range in progress.
func (s *Store[K, V]) All() iter.Seq2[ID, V] {
	return s.pool.All()
}

// Values returns an iterator over stored values in insertion order, with
// the same mutation rules as All.
func (s *Store[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range s.pool.All() {
			if !yield(v) {
				return
			}
		}
	}
}
