package arena

import (
	"errors"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

const (
	// DefaultCompactThreshold is the minimum number of tombstones before
	// compaction is considered.
	DefaultCompactThreshold = 1024

	maxSlots = math.MaxUint32
)

var (
	// ErrDuplicate is returned when an identifier is already present.
	ErrDuplicate = errors.New("arena: duplicate identifier")

	// ErrFull is returned when no slot position is left.
	ErrFull = errors.New("arena: slot space exhausted")
)

type slot[I comparable, V any] struct {
	id    I
	value V
}

// Arena is an insertion-ordered pool of values keyed by identifier.
type Arena[I comparable, V any] struct {
	slots            []slot[I, V]
	index            map[I]uint32
	live             *roaring.Bitmap
	iterating        int
	generation       uint64
	compactThreshold int
}

// New creates an empty Arena.
// compactThreshold defaults to DefaultCompactThreshold if <= 0.
func New[I comparable, V any](compactThreshold int) *Arena[I, V] {
	if compactThreshold <= 0 {
		compactThreshold = DefaultCompactThreshold
	}
	return &Arena[I, V]{
		index:            make(map[I]uint32),
		live:             roaring.New(),
		compactThreshold: compactThreshold,
	}
}

// Insert appends value under id.
func (a *Arena[I, V]) Insert(id I, value V) error {
	if _, ok := a.index[id]; ok {
		return ErrDuplicate
	}
	if uint64(len(a.slots)) >= maxSlots {
		a.compact()
		if uint64(len(a.slots)) >= maxSlots {
			return ErrFull
		}
	}

	pos := uint32(len(a.slots))
	a.slots = append(a.slots, slot[I, V]{id: id, value: value})
	a.index[id] = pos
	a.live.Add(pos)
	return nil
}

// Get returns the value stored under id.
func (a *Arena[I, V]) Get(id I) (V, bool) {
	pos, ok := a.index[id]
	if !ok {
		var zero V
		return zero, false
	}
	return a.slots[pos].value, true
}

// Set replaces the value stored under id. It reports false if id is absent.
func (a *Arena[I, V]) Set(id I, value V) bool {
	pos, ok := a.index[id]
	if !ok {
		return false
	}
	a.slots[pos].value = value
	return true
}

// Contains reports whether id is present.
func (a *Arena[I, V]) Contains(id I) bool {
	_, ok := a.index[id]
	return ok
}

// Delete removes id and returns its value.
func (a *Arena[I, V]) Delete(id I) (V, bool) {
	pos, ok := a.index[id]
	if !ok {
		var zero V
		return zero, false
	}

	value := a.slots[pos].value
	a.slots[pos] = slot[I, V]{} // release the value to the GC
	delete(a.index, id)
	a.live.Remove(pos)

	if a.shouldCompact() {
		a.compact()
	}
	return value, true
}

// Len returns the number of live values.
func (a *Arena[I, V]) Len() int {
	return int(a.live.GetCardinality())
}

// Tombstones returns the number of reclaimable slots.
func (a *Arena[I, V]) Tombstones() int {
	return len(a.slots) - a.Len()
}

// Reset drops every value. Ranges over All in progress end at their next step.
func (a *Arena[I, V]) Reset() {
	a.generation++
	a.slots = nil
	a.index = make(map[I]uint32)
	a.live.Clear()
}

// All returns an iterator over live (id, value) pairs in insertion order.
// The sequence is restartable: each range starts from the oldest entry.
// Values inserted during a range are yielded by it; a Reset ends it.
func (a *Arena[I, V]) All() iter.Seq2[I, V] {
	return func(yield func(I, V) bool) {
		generation := a.generation
		a.iterating++
		defer func() {
			a.iterating--
			if a.shouldCompact() {
				a.compact()
			}
		}()

		for i := 0; i < len(a.slots) && a.generation == generation; i++ {
			if !a.live.Contains(uint32(i)) {
				continue
			}
			s := a.slots[i]
			if !yield(s.id, s.value) {
				return
			}
		}
	}
}

// Walk calls fn for each live (id, value) pair in insertion order until fn
// returns false. Unlike All it never modifies the arena, so concurrent Walks
// are safe as long as nothing mutates the arena meanwhile. fn must not
// mutate the arena.
func (a *Arena[I, V]) Walk(fn func(I, V) bool) {
	it := a.live.Iterator()
	for it.HasNext() {
		s := a.slots[it.Next()]
		if !fn(s.id, s.value) {
			return
		}
	}
}

func (a *Arena[I, V]) shouldCompact() bool {
	if a.iterating > 0 {
		return false
	}
	dead := a.Tombstones()
	return dead >= a.compactThreshold && dead > a.Len()
}

// compact squeezes tombstones out of the slot slice, keeping order.
func (a *Arena[I, V]) compact() {
	if a.iterating > 0 || a.Tombstones() == 0 {
		return
	}

	slots := make([]slot[I, V], 0, a.Len())
	it := a.live.Iterator()
	for it.HasNext() {
		s := a.slots[it.Next()]
		a.index[s.id] = uint32(len(slots))
		slots = append(slots, s)
	}

	a.slots = slots
	a.live.Clear()
	a.live.AddRange(0, uint64(len(slots)))
}
