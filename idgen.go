package multikey

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// ID is the opaque identifier correlating one stored object across all of
// its key spaces.
type ID string

// String returns the id text.
func (id ID) String() string { return string(id) }

// IDGenerator produces identifiers for new objects.
//
// Every call must return an id never returned before by the same generator,
// or at least one that is not live in any store it feeds.
type IDGenerator interface {
	NewID() ID
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() ID

// NewID implements IDGenerator.
func (f IDGeneratorFunc) NewID() ID { return f() }

// UUIDGenerator generates random (v4) or time-ordered (v7) UUIDs.
// The zero value produces v4 UUIDs.
type UUIDGenerator struct {
	// TimeOrdered selects UUIDv7, which sorts by creation time.
	TimeOrdered bool
}

// NewID implements IDGenerator.
func (g UUIDGenerator) NewID() ID {
	if g.TimeOrdered {
		// NewV7 only fails when the random source does, same as uuid.New.
		return ID(uuid.Must(uuid.NewV7()).String())
	}
	return ID(uuid.NewString())
}

// SequenceGenerator hands out "<prefix><n>" ids from a monotonic counter.
// It is safe for concurrent use. The counter starts at 1.
type SequenceGenerator struct {
	prefix string
	next   atomic.Uint64
}

// NewSequenceGenerator creates a SequenceGenerator with the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// NewID implements IDGenerator.
func (g *SequenceGenerator) NewID() ID {
	return ID(g.prefix + strconv.FormatUint(g.next.Add(1), 10))
}
