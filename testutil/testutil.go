package testutil

import (
	"fmt"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Key returns one of keyRange distinct keys, "k0" .. "k<keyRange-1>".
// A small keyRange forces collisions.
func (r *RNG) Key(keyRange int) string {
	return fmt.Sprintf("k%d", r.Intn(keyRange))
}

// OpKind is the kind of a generated store operation.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSet
	OpSetKey
	OpPop
	OpClear
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpSet:
		return "set"
	case OpSetKey:
		return "set_key"
	case OpPop:
		return "pop"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("op(%d)", int(k))
	}
}

// Op is one randomly generated store operation.
//
// For OpAdd, Keys holds a non-empty subset of the key spaces. For the other
// kinds, KeySpace/Key address the target and, for OpSetKey, Target/TargetKey
// name the binding to create on the object found there.
type Op struct {
	Kind      OpKind
	Keys      map[string]string
	KeySpace  string
	Key       string
	Target    string
	TargetKey string
	Value     int
}

// Ops generates n operations over keySpaces with keys drawn from keyRange.
// Clear is rare so that stores grow between resets.
func (r *RNG) Ops(n int, keySpaces []string, keyRange int) []Op {
	ops := make([]Op, 0, n)
	for i := range n {
		op := Op{Value: i}
		switch roll := r.Intn(100); {
		case roll < 40:
			op.Kind = OpAdd
			op.Keys = make(map[string]string)
			for len(op.Keys) == 0 {
				for _, ks := range keySpaces {
					if r.Intn(2) == 0 {
						op.Keys[ks] = r.Key(keyRange)
					}
				}
			}
		case roll < 55:
			op.Kind = OpSet
		case roll < 75:
			op.Kind = OpSetKey
			op.Target = keySpaces[r.Intn(len(keySpaces))]
			op.TargetKey = r.Key(keyRange)
		case roll < 99:
			op.Kind = OpPop
		default:
			op.Kind = OpClear
		}
		op.KeySpace = keySpaces[r.Intn(len(keySpaces))]
		op.Key = r.Key(keyRange)
		ops = append(ops, op)
	}
	return ops
}
