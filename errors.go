package multikey

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKeySpace is returned when an operation names a key space
	// outside the set fixed at construction.
	ErrUnknownKeySpace = errors.New("unknown key space")

	// ErrKeyNotFound is returned when a key is not bound in its key space.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyOccupied is returned when a key is already bound to another object.
	ErrKeyOccupied = errors.New("key occupied")

	// ErrUnknownID is returned when an id does not name a stored object.
	ErrUnknownID = errors.New("unknown id")

	// ErrNoKeys is returned by Add when no key is supplied.
	ErrNoKeys = errors.New("at least one key is required")

	// ErrNoKeySpaces is returned by New when no key space is named.
	ErrNoKeySpaces = errors.New("at least one key space is required")

	// ErrDuplicateKeySpace is returned by New when a key space is named twice.
	ErrDuplicateKeySpace = errors.New("duplicate key space")

	// ErrInvalidKeySpace is returned by New for an empty key space name.
	ErrInvalidKeySpace = errors.New("invalid key space name")

	// ErrIDCollision is returned when the id generator yields an id that is
	// still live in the store.
	ErrIDCollision = errors.New("id generator returned a live id")

	// ErrValueRejected is returned when the configured ValueChecker rejects a value.
	ErrValueRejected = errors.New("value rejected")

	// ErrCorruptSnapshot is returned when a snapshot cannot be decoded or
	// violates store invariants.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrUnknownCodec is returned when a snapshot names a codec that is not built in.
	ErrUnknownCodec = errors.New("unknown codec")
)

// KeySpaceError reports an operation on a key space name that is not part of
// the store.
//
// It unwraps to ErrUnknownKeySpace.
type KeySpaceError struct {
	Op       string
	KeySpace string
}

func (e *KeySpaceError) Error() string {
	return fmt.Sprintf("multikey: %s: %q: %v", e.Op, e.KeySpace, ErrUnknownKeySpace)
}

func (e *KeySpaceError) Unwrap() error { return ErrUnknownKeySpace }

// KeyError reports a failed key lookup or binding.
//
// Err is ErrKeyNotFound or ErrKeyOccupied. For ErrKeyOccupied, Owner is the id
// currently holding the key.
type KeyError struct {
	Op       string
	KeySpace string
	Key      any
	Owner    ID
	Err      error
}

func (e *KeyError) Error() string {
	if e.Owner != "" {
		return fmt.Sprintf("multikey: %s: %s:%v: %v by %s", e.Op, e.KeySpace, e.Key, e.Err, e.Owner)
	}
	return fmt.Sprintf("multikey: %s: %s:%v: %v", e.Op, e.KeySpace, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// IDError reports an operation on an id that is not live, or an id the
// generator produced twice.
//
// Err is ErrUnknownID or ErrIDCollision.
type IDError struct {
	Op  string
	ID  ID
	Err error
}

func (e *IDError) Error() string {
	return fmt.Sprintf("multikey: %s: %s: %v", e.Op, e.ID, e.Err)
}

func (e *IDError) Unwrap() error { return e.Err }

func keySpaceError(op, space string) error {
	return &KeySpaceError{Op: op, KeySpace: space}
}

func keyNotFound(op, space string, key any) error {
	return &KeyError{Op: op, KeySpace: space, Key: key, Err: ErrKeyNotFound}
}

func keyOccupied(op, space string, key any, owner ID) error {
	return &KeyError{Op: op, KeySpace: space, Key: key, Owner: owner, Err: ErrKeyOccupied}
}
