// Package multikey provides an in-memory store whose values can be looked up
// through several independent, uniquely keyed indexes ("key spaces").
//
// A store is created with a fixed set of key space names. Each object is
// added under any subset of them and can later gain keys in further spaces.
// Internally every object has an opaque ID and an identity record of its
// bindings, which keeps all key spaces consistent with the object pool.
//
// # Quick Start
//
//	people, _ := multikey.New[string, *Person]([]string{"name", "ssn"})
//	id, _ := people.Add(map[string]string{"name": "alice"}, alice)
//	_ = people.SetKey(id, "ssn", "111")
//
//	p, _ := people.Lookup("ssn", "111")       // alice
//	p, _ = people.Get("name", "bob", nil)     // default on a missing key
//	_, _ = people.Pop("name", "alice")        // removes "ssn":"111" too
//
// # Guarantees
//
//   - Add validates every key before writing; a failed Add changes nothing.
//   - A key is never silently rebound to another object.
//   - Pop removes the object from every key space it is registered in.
//   - An object holds at most one key per key space; SetKey with a new key
//     for a space replaces the old one.
//   - Ids come from an IDGenerator (random UUIDs by default) and are checked
//     against live ids.
//
// # Errors
//
// Failures unwrap to ErrUnknownKeySpace, ErrKeyNotFound, ErrKeyOccupied or
// ErrUnknownID; use errors.Is to match them and errors.As with
// *KeySpaceError, *KeyError or *IDError for details.
//
// # Concurrency
//
// Store is not safe for concurrent use. Concurrent wraps a Store behind a
// read-write lock.
//
// # Snapshots
//
// Save and Load persist a store to any io.Writer/io.Reader using a codec
// from the codec package and optional LZ4 or ZSTD compression.
package multikey
