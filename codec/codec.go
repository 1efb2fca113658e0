// Package codec encodes stored values for snapshots.
//
// The codec name is written into every snapshot header. Changing the codec of
// an existing deployment means old snapshots must be loaded with the codec
// they were written with.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
