package multikey

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/multikey/codec"
	"github.com/hupe1980/multikey/internal/compress"
)

// Compression selects the block compression of a snapshot.
type Compression = compress.Type

const (
	// CompressionNone writes the encoded body verbatim.
	CompressionNone = compress.None
	// CompressionLZ4 favors speed.
	CompressionLZ4 = compress.LZ4
	// CompressionZSTD favors size.
	CompressionZSTD = compress.ZSTD
)

const snapshotVersion = 1

var snapshotMagic = [4]byte{'M', 'K', 'S', 'S'}

type snapshotOptions struct {
	codec       codec.Codec
	compression Compression
}

// SnapshotOption configures Save.
type SnapshotOption func(*snapshotOptions)

// WithSnapshotCodec sets the codec used to encode keys and values.
// If nil is passed, codec.Default is used.
func WithSnapshotCodec(c codec.Codec) SnapshotOption {
	return func(o *snapshotOptions) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression sets the snapshot compression. The default is LZ4.
func WithCompression(c Compression) SnapshotOption {
	return func(o *snapshotOptions) {
		o.compression = c
	}
}

type snapshotEntry[K comparable, V any] struct {
	ID    ID           `json:"id"`
	Keys  map[string]K `json:"keys"`
	Value V            `json:"value"`
}

type snapshotBody[K comparable, V any] struct {
	KeySpaces []string              `json:"key_spaces"`
	Entries   []snapshotEntry[K, V] `json:"entries"`
}

// Save writes the store to w.
//
// Format: [Magic "MKSS"] [Version: 1 byte] [Compression: 1 byte]
// [CodecNameLen: 1 byte] [CodecName] [Block]
// Block is a compress block holding the codec-encoded key spaces and the
// objects in insertion order, each with its id and identity record.
func (s *Store[K, V]) Save(w io.Writer, opts ...SnapshotOption) (err error) {
	defer func() {
		s.logger.LogSnapshot(context.Background(), "save", s.pool.Len(), err)
	}()

	o := snapshotOptions{codec: codec.Default, compression: CompressionLZ4}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.compression.Valid() {
		return fmt.Errorf("multikey: save: unknown compression %s", o.compression)
	}
	name := o.codec.Name()
	if name == "" || len(name) > 255 {
		return fmt.Errorf("multikey: save: invalid codec name %q", name)
	}

	body := snapshotBody[K, V]{
		KeySpaces: s.keySpaces,
		Entries:   make([]snapshotEntry[K, V], 0, s.pool.Len()),
	}
	s.pool.Walk(func(id ID, v V) bool {
		body.Entries = append(body.Entries, snapshotEntry[K, V]{
			ID:    id,
			Keys:  s.records[id],
			Value: v,
		})
		return true
	})

	data, err := o.codec.Marshal(body)
	if err != nil {
		return fmt.Errorf("multikey: save: encode: %w", err)
	}
	block, err := compress.Encode(data, o.compression)
	if err != nil {
		return fmt.Errorf("multikey: save: compress: %w", err)
	}

	bw := bufio.NewWriter(w)
	bw.Write(snapshotMagic[:])
	bw.WriteByte(snapshotVersion)
	bw.WriteByte(byte(o.compression))
	bw.WriteByte(byte(len(name)))
	bw.WriteString(name)
	bw.Write(block)
	// bufio.Writer keeps the first write error and returns it from Flush.
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("multikey: save: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save into a new store.
//
// opts configure the new store as in New; WithCodecs makes non built-in
// codecs available. Ids are restored as saved, so the configured
// IDGenerator must not hand out ids that are present in the snapshot.
func Load[K comparable, V any](r io.Reader, opts ...Option) (_ *Store[K, V], err error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	var header [7]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, corrupt("header", err)
	}
	if !bytes.Equal(header[:4], snapshotMagic[:]) {
		return nil, corrupt("bad magic", nil)
	}
	if header[4] != snapshotVersion {
		return nil, corrupt(fmt.Sprintf("unsupported version %d", header[4]), nil)
	}
	compression := Compression(header[5])
	if !compression.Valid() {
		return nil, corrupt(fmt.Sprintf("unknown compression %d", header[5]), nil)
	}

	name := make([]byte, header[6])
	if _, err := io.ReadFull(br, name); err != nil {
		return nil, corrupt("codec name", err)
	}
	c, ok := lookupCodec(string(name), o.codecs)
	if !ok {
		return nil, fmt.Errorf("multikey: load: %w: %q", ErrUnknownCodec, name)
	}

	block, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("multikey: load: %w", err)
	}
	data, err := compress.Decode(block, compression)
	if err != nil {
		return nil, corrupt("block", err)
	}

	var body snapshotBody[K, V]
	if err := c.Unmarshal(data, &body); err != nil {
		return nil, corrupt("decode", err)
	}

	store, err := New[K, V](body.KeySpaces, opts...)
	if err != nil {
		return nil, corrupt("key spaces", err)
	}
	defer func() {
		store.logger.LogSnapshot(context.Background(), "load", len(body.Entries), err)
	}()

	for _, e := range body.Entries {
		if e.ID == "" || len(e.Keys) == 0 {
			return nil, corrupt("entry without id or keys", nil)
		}
		if store.pool.Contains(e.ID) {
			return nil, corrupt("duplicate id "+e.ID.String(), nil)
		}
		if err := store.checkFree("load", e.Keys); err != nil {
			return nil, corrupt("entry "+e.ID.String(), err)
		}
		if err := checkValue(store.checker, "load", e.Value); err != nil {
			return nil, err
		}
		if err := store.insert(e.ID, e.Keys, e.Value); err != nil {
			return nil, fmt.Errorf("multikey: load: %w", err)
		}
	}
	return store, nil
}

func lookupCodec(name string, extra []codec.Codec) (codec.Codec, bool) {
	for _, c := range extra {
		if c != nil && c.Name() == name {
			return c, true
		}
	}
	return codec.ByName(name)
}

func corrupt(what string, cause error) error {
	if cause == nil {
		return fmt.Errorf("multikey: load: %w: %s", ErrCorruptSnapshot, what)
	}
	if errors.Is(cause, io.EOF) {
		cause = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("multikey: load: %w: %s: %w", ErrCorruptSnapshot, what, cause)
}
