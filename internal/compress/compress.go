// Package compress implements the block compression used by store snapshots.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a compression algorithm. It is persisted in snapshot
// headers, so values must stay stable.
type Type uint8

const (
	// None stores blocks verbatim.
	None Type = 0
	// LZ4 is fast block compression.
	LZ4 Type = 1
	// ZSTD trades speed for a better ratio.
	ZSTD Type = 2
)

// String returns the algorithm name.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool {
	return t <= ZSTD
}

var (
	// ErrCorrupt is returned when a block cannot be decoded.
	ErrCorrupt = errors.New("compress: corrupt block")

	// ErrTooLarge is returned when a block exceeds the 4GiB header limit.
	ErrTooLarge = errors.New("compress: block too large")
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(math.MaxUint32))
}

// Expansion limits of the block formats. An lz4 sequence expands at most
// 255 times plus a small literal tail. The smallest zstd block is a 3 byte
// header with one RLE byte, and no block decodes to more than 128KiB.
const (
	lz4MaxRatio  = 255
	lz4MaxTail   = 16
	zstdMinBlock = 4
	zstdMaxBlock = 128 << 10
)

// maxDecodedSize bounds what a payload of n bytes can decode to with t.
func maxDecodedSize(t Type, n int) uint64 {
	switch t {
	case LZ4:
		return lz4MaxRatio*uint64(n) + lz4MaxTail
	case ZSTD:
		return (uint64(n)/zstdMinBlock + 1) * zstdMaxBlock
	default:
		return uint64(n)
	}
}

// HeaderSize is the size of the block header.
// Format: [UncompressedSize uint32][CompressedSize uint32][Data...]
// A CompressedSize of 0 marks a verbatim block.
const HeaderSize = 8

// Encode compresses data into a self-describing block.
// If compression does not pay off the block is stored verbatim.
func Encode(data []byte, t Type) ([]byte, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	var compressed []byte
	var err error

	switch t {
	case None:
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		compressed, err = encodeZSTD(data)
	default:
		return nil, fmt.Errorf("compress: unknown type %s", t)
	}
	if err != nil {
		return nil, err
	}

	// Ratio > 0.9 is not worth the decode cost.
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		block := make([]byte, HeaderSize+len(data))
		binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(block[4:], 0)
		copy(block[HeaderSize:], data)
		return block, nil
	}

	block := make([]byte, HeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(block[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(block[4:], uint32(len(compressed)))
	copy(block[HeaderSize:], compressed)
	return block, nil
}

func encodeLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func encodeZSTD(data []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

// Decode reverses Encode. t must be the type the block was written with.
func Decode(block []byte, t Type) ([]byte, error) {
	if len(block) < HeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}

	uncompressedSize := binary.LittleEndian.Uint32(block[0:])
	compressedSize := binary.LittleEndian.Uint32(block[4:])
	payload := block[HeaderSize:]

	if compressedSize == 0 {
		if uint64(len(payload)) != uint64(uncompressedSize) {
			return nil, fmt.Errorf("%w: verbatim size mismatch", ErrCorrupt)
		}
		return payload, nil
	}
	if uint64(len(payload)) != uint64(compressedSize) {
		return nil, fmt.Errorf("%w: compressed size mismatch", ErrCorrupt)
	}
	// The header is checked against the payload before anything is
	// allocated from it.
	if uint64(uncompressedSize) > maxDecodedSize(t, len(payload)) {
		return nil, fmt.Errorf("%w: uncompressed size %d exceeds payload bound", ErrCorrupt, uncompressedSize)
	}

	switch t {
	case LZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		var h zstd.Header
		if err := h.Decode(payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if h.HasFCS && h.FrameContentSize != uint64(uncompressedSize) {
			return nil, fmt.Errorf("%w: frame size mismatch", ErrCorrupt)
		}

		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(out)) != uncompressedSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: compressed payload with type %s", ErrCorrupt, t)
	}
}
