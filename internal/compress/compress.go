// Package compress provides the block compression used by trace files.
//
// Every block carries an 8-byte header:
//
//	[UncompressedSize uint32][CompressedSize uint32][Data...]
//
// CompressedSize == 0 means the payload is stored as is: either compression
// was disabled or it did not shrink the block by at least 10%.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None indicates no compression.
	None Type = 0
	// LZ4 indicates LZ4 block compression (fast).
	LZ4 Type = 1
	// Zstd indicates Zstandard block compression (better ratio).
	Zstd Type = 2
)

// HeaderSize is the size of the block header in bytes.
const HeaderSize = 8

// MaxBlockSize bounds the uncompressed size a block may declare.
const MaxBlockSize = 1 << 28

var (
	// ErrCorrupt is returned for truncated or inconsistent blocks.
	ErrCorrupt = errors.New("corrupt block")

	// ErrUnknownType is returned for unsupported compression types.
	ErrUnknownType = errors.New("unknown compression type")
)

// String returns the stable name of the compression type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ParseType resolves a compression name ("none", "lz4", "zstd").
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t <= Zstd
}

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBlockSize))
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block compresses data and prepends the block header.
func Block(data []byte, t Type) ([]byte, error) {
	if len(data) > MaxBlockSize {
		return nil, fmt.Errorf("%w: block of %d bytes exceeds %d", ErrCorrupt, len(data), MaxBlockSize)
	}

	var (
		compressed []byte
		err        error
	)

	switch t {
	case None:
	case LZ4:
		compressed, err = blockLZ4(data)
	case Zstd:
		compressed = blockZstd(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
	}

	if err != nil {
		return nil, err
	}

	// If compression doesn't help (ratio > 0.9), store uncompressed
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, HeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[4:], 0)
		copy(out[HeaderSize:], data)
		return out, nil
	}

	out := make([]byte, HeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[HeaderSize:], compressed)
	return out, nil
}

func blockLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil // Incompressible
	}

	return compressed[:n], nil
}

func blockZstd(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// Unblock validates the header of block and returns its decompressed payload.
// Stored payloads alias block.
func Unblock(block []byte, t Type) ([]byte, error) {
	if len(block) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too small for a header", ErrCorrupt, len(block))
	}

	size := binary.LittleEndian.Uint32(block[0:])
	csize := binary.LittleEndian.Uint32(block[4:])
	if size > MaxBlockSize {
		return nil, fmt.Errorf("%w: declared size %d exceeds %d", ErrCorrupt, size, MaxBlockSize)
	}

	if csize == 0 {
		if uint64(len(block)) != HeaderSize+uint64(size) {
			return nil, fmt.Errorf("%w: stored block length mismatch", ErrCorrupt)
		}
		return block[HeaderSize:], nil
	}

	if uint64(len(block)) != HeaderSize+uint64(csize) {
		return nil, fmt.Errorf("%w: compressed block length mismatch", ErrCorrupt)
	}

	payload := block[HeaderSize:]
	out := make([]byte, size)

	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	case Zstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: compressed block with type %s", ErrUnknownType, t)
	}
}
