// Package trace records and replays per-frame point sets.
//
// A trace captures the positions a host inserted each frame so a workload
// can be replayed against any backend for profiling. The file layout is:
//
//	header: "SPTR" | version u8 | codec name length u8 | codec name | compression u8
//	frame:  length u32 | block
//
// Each block is a compress block whose payload is the codec encoding of a
// Frame. All integers are little-endian.
package trace

import (
	"errors"

	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
)

// Magic identifies trace files.
const Magic = "SPTR"

// Version is the current file format version.
const Version uint8 = 1

var (
	// ErrBadMagic is returned when the input is not a trace file.
	ErrBadMagic = errors.New("trace: bad magic")

	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("trace: unsupported version")

	// ErrUnknownCodec is returned when the header names a codec that is not built in.
	ErrUnknownCodec = errors.New("trace: unknown codec")

	// ErrCorrupt is returned for truncated or inconsistent frames.
	ErrCorrupt = errors.New("trace: corrupt frame")
)

// Frame is the recorded state of one frame.
type Frame struct {
	Seq    uint64     `json:"seq" msgpack:"seq"`
	Points []geom.Vec `json:"points" msgpack:"points"`
}

// Capture returns the positions currently stored in ix as frame seq.
func Capture[T any](seq uint64, ix index.Index[T]) Frame {
	return Frame{Seq: seq, Points: index.Positions(ix)}
}
