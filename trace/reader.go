package trace

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hupe1980/spatialgo/codec"
	"github.com/hupe1980/spatialgo/internal/compress"
)

// Reader decodes frames from a trace.
type Reader struct {
	r           *bufio.Reader
	codec       codec.Codec
	compression compress.Type
	frames      uint64
	buf         []byte
}

// NewReader reads and validates the trace header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)

	fixed := make([]byte, len(Magic)+2)
	if _, err := io.ReadFull(br, fixed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMagic, err)
	}
	if string(fixed[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	if v := fixed[len(Magic)]; v != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	rest := make([]byte, int(fixed[len(Magic)+1])+1)
	if _, err := io.ReadFull(br, rest); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrCorrupt, err)
	}

	name := string(rest[:len(rest)-1])
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	ct := compress.Type(rest[len(rest)-1])
	if !ct.Valid() {
		return nil, fmt.Errorf("trace: %w: %d", compress.ErrUnknownType, ct)
	}

	return &Reader{r: br, codec: c, compression: ct}, nil
}

// Codec returns the codec named in the header.
func (r *Reader) Codec() codec.Codec { return r.codec }

// Compression returns the compression named in the header.
func (r *Reader) Compression() compress.Type { return r.compression }

// Frames returns the number of frames read so far.
func (r *Reader) Frames() uint64 { return r.frames }

// Next decodes the next frame. It returns io.EOF after the last frame.
func (r *Reader) Next() (Frame, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r.r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("%w: length: %w", ErrCorrupt, err)
	}

	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n < compress.HeaderSize || n > compress.MaxBlockSize+compress.HeaderSize {
		return Frame{}, fmt.Errorf("%w: block length %d", ErrCorrupt, n)
	}

	if cap(r.buf) < int(n) {
		r.buf = make([]byte, n)
	}
	r.buf = r.buf[:n]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		return Frame{}, fmt.Errorf("%w: block: %w", ErrCorrupt, err)
	}

	payload, err := compress.Unblock(r.buf, r.compression)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var f Frame
	if err := r.codec.Unmarshal(payload, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: decode: %w", ErrCorrupt, err)
	}

	r.frames++

	return f, nil
}

// All yields every remaining frame. A decode error is yielded once and ends the sequence.
func (r *Reader) All() iter.Seq2[Frame, error] {
	return func(yield func(Frame, error) bool) {
		for {
			f, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}
