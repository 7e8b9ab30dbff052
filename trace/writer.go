package trace

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/spatialgo/codec"
	"github.com/hupe1980/spatialgo/internal/compress"
)

type options struct {
	codec       codec.Codec
	compression compress.Type
}

// Option configures a Writer.
type Option func(*options)

// WithCodec sets the frame codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithCompression sets the block compression. Defaults to none.
func WithCompression(t compress.Type) Option {
	return func(o *options) {
		o.compression = t
	}
}

// Writer appends frames to a trace.
type Writer struct {
	w      *bufio.Writer
	opts   options
	frames uint64
	bytes  int64
	lenBuf [4]byte

	payload []byte
}

// NewWriter writes the trace header to w and returns a Writer.
// Call Flush when done.
func NewWriter(w io.Writer, optFns ...Option) (*Writer, error) {
	opts := options{codec: codec.Default, compression: compress.None}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.codec == nil {
		return nil, fmt.Errorf("%w: nil codec", ErrUnknownCodec)
	}
	if _, ok := codec.ByName(opts.codec.Name()); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, opts.codec.Name())
	}
	if !opts.compression.Valid() {
		return nil, fmt.Errorf("trace: %w: %d", compress.ErrUnknownType, opts.compression)
	}

	name := opts.codec.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("%w: name too long", ErrUnknownCodec)
	}

	tw := &Writer{w: bufio.NewWriter(w), opts: opts}

	header := make([]byte, 0, len(Magic)+3+len(name))
	header = append(header, Magic...)
	header = append(header, Version, uint8(len(name)))
	header = append(header, name...)
	header = append(header, uint8(opts.compression))

	n, err := tw.w.Write(header)
	tw.bytes += int64(n)
	if err != nil {
		return nil, err
	}

	return tw, nil
}

// WriteFrame encodes, compresses and appends f.
func (w *Writer) WriteFrame(f Frame) error {
	payload, err := codec.Append(w.opts.codec, w.payload[:0], f)
	if err != nil {
		return fmt.Errorf("trace: encode frame %d: %w", f.Seq, err)
	}
	w.payload = payload

	block, err := compress.Block(payload, w.opts.compression)
	if err != nil {
		return fmt.Errorf("trace: compress frame %d: %w", f.Seq, err)
	}

	binary.LittleEndian.PutUint32(w.lenBuf[:], uint32(len(block)))
	if _, err := w.w.Write(w.lenBuf[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(block); err != nil {
		return err
	}

	w.frames++
	w.bytes += int64(len(w.lenBuf) + len(block))

	return nil
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Frames returns the number of frames written.
func (w *Writer) Frames() uint64 { return w.frames }

// BytesWritten returns the total bytes written including the header.
func (w *Writer) BytesWritten() int64 { return w.bytes }
