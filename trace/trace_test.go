package trace

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/hupe1980/spatialgo/codec"
	"github.com/hupe1980/spatialgo/geom"
	"github.com/hupe1980/spatialgo/index"
	"github.com/hupe1980/spatialgo/index/linear"
	"github.com/hupe1980/spatialgo/internal/compress"
	"github.com/hupe1980/spatialgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var world = geom.NewBox(0, 0, 1000, 1000)

func record(t *testing.T, frames []Frame, optFns ...Option) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, optFns...)
	require.NoError(t, err)
	for _, f := range frames {
		require.NoError(t, w.WriteFrame(f))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, uint64(len(frames)), w.Frames())
	assert.Equal(t, int64(buf.Len()), w.BytesWritten())

	return buf.Bytes()
}

func testFrames() []Frame {
	rng := testutil.NewRNG(11)
	frames := make([]Frame, 5)
	for i := range frames {
		frames[i] = Frame{Seq: uint64(i), Points: rng.Points(200, world)}
	}
	return frames
}

func TestRoundTrip(t *testing.T) {
	frames := testFrames()

	for _, name := range codec.Names() {
		for _, ct := range []compress.Type{compress.None, compress.LZ4, compress.Zstd} {
			t.Run(name+"/"+ct.String(), func(t *testing.T) {
				c, _ := codec.ByName(name)
				data := record(t, frames, WithCodec(c), WithCompression(ct))

				r, err := NewReader(bytes.NewReader(data))
				require.NoError(t, err)
				assert.Equal(t, name, r.Codec().Name())
				assert.Equal(t, ct, r.Compression())

				var got []Frame
				for f, err := range r.All() {
					require.NoError(t, err)
					got = append(got, f)
				}
				assert.Equal(t, frames, got)
				assert.Equal(t, uint64(len(frames)), r.Frames())

				_, err = r.Next()
				assert.ErrorIs(t, err, io.EOF)
			})
		}
	}
}

func TestEmptyTrace(t *testing.T) {
	data := record(t, nil)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "msgpack", r.Codec().Name())

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestHeaderErrors(t *testing.T) {
	t.Run("BadMagic", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("NOPE\x01\x04json\x00")))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("Version", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("SPTR\x09\x04json\x00")))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("UnknownCodec", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("SPTR\x01\x03gob\x00")))
		assert.ErrorIs(t, err, ErrUnknownCodec)
	})

	t.Run("UnknownCompression", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("SPTR\x01\x04json\x07")))
		assert.ErrorIs(t, err, compress.ErrUnknownType)
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		_, err := NewReader(bytes.NewReader([]byte("SPTR\x01\x07msg")))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("WriterRejectsUnknownCompression", func(t *testing.T) {
		_, err := NewWriter(io.Discard, WithCompression(compress.Type(5)))
		assert.ErrorIs(t, err, compress.ErrUnknownType)
	})
}

func TestCorruptFrames(t *testing.T) {
	data := record(t, testFrames()[:1], WithCompression(compress.LZ4))
	headerLen := len(Magic) + 2 + len("msgpack") + 1

	t.Run("Truncated", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(data[:len(data)-3]))
		require.NoError(t, err)
		_, err = r.Next()
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("PartialLength", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(data[:headerLen+2]))
		require.NoError(t, err)
		_, err = r.Next()
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("ImplausibleLength", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint32(bad[headerLen:], 3)
		r, err := NewReader(bytes.NewReader(bad))
		require.NoError(t, err)
		_, err = r.Next()
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("AllYieldsErrorOnce", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(data[:len(data)-3]))
		require.NoError(t, err)

		var errs int
		for _, err := range r.All() {
			if err != nil {
				errs++
			}
		}
		assert.Equal(t, 1, errs)
	})
}

func TestCapture(t *testing.T) {
	l, err := linear.New[int]()
	require.NoError(t, err)
	pts := testutil.NewRNG(5).Points(10, world)
	for _, p := range pts {
		require.NoError(t, l.Insert(index.Element[int]{Pos: p}))
	}

	f := Capture[int](3, l)
	assert.Equal(t, uint64(3), f.Seq)
	assert.Equal(t, pts, f.Points)
}
