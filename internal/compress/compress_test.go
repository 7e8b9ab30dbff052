package compress

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockRoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("boids flock together "), 500)
	random := make([]byte, 4096)
	for i := range random {
		random[i] = byte(i*7919 + i>>3)
	}

	for _, typ := range []Type{None, LZ4, Zstd} {
		for name, data := range map[string][]byte{
			"Empty":        {},
			"Compressible": compressible,
			"Noisy":        random,
		} {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				block, err := Block(data, typ)
				require.NoError(t, err)
				assert.Equal(t, uint32(len(data)), binary.LittleEndian.Uint32(block))

				got, err := Unblock(block, typ)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(got))
				assert.True(t, bytes.Equal(data, got))
			})
		}
	}
}

func TestBlockCompresses(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)

	for _, typ := range []Type{LZ4, Zstd} {
		block, err := Block(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(block), len(data)/2, typ.String())
		assert.NotZero(t, binary.LittleEndian.Uint32(block[4:]), "compressed size is recorded")
	}

	block, err := Block(data, None)
	require.NoError(t, err)
	assert.Equal(t, HeaderSize+len(data), len(block))
	assert.Zero(t, binary.LittleEndian.Uint32(block[4:]))
}

func TestUnblockCorrupt(t *testing.T) {
	data := bytes.Repeat([]byte("abc"), 1000)
	block, err := Block(data, Zstd)
	require.NoError(t, err)

	t.Run("TooShort", func(t *testing.T) {
		_, err := Unblock(block[:4], Zstd)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Unblock(block[:len(block)-1], Zstd)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("HugeDeclaredSize", func(t *testing.T) {
		bad := append([]byte(nil), block...)
		binary.LittleEndian.PutUint32(bad, MaxBlockSize+1)
		_, err := Unblock(bad, Zstd)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("WrongType", func(t *testing.T) {
		_, err := Unblock(block, None)
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{None, LZ4, Zstd} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	got, err := ParseType("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, Zstd, got)

	_, err = ParseType("brotli")
	assert.ErrorIs(t, err, ErrUnknownType)

	assert.False(t, Type(9).Valid())
	assert.Equal(t, "Type(9)", Type(9).String())
}
