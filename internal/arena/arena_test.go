package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArena(t *testing.T) {
	t.Run("AppendReturnsSequentialSlots", func(t *testing.T) {
		a := New[int](0)

		for i := 0; i < 10; i++ {
			slot, err := a.Append(i * 10)
			require.NoError(t, err)
			assert.Equal(t, uint32(i), slot)
		}

		assert.Equal(t, 10, a.Len())
		assert.Equal(t, 70, a.At(7))
	})

	t.Run("Limit", func(t *testing.T) {
		a := New[string](2)

		_, err := a.Append("a")
		require.NoError(t, err)
		_, err = a.Append("b")
		require.NoError(t, err)

		_, err = a.Append("c")
		assert.ErrorIs(t, err, ErrArenaFull)
		assert.Equal(t, 2, a.Len())
		assert.Equal(t, []string{"a", "b"}, a.Items())
	})

	t.Run("ResetKeepsCapacity", func(t *testing.T) {
		a := New[int](0)
		for i := 0; i < 100; i++ {
			_, _ = a.Append(i)
		}
		before := a.Stats().Cap

		a.Reset()

		s := a.Stats()
		assert.Equal(t, 0, s.Len)
		assert.Equal(t, before, s.Cap)
		assert.Equal(t, 100, s.HighWater)
		assert.Equal(t, uint64(1), s.Generation)
	})

	t.Run("Truncate", func(t *testing.T) {
		a := New[int](0)
		for i := 0; i < 5; i++ {
			_, _ = a.Append(i)
		}

		a.Truncate(3)
		assert.Equal(t, []int{0, 1, 2}, a.Items())

		a.Truncate(10)
		assert.Equal(t, 3, a.Len())
	})
}
