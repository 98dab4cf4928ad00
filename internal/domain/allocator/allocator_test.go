package allocator

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

func TestAllocator_Split(t *testing.T) {
	t.Run("should keep every share positive and sum to the total", func(t *testing.T) {
		a := New(rand.NewPCG(42, 7))

		cases := []struct {
			total int64
			n     int
		}{
			{1000, 1}, {1000, 3}, {100, 100}, {101, 100}, {1, 1}, {999999, 37}, {5000, 2},
		}

		for _, tc := range cases {
			for round := 0; round < 200; round++ {
				shares, err := a.Split(tc.total, tc.n)
				require.NoError(t, err)
				require.Len(t, shares, tc.n)

				var sum int64
				for _, s := range shares {
					assert.GreaterOrEqual(t, s, int64(1))
					sum += s
				}
				assert.Equal(t, tc.total, sum)
			}
		}
	})

	t.Run("should give a single share the whole pot", func(t *testing.T) {
		shares, err := New(nil).Split(1000, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{1000}, shares)
	})

	t.Run("should give one cent each when the pot is tight", func(t *testing.T) {
		shares, err := New(rand.NewPCG(1, 1)).Split(100, 100)
		require.NoError(t, err)
		for _, s := range shares {
			assert.Equal(t, int64(1), s)
		}
	})

	t.Run("should reject zero shares", func(t *testing.T) {
		_, err := New(nil).Split(1000, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidShareCount)
	})

	t.Run("should reject a pot below one cent per share", func(t *testing.T) {
		_, err := New(nil).Split(50, 100)
		assert.ErrorIs(t, err, errs.ErrAmountBelowMinimum)
	})
}

func TestAllocator_Next(t *testing.T) {
	t.Run("should stay within twice the average", func(t *testing.T) {
		a := New(rand.NewPCG(3, 5))
		for i := 0; i < 1000; i++ {
			share, err := a.Next(1000, 4)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, share, int64(1))
			assert.LessOrEqual(t, share, int64(500))
		}
	})

	t.Run("should leave a cent for everyone after", func(t *testing.T) {
		a := New(rand.NewPCG(8, 13))
		for i := 0; i < 1000; i++ {
			share, err := a.Next(5, 4)
			require.NoError(t, err)
			assert.LessOrEqual(t, share, int64(2))
		}
	})

	t.Run("should be reproducible for a fixed seed", func(t *testing.T) {
		first, err := New(rand.NewPCG(11, 12)).Split(10000, 10)
		require.NoError(t, err)
		second, err := New(rand.NewPCG(11, 12)).Split(10000, 10)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
