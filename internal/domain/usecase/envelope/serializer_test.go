package envelope

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coremocks "github.com/amirhossein-jamali/cipher-envelope/mocks/port/core"
)

func TestSerializer_Do(t *testing.T) {
	t.Run("should run jobs for one key one at a time", func(t *testing.T) {
		s := NewSerializer(4, coremocks.NewPermissiveLogger())
		defer s.Shutdown()

		var running, maxRunning int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Do(context.Background(), 7, func(ctx context.Context) error {
					now := atomic.AddInt32(&running, 1)
					for {
						seen := atomic.LoadInt32(&maxRunning)
						if now <= seen || atomic.CompareAndSwapInt32(&maxRunning, seen, now) {
							break
						}
					}
					time.Sleep(time.Millisecond)
					atomic.AddInt32(&running, -1)
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), maxRunning)
	})

	t.Run("should return the job error", func(t *testing.T) {
		s := NewSerializer(2, coremocks.NewPermissiveLogger())
		defer s.Shutdown()

		boom := errors.New("boom")
		err := s.Do(context.Background(), 1, func(ctx context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
	})

	t.Run("should turn a panic into an internal error", func(t *testing.T) {
		s := NewSerializer(2, coremocks.NewPermissiveLogger())
		defer s.Shutdown()

		err := s.Do(context.Background(), 1, func(ctx context.Context) error { panic("bad share") })

		assert.ErrorIs(t, err, errs.ErrInternalServer)

		// the stripe keeps working afterwards
		require.NoError(t, s.Do(context.Background(), 1, func(ctx context.Context) error { return nil }))
	})

	t.Run("should not run a job whose context is already done", func(t *testing.T) {
		s := NewSerializer(1, coremocks.NewPermissiveLogger())
		defer s.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ran := false
		err := s.Do(ctx, 3, func(ctx context.Context) error {
			ran = true
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran)
	})

	t.Run("should reject work after shutdown", func(t *testing.T) {
		s := NewSerializer(1, coremocks.NewPermissiveLogger())
		s.Shutdown()
		s.Shutdown()

		err := s.Do(context.Background(), 1, func(ctx context.Context) error { return nil })

		assert.ErrorIs(t, err, errs.ErrInternalServer)
	})

	t.Run("should default the stripe count", func(t *testing.T) {
		s := NewSerializer(0, coremocks.NewPermissiveLogger())
		defer s.Shutdown()

		assert.Len(t, s.stripes, DefaultStripes)
	})
}
