// Package allocator splits an envelope's pot into random shares using the
// two-times-average method: each draw is bounded by twice the average of
// what is left, and every later share is guaranteed at least one cent.
package allocator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

// Allocator draws shares. It is safe for concurrent use.
type Allocator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates an allocator. A nil source seeds from the runtime.
func New(src rand.Source) *Allocator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Allocator{rng: rand.New(src)}
}

// Next returns the share for the next claimant given the remaining pot and
// the number of shares still open, both in cents. The last share takes the
// exact remainder.
func (a *Allocator) Next(remaining int64, remainingCount int) (int64, error) {
	if remainingCount < 1 {
		return 0, fmt.Errorf("%w: no shares left", errs.ErrInvalidShareCount)
	}

	if remaining < int64(remainingCount)*entity.MinShareInCents {
		return 0, fmt.Errorf("%w: %d cents cannot cover %d shares",
			errs.ErrAmountBelowMinimum, remaining, remainingCount)
	}

	if remainingCount == 1 {
		return remaining, nil
	}

	upper := math.Max(float64(entity.MinShareInCents), 2*float64(remaining)/float64(remainingCount))
	reserved := float64(int64(remainingCount-1) * entity.MinShareInCents)

	// 1 - Float64() lies in (0, 1], so the draw covers (0, upper]
	a.mu.Lock()
	draw := (1 - a.rng.Float64()) * upper
	a.mu.Unlock()

	draw = math.Max(float64(entity.MinShareInCents), draw)
	draw = math.Min(draw, float64(remaining)-reserved)

	return int64(math.Round(draw)), nil
}

// Split divides total cents into n shares in draw order
func (a *Allocator) Split(total int64, n int) ([]int64, error) {
	if n < entity.MinShares {
		return nil, fmt.Errorf("%w: need at least one share", errs.ErrInvalidShareCount)
	}

	shares := make([]int64, 0, n)
	remaining := total
	for i := 0; i < n; i++ {
		share, err := a.Next(remaining, n-i)
		if err != nil {
			return nil, err
		}
		shares = append(shares, share)
		remaining -= share
	}

	return shares, nil
}
