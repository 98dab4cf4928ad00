package envelope

import (
	"context"
	"fmt"
	"sync"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// DefaultStripes is the number of workers used when none is configured
const DefaultStripes = 16

const stripeBuffer = 100

// Serializer runs jobs one at a time per key. Keys are hashed onto a fixed
// set of stripes, each drained by a single worker goroutine, so jobs for the
// same envelope never overlap while different envelopes mostly run in parallel.
type Serializer struct {
	logger  coreport.Logger
	stripes []chan *job
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

type job struct {
	ctx    context.Context
	key    uint64
	fn     func(ctx context.Context) error
	result chan error
}

// NewSerializer starts one worker per stripe
func NewSerializer(stripes int, logger coreport.Logger) *Serializer {
	if stripes <= 0 {
		stripes = DefaultStripes
	}

	s := &Serializer{
		logger:  logger,
		stripes: make([]chan *job, stripes),
	}
	for i := range s.stripes {
		queue := make(chan *job, stripeBuffer)
		s.stripes[i] = queue
		s.wg.Add(1)
		go s.work(i, queue)
	}

	logger.Debug("Envelope serializer started", map[string]any{"stripes": stripes})
	return s
}

// Do runs fn on the stripe owning key and waits for its result. A job whose
// context is done before it starts is skipped.
func (s *Serializer) Do(ctx context.Context, key uint64, fn func(ctx context.Context) error) error {
	j := &job{ctx: ctx, key: key, fn: fn, result: make(chan error, 1)}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("%w: serializer stopped", errs.ErrInternalServer)
	}
	queue := s.stripes[key%uint64(len(s.stripes))]
	select {
	case queue <- j:
		s.mu.RUnlock()
	case <-ctx.Done():
		s.mu.RUnlock()
		s.logger.Warn("Context canceled while enqueueing envelope job", map[string]any{
			"envelope_id": key,
			"error":       ctx.Err().Error(),
		})
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		s.logger.Warn("Context canceled while waiting for envelope job", map[string]any{
			"envelope_id": key,
			"error":       ctx.Err().Error(),
		})
		return ctx.Err()
	}
}

func (s *Serializer) work(stripe int, queue chan *job) {
	defer s.wg.Done()

	for j := range queue {
		if err := j.ctx.Err(); err != nil {
			j.result <- err
			continue
		}
		j.result <- s.run(j)
	}

	s.logger.Debug("Envelope serializer stripe stopped", map[string]any{"stripe": stripe})
}

func (s *Serializer) run(j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Envelope job panicked", map[string]any{
				"envelope_id": j.key,
				"panic":       fmt.Sprint(r),
			})
			err = fmt.Errorf("%w: %v", errs.ErrInternalServer, r)
		}
	}()
	return j.fn(j.ctx)
}

// Shutdown stops accepting jobs, lets queued jobs finish and waits for the workers
func (s *Serializer) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, queue := range s.stripes {
		close(queue)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("Envelope serializer shut down", nil)
}
