package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
	coreport "github.com/amirhossein-jamali/cipher-envelope/internal/domain/port/core"
)

// ProgressInterval is how often Play reports progress
const ProgressInterval = 50 * time.Millisecond

// ErrStopped is returned by a Play that was interrupted by Stop or a newer Play
var ErrStopped = errors.New("playback stopped")

// ProgressFunc receives the played fraction in [0, 1]
type ProgressFunc func(fraction float64)

// Player schedules a timeline's tones on a sink. One playback runs at a time.
type Player struct {
	sink   Sink
	tone   Tone
	logger coreport.Logger

	mu      sync.Mutex
	current *session
}

// session is one playback. mu guards stopped so that no tone fires once it is set.
type session struct {
	mu      sync.Mutex
	stopped bool
	timers  []*time.Timer
	halt    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (s *session) stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		for _, t := range s.timers {
			t.Stop()
		}
		s.mu.Unlock()
		close(s.halt)
	})
}

// NewPlayer creates a player over sink
func NewPlayer(sink Sink, tone Tone, logger coreport.Logger) *Player {
	return &Player{sink: sink, tone: tone.withDefaults(), logger: logger}
}

// Play blocks until the timeline has played plus Grace, ctx ends, or Stop is called.
// onProgress may be nil. The sink is closed on every exit path.
func (p *Player) Play(ctx context.Context, timeline cipher.Timeline, onProgress ProgressFunc) error {
	s := &session{halt: make(chan struct{}), done: make(chan struct{})}

	p.mu.Lock()
	prev := p.current
	p.current = s
	p.mu.Unlock()

	if prev != nil {
		prev.stop()
		<-prev.done
	}
	defer close(s.done)

	if err := p.sink.Open(p.tone); err != nil {
		return fmt.Errorf("open audio sink: %w", err)
	}
	defer func() {
		if err := p.sink.Close(); err != nil {
			p.logger.Warn("Failed to close audio sink", coreport.ErrorFields(err, nil))
		}
	}()

	report := func(f float64) {
		if onProgress != nil {
			onProgress(f)
		}
	}

	s.mu.Lock()
	for _, ev := range timeline.Events {
		s.timers = append(s.timers, time.AfterFunc(ev.Offset(), func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if !s.stopped {
				p.sink.Emit(ev)
			}
		}))
	}
	s.mu.Unlock()

	total := timeline.Total()
	finish := time.NewTimer(total + Grace)
	defer finish.Stop()
	ticker := time.NewTicker(ProgressInterval)
	defer ticker.Stop()

	start := time.Now()
	report(0)

	for {
		select {
		case <-finish.C:
			s.stop()
			report(1)
			p.logger.Debug("Playback finished", map[string]any{
				"events":      len(timeline.Events),
				"duration_ms": timeline.TotalDuration,
			})
			return nil
		case <-ticker.C:
			if total <= 0 {
				report(1)
				continue
			}
			report(min(1, float64(time.Since(start))/float64(total)))
		case <-s.halt:
			return ErrStopped
		case <-ctx.Done():
			s.stop()
			return ctx.Err()
		}
	}
}

// Stop cancels the playback in progress, if any, and waits for it to release the sink
func (p *Player) Stop() {
	p.mu.Lock()
	s := p.current
	p.mu.Unlock()

	if s == nil {
		return
	}
	s.stop()
	<-s.done
}

// Dispose stops playback. The player may still be reused afterwards.
func (p *Player) Dispose() {
	p.Stop()
}
