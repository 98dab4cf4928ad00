package audio

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
)

// Sink outputs tones. Open and Close bracket one playback; Emit must not block.
type Sink interface {
	Open(tone Tone) error
	Emit(event cipher.ToneEvent)
	Close() error
}

// TerminalSink prints each tone as a colored Morse symbol
type TerminalSink struct {
	out  io.Writer
	dot  *color.Color
	dash *color.Color
	mu   sync.Mutex
}

var _ Sink = (*TerminalSink)(nil)

// NewTerminalSink writes to out
func NewTerminalSink(out io.Writer) *TerminalSink {
	return &TerminalSink{
		out:  out,
		dot:  color.New(color.FgHiYellow, color.Bold),
		dash: color.New(color.FgHiRed, color.Bold),
	}
}

func (s *TerminalSink) Open(Tone) error { return nil }

func (s *TerminalSink) Emit(event cipher.ToneEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Duration <= cipher.DotDuration {
		s.dot.Fprint(s.out, "·")
		return
	}
	s.dash.Fprint(s.out, "—")
}

func (s *TerminalSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.out, "\n")
	return err
}

// Emission is one tone seen by a RecorderSink
type Emission struct {
	Event cipher.ToneEvent
	At    time.Duration // since Open
}

// RecorderSink keeps every emitted tone in memory
type RecorderSink struct {
	mu        sync.Mutex
	opened    time.Time
	emissions []Emission
	opens     int
	closes    int
}

var _ Sink = (*RecorderSink)(nil)

// NewRecorderSink creates an empty recorder
func NewRecorderSink() *RecorderSink {
	return &RecorderSink{}
}

func (r *RecorderSink) Open(Tone) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opens++
	r.opened = time.Now()
	return nil
}

func (r *RecorderSink) Emit(event cipher.ToneEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emissions = append(r.emissions, Emission{Event: event, At: time.Since(r.opened)})
}

func (r *RecorderSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}

// Emissions returns a copy of what was emitted so far
func (r *RecorderSink) Emissions() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emission(nil), r.emissions...)
}

// Balanced reports whether every Open was matched by a Close
func (r *RecorderSink) Balanced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens == r.closes
}

// MultiSink fans every tone out to several sinks
type MultiSink []Sink

var _ Sink = MultiSink(nil)

// Open opens every sink, closing the ones already opened if one fails
func (m MultiSink) Open(tone Tone) error {
	for i, s := range m {
		if err := s.Open(tone); err != nil {
			for _, opened := range m[:i] {
				_ = opened.Close()
			}
			return err
		}
	}
	return nil
}

func (m MultiSink) Emit(event cipher.ToneEvent) {
	for _, s := range m {
		s.Emit(event)
	}
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
