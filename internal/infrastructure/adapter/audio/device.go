package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
)

// ErrNoDevice is returned when the sound card cannot be opened
var ErrNoDevice = errors.New("audio device unavailable")

// voice is one tone handed to the backend
type voice interface {
	Play()
	Close() error
}

// backend starts a voice for mono 16-bit little-endian PCM
type backend func(pcm io.Reader) voice

// oto allows a single context per process; its sample rate is fixed by the first caller
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	otoRate int
)

func otoBackend(sampleRate int) (backend, int, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: wavChannels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("%w: %v", ErrNoDevice, err)
			return
		}
		<-ready
		otoCtx, otoRate = ctx, sampleRate
	})
	if otoErr != nil {
		return nil, 0, otoErr
	}
	return func(pcm io.Reader) voice { return otoCtx.NewPlayer(pcm) }, otoRate, nil
}

// DeviceSink plays each event on the sound card as a ramped sine
type DeviceSink struct {
	start      backend
	sampleRate int

	mu     sync.Mutex
	tone   Tone
	voices []voice
}

var _ Sink = (*DeviceSink)(nil)

// NewDeviceSink opens the default output device. It fails with ErrNoDevice on
// machines without one, and callers fall back to a TerminalSink.
func NewDeviceSink(sampleRate int) (*DeviceSink, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	start, rate, err := otoBackend(sampleRate)
	if err != nil {
		return nil, err
	}
	return newDeviceSink(start, rate), nil
}

func newDeviceSink(start backend, sampleRate int) *DeviceSink {
	return &DeviceSink{start: start, sampleRate: sampleRate, tone: DefaultTone()}
}

func (s *DeviceSink) Open(tone Tone) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tone = tone.withDefaults()
	return nil
}

// Emit starts the tone and returns; the backend mixes overlapping voices
func (s *DeviceSink) Emit(event cipher.ToneEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.start(bytes.NewReader(pcm16(toneSamples(s.tone, event.Length(), s.sampleRate))))
	v.Play()
	s.voices = append(s.voices, v)
}

// Close silences every voice of the playback and releases them
func (s *DeviceSink) Close() error {
	s.mu.Lock()
	voices := s.voices
	s.voices = nil
	s.mu.Unlock()

	var errs []error
	for _, v := range voices {
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func pcm16(samples []int) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(s)))
	}
	return out
}
