// Package audio plays cipher timelines as timed tones and renders them to WAV.
package audio

import (
	"math"
	"time"
)

// Tone defaults
const (
	DefaultFrequency  = 700.0
	DefaultGain       = 0.5
	DefaultRamp       = 5 * time.Millisecond
	DefaultSampleRate = 44100

	// Grace is added after the last tone before playback reports completion
	Grace = 100 * time.Millisecond
)

// Tone describes the sine every event is rendered with
type Tone struct {
	Frequency float64
	Gain      float64
	Ramp      time.Duration // linear attack and release
}

// DefaultTone returns the 700 Hz tone at half gain with 5 ms ramps
func DefaultTone() Tone {
	return Tone{Frequency: DefaultFrequency, Gain: DefaultGain, Ramp: DefaultRamp}
}

func (t Tone) withDefaults() Tone {
	if t.Frequency <= 0 {
		t.Frequency = DefaultFrequency
	}
	if t.Gain <= 0 || t.Gain > 1 {
		t.Gain = DefaultGain
	}
	if t.Ramp < 0 {
		t.Ramp = 0
	}
	return t
}

// amplitude is the gain envelope at offset into a tone of the given length
func (t Tone) amplitude(offset, length time.Duration) float64 {
	if offset < 0 || offset >= length {
		return 0
	}
	ramp := t.Ramp
	if 2*ramp > length {
		ramp = length / 2
	}
	if ramp == 0 {
		return t.Gain
	}
	switch {
	case offset < ramp:
		return t.Gain * float64(offset) / float64(ramp)
	case offset > length-ramp:
		return t.Gain * float64(length-offset) / float64(ramp)
	}
	return t.Gain
}

// sample returns the signal in [-1, 1] at offset into a tone
func (t Tone) sample(offset, length time.Duration) float64 {
	return t.amplitude(offset, length) * math.Sin(2*math.Pi*t.Frequency*offset.Seconds())
}
