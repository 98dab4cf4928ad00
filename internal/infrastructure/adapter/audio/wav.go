package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
)

const (
	wavBitDepth  = 16
	wavChannels  = 1
	wavFormatPCM = 1
	maxSample    = 1<<(wavBitDepth-1) - 1
)

// RenderSamples lays the timeline out as 16-bit PCM at sampleRate. Gaps are silence
// and the buffer ends with the last tone.
func RenderSamples(timeline cipher.Timeline, tone Tone, sampleRate int) []int {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	tone = tone.withDefaults()

	samples := make([]int, samplesFor(timeline.Total(), sampleRate))
	for _, ev := range timeline.Events {
		first := samplesFor(ev.Offset(), sampleRate)
		if first < len(samples) {
			copy(samples[first:], toneSamples(tone, ev.Length(), sampleRate))
		}
	}
	return samples
}

// toneSamples renders a single tone of the given length as 16-bit PCM
func toneSamples(tone Tone, length time.Duration, sampleRate int) []int {
	step := time.Second / time.Duration(sampleRate)
	out := make([]int, samplesFor(length, sampleRate))
	for i := range out {
		out[i] = int(math.Round(tone.sample(time.Duration(i)*step, length) * maxSample))
	}
	return out
}

func samplesFor(d time.Duration, sampleRate int) int {
	return int(d * time.Duration(sampleRate) / time.Second)
}

// RenderWAV writes the timeline as a mono 16-bit WAV file
func RenderWAV(w io.WriteSeeker, timeline cipher.Timeline, tone Tone, sampleRate int) error {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, wavChannels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: wavChannels, SampleRate: sampleRate},
		Data:           RenderSamples(timeline, tone, sampleRate),
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}
