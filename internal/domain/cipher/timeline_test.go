package cipher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCipherToTimeline(t *testing.T) {
	t.Run("should produce no events for an empty cipher", func(t *testing.T) {
		tl := CipherToTimeline("")

		assert.Empty(t, tl.Events)
		assert.NotNil(t, tl.Events)
		assert.Equal(t, 0, tl.TotalDuration)
	})

	t.Run("should place a word gap between tokens only", func(t *testing.T) {
		tl := CipherToTimeline(". / -")

		assert.Equal(t, []ToneEvent{
			{Type: ToneEventType, Start: 0, Duration: DotDuration},
			{Type: ToneEventType, Start: 1600, Duration: DashDuration},
		}, tl.Events)
		assert.Equal(t, 2200, tl.TotalDuration)
		assert.Equal(t, ". / -", tl.MorseString)
	})

	t.Run("should place symbol and letter gaps inside a token", func(t *testing.T) {
		tl := CipherToTimeline(".- ..")

		starts := make([]int, 0, len(tl.Events))
		for _, e := range tl.Events {
			starts = append(starts, e.Start)
		}
		assert.Equal(t, []int{0, 400, 1600, 2000}, starts)
		assert.Equal(t, 2200, tl.TotalDuration)
		assert.Equal(t, 2200*time.Millisecond, tl.Total())
	})

	t.Run("should end on the last tone", func(t *testing.T) {
		tl := CipherToTimeline("-- .- / .--- ..")

		last := tl.Events[len(tl.Events)-1]
		assert.Equal(t, tl.TotalDuration, last.Start+last.Duration)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		code := "-. .. .- -. / -.. .-"
		assert.Equal(t, CipherToTimeline(code), CipherToTimeline(code))
	})

	t.Run("should keep events ordered and non-overlapping", func(t *testing.T) {
		tl := CipherToTimeline(PhoneticToCipher([]string{"ma", "nian", "da", "ji"}))

		for i := 1; i < len(tl.Events); i++ {
			prev := tl.Events[i-1]
			assert.GreaterOrEqual(t, tl.Events[i].Start, prev.Start+prev.Duration+SymbolGap)
		}
	})
}
