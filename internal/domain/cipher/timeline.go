package cipher

import (
	"strings"
	"time"
)

// Tone and gap lengths in milliseconds
const (
	DotDuration  = 200
	DashDuration = 600
	SymbolGap    = 200
	LetterGap    = 600
	TokenGap     = 1400
)

// ToneEventType is the only event type emitted today
const ToneEventType = "tone"

// ToneEvent is a single tone placed on the timeline
type ToneEvent struct {
	Type     string `json:"type"`
	Start    int    `json:"start"`    // ms from the beginning of playback
	Duration int    `json:"duration"` // ms
}

// Offset returns the event start as a time.Duration
func (e ToneEvent) Offset() time.Duration {
	return time.Duration(e.Start) * time.Millisecond
}

// Length returns the event duration as a time.Duration
func (e ToneEvent) Length() time.Duration {
	return time.Duration(e.Duration) * time.Millisecond
}

// Timeline is the absolute schedule of a cipher's tones
type Timeline struct {
	Events        []ToneEvent `json:"events"`
	TotalDuration int         `json:"totalDuration"` // ms
	MorseString   string      `json:"morseString"`
}

// Total returns the timeline length as a time.Duration
func (t Timeline) Total() time.Duration {
	return time.Duration(t.TotalDuration) * time.Millisecond
}

// CipherToTimeline lays a cipher out on a millisecond clock. Gaps are only
// inserted between symbols, letters and tokens, never after the last one, so
// TotalDuration ends with the final tone. Characters other than '.' and '-'
// emit no tone. The result only depends on the input.
func CipherToTimeline(cipher string) Timeline {
	events := make([]ToneEvent, 0, len(cipher))
	clock := 0

	words := strings.Split(cipher, TokenSeparator)
	for wi, word := range words {
		letters := strings.Split(strings.TrimSpace(word), LetterSeparator)

		for li, letter := range letters {
			for si := 0; si < len(letter); si++ {
				switch letter[si] {
				case '.':
					events = append(events, ToneEvent{Type: ToneEventType, Start: clock, Duration: DotDuration})
					clock += DotDuration
				case '-':
					events = append(events, ToneEvent{Type: ToneEventType, Start: clock, Duration: DashDuration})
					clock += DashDuration
				}

				if si < len(letter)-1 {
					clock += SymbolGap
				}
			}

			if li < len(letters)-1 {
				clock += LetterGap
			}
		}

		if wi < len(words)-1 {
			clock += TokenGap
		}
	}

	return Timeline{
		Events:        events,
		TotalDuration: clock,
		MorseString:   cipher,
	}
}
