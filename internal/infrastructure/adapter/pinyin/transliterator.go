// Package pinyin adapts github.com/mozillazg/go-pinyin to the cipher
// package's Transliterator port.
package pinyin

import (
	"strings"

	gopinyin "github.com/mozillazg/go-pinyin"
)

// Transliterator returns tone-less lowercase pinyin for Han characters
type Transliterator struct {
	args gopinyin.Args
}

// NewTransliterator builds a Transliterator using the library's normal style
func NewTransliterator() *Transliterator {
	args := gopinyin.NewArgs()
	args.Style = gopinyin.Normal
	args.Heteronym = false
	args.Fallback = func(rune, gopinyin.Args) []string { return nil }
	return &Transliterator{args: args}
}

// Phonetic returns the first reading of r. Characters without a reading
// report false.
func (t *Transliterator) Phonetic(r rune) (string, bool) {
	readings := gopinyin.SinglePinyin(r, t.args)
	if len(readings) == 0 || readings[0] == "" {
		return "", false
	}
	token := strings.ToLower(readings[0])
	token = strings.ReplaceAll(token, "ü", "v")
	return token, true
}
