// Package cipher turns passwords into the Morse form players listen to.
//
// A password is first transliterated into one tone-less phonetic token per
// Han character, then each token is spelled out in International Morse code.
// Letters inside a token are separated by a single space and tokens by " / ".
package cipher

import (
	"fmt"
	"strings"
	"unicode"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

// Separators used in cipher strings
const (
	LetterSeparator = " "
	TokenSeparator  = " / "
)

var morseTable = map[rune]string{
	'a': ".-", 'b': "-...", 'c': "-.-.", 'd': "-..",
	'e': ".", 'f': "..-.", 'g': "--.", 'h': "....",
	'i': "..", 'j': ".---", 'k': "-.-", 'l': ".-..",
	'm': "--", 'n': "-.", 'o': "---", 'p': ".--.",
	'q': "--.-", 'r': ".-.", 's': "...", 't': "-",
	'u': "..-", 'v': "...-", 'w': ".--", 'x': "-..-",
	'y': "-.--", 'z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--",
	'4': "....-", '5': ".....", '6': "-....", '7': "--...",
	'8': "---..", '9': "----.",
}

var reverseTable = func() map[string]rune {
	m := make(map[string]rune, len(morseTable))
	for r, code := range morseTable {
		m[code] = r
	}
	return m
}()

// Transliterator maps a single character to its lowercase tone-less phonetic token
type Transliterator interface {
	Phonetic(r rune) (string, bool)
}

// Codec encodes text into phonetic tokens and Morse ciphers
type Codec struct {
	translit Transliterator
}

// NewCodec creates a codec backed by the given transliterator
func NewCodec(translit Transliterator) *Codec {
	return &Codec{translit: translit}
}

// Encoding is the full cipher form of a password
type Encoding struct {
	Phonetic []string
	Cipher   string
	Timeline Timeline
}

// TextToPhonetic returns one token per Han character of text. Other characters,
// and Han characters the transliterator cannot read, are skipped.
func (c *Codec) TextToPhonetic(text string) []string {
	tokens := make([]string, 0, len(text)/3)
	for _, r := range text {
		if !unicode.Is(unicode.Han, r) {
			continue
		}
		token, ok := c.translit.Phonetic(r)
		if !ok || token == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(token))
	}
	return tokens
}

// Encode runs the whole pipeline for text
func (c *Codec) Encode(text string) Encoding {
	phonetic := c.TextToPhonetic(text)
	code := PhoneticToCipher(phonetic)
	return Encoding{
		Phonetic: phonetic,
		Cipher:   code,
		Timeline: CipherToTimeline(code),
	}
}

// SymbolFor returns the Morse code of a single letter or digit
func SymbolFor(r rune) (string, bool) {
	code, ok := morseTable[unicode.ToLower(r)]
	return code, ok
}

// PhoneticToCipher spells tokens in Morse. Characters outside a-z and 0-9 are
// dropped, and a token left with no letters is dropped entirely.
func PhoneticToCipher(tokens []string) string {
	groups := make([]string, 0, len(tokens))
	for _, token := range tokens {
		letters := make([]string, 0, len(token))
		for _, r := range token {
			if code, ok := SymbolFor(r); ok {
				letters = append(letters, code)
			}
		}
		if len(letters) == 0 {
			continue
		}
		groups = append(groups, strings.Join(letters, LetterSeparator))
	}
	return strings.Join(groups, TokenSeparator)
}

// CipherToPhonetic decodes a cipher back into tokens. Unknown codes decode to
// nothing, so a token made only of unknown codes comes back empty.
func CipherToPhonetic(cipher string) []string {
	cipher = strings.TrimSpace(cipher)
	if cipher == "" {
		return []string{}
	}

	words := strings.Split(cipher, TokenSeparator)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		var b strings.Builder
		for _, code := range strings.Split(strings.TrimSpace(word), LetterSeparator) {
			if r, ok := reverseTable[code]; ok {
				b.WriteRune(r)
			}
		}
		tokens = append(tokens, b.String())
	}
	return tokens
}

// ValidateCipher reports whether s only contains dots, dashes, spaces and slashes
func ValidateCipher(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: empty cipher", errs.ErrInvalidCipher)
	}
	for i, r := range s {
		switch r {
		case '.', '-', ' ', '/':
		default:
			return fmt.Errorf("%w: unexpected %q at byte %d", errs.ErrInvalidCipher, r, i)
		}
	}
	return nil
}
