package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

type mapTransliterator map[rune]string

func (m mapTransliterator) Phonetic(r rune) (string, bool) {
	s, ok := m[r]
	return s, ok
}

var horseYear = mapTransliterator{'马': "ma", '年': "nian", '大': "da", '吉': "ji", '绿': "lv"}

func TestCodec_TextToPhonetic(t *testing.T) {
	codec := NewCodec(horseYear)

	t.Run("should emit one token per Han character", func(t *testing.T) {
		assert.Equal(t, []string{"ma", "nian", "da", "ji"}, codec.TextToPhonetic("马年大吉"))
	})

	t.Run("should skip punctuation, latin and digits", func(t *testing.T) {
		assert.Equal(t, []string{"ma", "ji"}, codec.TextToPhonetic("马，2026 ok 吉！"))
	})

	t.Run("should skip characters the transliterator cannot read", func(t *testing.T) {
		assert.Equal(t, []string{"ma"}, codec.TextToPhonetic("马龘"))
	})
}

func TestPhoneticToCipher(t *testing.T) {
	t.Run("should join letters with spaces and tokens with slashes", func(t *testing.T) {
		assert.Equal(t, "-- .- / .--- ..", PhoneticToCipher([]string{"ma", "ji"}))
	})

	t.Run("should encode digits", func(t *testing.T) {
		assert.Equal(t, "..--- -----", PhoneticToCipher([]string{"20"}))
	})

	t.Run("should drop unmapped characters and empty tokens", func(t *testing.T) {
		assert.Equal(t, ".-.. / -..", PhoneticToCipher([]string{"l!", "ü", "d"}))
	})

	t.Run("should return an empty string for no tokens", func(t *testing.T) {
		assert.Equal(t, "", PhoneticToCipher(nil))
	})
}

func TestCipherRoundTrip(t *testing.T) {
	codec := NewCodec(horseYear)

	testCases := []string{"马年大吉", "绿", "大", ""}
	for _, text := range testCases {
		t.Run(text, func(t *testing.T) {
			enc := codec.Encode(text)
			assert.Equal(t, enc.Phonetic, CipherToPhonetic(enc.Cipher))
		})
	}

	t.Run("should round trip every letter and digit", func(t *testing.T) {
		tokens := []string{"abcdefghijklm", "nopqrstuvwxyz", "0123456789"}
		assert.Equal(t, tokens, CipherToPhonetic(PhoneticToCipher(tokens)))
	})
}

func TestCipherToPhonetic(t *testing.T) {
	t.Run("should decode unknown codes to nothing", func(t *testing.T) {
		assert.Equal(t, []string{"a", ""}, CipherToPhonetic(".- ........ / ........"))
	})

	t.Run("should tolerate surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, []string{"e"}, CipherToPhonetic("  .  "))
	})
}

func TestValidateCipher(t *testing.T) {
	require.NoError(t, ValidateCipher("-- .- / .--- .."))
	assert.ErrorIs(t, ValidateCipher(""), errs.ErrInvalidCipher)
	assert.ErrorIs(t, ValidateCipher("-- x"), errs.ErrInvalidCipher)
}

func TestSymbolFor(t *testing.T) {
	code, ok := SymbolFor('S')
	assert.True(t, ok)
	assert.Equal(t, "...", code)

	_, ok = SymbolFor('ü')
	assert.False(t, ok)
}
