// Package excerpt picks literary passages and extracts envelope passwords from them.
package excerpt

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/cipher"
)

// DefaultPasswordLength is the number of characters drawn for a password
const DefaultPasswordLength = 4

// Excerpt is one passage from a book
type Excerpt struct {
	BookName string
	Author   string
	Text     string
}

// Book describes a corpus entry without its passages
type Book struct {
	Name         string
	Author       string
	ExcerptCount int
}

// Provider supplies passages from a fixed corpus
type Provider interface {
	// Random returns a uniformly chosen book and then a uniformly chosen passage of it.
	// Possible errors:
	//   - ErrEmptyCorpus: no book has any passage
	Random(ctx context.Context) (Excerpt, error)
	// ByBook returns a random passage of the named book.
	// Possible errors:
	//   - ErrBookNotFound: no book with that name
	ByBook(ctx context.Context, name string) (Excerpt, error)
	// Books lists the corpus in load order
	Books() []Book
}

// Selection is the password drawn from a passage
type Selection struct {
	Chars     string
	Positions []int // rune offsets into the passage, ascending
}

// IsPasswordRune reports whether r may appear in a password (CJK U+4E00..U+9FA5)
func IsPasswordRune(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

// Extractor draws passwords from passages. It is safe for concurrent use.
type Extractor struct {
	translit cipher.Transliterator

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExtractor creates an extractor. A nil source seeds from the runtime.
func NewExtractor(translit cipher.Transliterator, src rand.Source) *Extractor {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Extractor{translit: translit, rng: rand.New(src)}
}

type candidate struct {
	char     rune
	position int
	phonetic string
}

// Extract picks up to count password characters from text, preferring
// characters whose readings differ so the cipher stays distinguishable.
// Characters the transliterator cannot read are never picked.
// Characters are returned in passage order. With fewer eligible characters
// than count, all of them are returned.
func (x *Extractor) Extract(text string, count int) Selection {
	if count <= 0 {
		count = DefaultPasswordLength
	}

	var candidates []candidate
	position := 0
	for _, r := range text {
		if IsPasswordRune(r) {
			// a character without a reading would leave a hole in the cipher
			if phonetic, ok := x.translit.Phonetic(r); ok && phonetic != "" {
				candidates = append(candidates, candidate{char: r, position: position, phonetic: phonetic})
			}
		}
		position++
	}

	if len(candidates) < count {
		count = len(candidates)
	}

	x.mu.Lock()
	x.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	x.mu.Unlock()

	selected := make([]candidate, 0, count)
	taken := make([]bool, len(candidates))
	used := make(map[string]struct{}, count)

	for i, c := range candidates {
		if len(selected) >= count {
			break
		}
		if _, seen := used[c.phonetic]; seen {
			continue
		}
		used[c.phonetic] = struct{}{}
		taken[i] = true
		selected = append(selected, c)
	}

	for i, c := range candidates {
		if len(selected) >= count {
			break
		}
		if !taken[i] {
			taken[i] = true
			selected = append(selected, c)
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].position < selected[j].position })

	chars := make([]rune, 0, len(selected))
	positions := make([]int, 0, len(selected))
	for _, c := range selected {
		chars = append(chars, c.char)
		positions = append(positions, c.position)
	}

	return Selection{Chars: string(chars), Positions: positions}
}
