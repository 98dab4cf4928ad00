// Package corpus serves literary excerpts from a TOML corpus, embedded in the
// binary by default.
package corpus

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/unicode/norm"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/excerpt"
)

//go:embed corpus.toml
var embedded []byte

type document struct {
	Books []bookEntry `toml:"books"`
}

type bookEntry struct {
	Name     string   `toml:"name"`
	Author   string   `toml:"author"`
	Excerpts []string `toml:"excerpts"`
}

// Corpus implements excerpt.Provider. It is safe for concurrent use.
type Corpus struct {
	books []bookEntry

	mu  sync.Mutex
	rng *rand.Rand
}

var _ excerpt.Provider = (*Corpus)(nil)

// Default loads the embedded corpus
func Default(src rand.Source) (*Corpus, error) {
	return Load(embedded, src)
}

// LoadFile loads a corpus from a TOML file on disk
func LoadFile(path string, src rand.Source) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return Load(data, src)
}

// Load parses a TOML corpus. Text is NFC-normalized and blank passages are
// dropped; books left without passages are kept out of the draw.
func Load(data []byte, src rand.Source) (*Corpus, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}

	books := make([]bookEntry, 0, len(doc.Books))
	for _, b := range doc.Books {
		name := norm.NFC.String(strings.TrimSpace(b.Name))
		if name == "" {
			continue
		}
		entry := bookEntry{Name: name, Author: norm.NFC.String(strings.TrimSpace(b.Author))}
		for _, text := range b.Excerpts {
			text = norm.NFC.String(strings.TrimSpace(text))
			if text != "" {
				entry.Excerpts = append(entry.Excerpts, text)
			}
		}
		if len(entry.Excerpts) > 0 {
			books = append(books, entry)
		}
	}

	if len(books) == 0 {
		return nil, errs.ErrEmptyCorpus
	}

	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Corpus{books: books, rng: rand.New(src)}, nil
}

// Random picks a book uniformly, then one of its passages
func (c *Corpus) Random(ctx context.Context) (excerpt.Excerpt, error) {
	if err := ctx.Err(); err != nil {
		return excerpt.Excerpt{}, err
	}

	c.mu.Lock()
	book := c.books[c.rng.IntN(len(c.books))]
	text := book.Excerpts[c.rng.IntN(len(book.Excerpts))]
	c.mu.Unlock()

	return excerpt.Excerpt{BookName: book.Name, Author: book.Author, Text: text}, nil
}

// ByBook picks a random passage of the named book
func (c *Corpus) ByBook(ctx context.Context, name string) (excerpt.Excerpt, error) {
	if err := ctx.Err(); err != nil {
		return excerpt.Excerpt{}, err
	}

	name = norm.NFC.String(strings.TrimSpace(name))
	for _, book := range c.books {
		if book.Name != name {
			continue
		}
		c.mu.Lock()
		text := book.Excerpts[c.rng.IntN(len(book.Excerpts))]
		c.mu.Unlock()
		return excerpt.Excerpt{BookName: book.Name, Author: book.Author, Text: text}, nil
	}

	return excerpt.Excerpt{}, fmt.Errorf("%w: %s", errs.ErrBookNotFound, name)
}

// Books lists the corpus in file order
func (c *Corpus) Books() []excerpt.Book {
	out := make([]excerpt.Book, len(c.books))
	for i, b := range c.books {
		out[i] = excerpt.Book{Name: b.Name, Author: b.Author, ExcerptCount: len(b.Excerpts)}
	}
	return out
}
