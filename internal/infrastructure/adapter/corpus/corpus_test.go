package corpus

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

func TestDefault(t *testing.T) {
	t.Run("should load every embedded book", func(t *testing.T) {
		c, err := Default(rand.NewPCG(1, 2))
		require.NoError(t, err)

		books := c.Books()
		require.Len(t, books, 6)
		assert.Equal(t, "红楼梦", books[0].Name)
		assert.Equal(t, "曹雪芹", books[0].Author)
		for _, b := range books {
			assert.Positive(t, b.ExcerptCount, b.Name)
		}
	})

	t.Run("should draw passages from known books", func(t *testing.T) {
		c, err := Default(rand.NewPCG(7, 7))
		require.NoError(t, err)

		known := map[string]bool{}
		for _, b := range c.Books() {
			known[b.Name] = true
		}

		for i := 0; i < 50; i++ {
			ex, err := c.Random(context.Background())
			require.NoError(t, err)
			assert.True(t, known[ex.BookName])
			assert.NotEmpty(t, ex.Text)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("should reject malformed toml", func(t *testing.T) {
		_, err := Load([]byte("[[books]\nname="), nil)
		assert.Error(t, err)
	})

	t.Run("should report an empty corpus", func(t *testing.T) {
		data := []byte("[[books]]\nname = \"空\"\nauthor = \"无名\"\nexcerpts = [\"  \"]\n")

		_, err := Load(data, nil)

		assert.ErrorIs(t, err, errs.ErrEmptyCorpus)
	})

	t.Run("should normalize text to NFC", func(t *testing.T) {
		data := []byte("[[books]]\nname = \"Cafe\\u0301\"\nauthor = \"x\"\nexcerpts = [\"e\\u0301\"]\n")

		c, err := Load(data, rand.NewPCG(1, 1))
		require.NoError(t, err)

		ex, err := c.ByBook(context.Background(), "Café")
		require.NoError(t, err)
		assert.Equal(t, "é", ex.Text)
	})
}

func TestByBook(t *testing.T) {
	c, err := Default(rand.NewPCG(3, 4))
	require.NoError(t, err)

	t.Run("should return a passage of the named book", func(t *testing.T) {
		ex, err := c.ByBook(context.Background(), "论语")
		require.NoError(t, err)
		assert.Equal(t, "论语", ex.BookName)
	})

	t.Run("should report unknown books", func(t *testing.T) {
		_, err := c.ByBook(context.Background(), "不存在")
		assert.ErrorIs(t, err, errs.ErrBookNotFound)
	})

	t.Run("should honour a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Random(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[books]]\nname = \"诗经\"\nauthor = \"佚名\"\nexcerpts = [\"关关雎鸠，在河之洲。\"]\n"), 0o600))

	c, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "诗经", c.Books()[0].Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"), nil)
	assert.Error(t, err)
}
