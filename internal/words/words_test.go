package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"Ocean ", "ocean", nil},
		{"  BOOK", "book", nil},
		{"", "", ErrEmpty},
		{"   ", "", ErrEmpty},
		{"sea-side", "", ErrNotAlpha},
		{"two words", "", ErrNotAlpha},
		{"café", "", ErrNotAlpha},
		{"b00k", "", ErrNotAlpha},
		{"\u212Aite", "", ErrNotAlpha},
		{"ſea", "", ErrNotAlpha},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSharedLetters(t *testing.T) {
	assert.Equal(t, 5, SharedLetters("ocean", "canoe"))
	assert.Equal(t, 0, SharedLetters("book", "sea"))
	assert.Equal(t, 1, SharedLetters("aaaa", "a"), "repeated letters count once")
	assert.Equal(t, 4, SharedLetters("story", "stray"))
	assert.Equal(t, SharedLetters("listen", "silent"), SharedLetters("silent", "listen"))
}

func TestTokensAndContainsToken(t *testing.T) {
	def := "A large body of salt water; the sea."
	assert.Equal(t, []string{"a", "large", "body", "of", "salt", "water", "the", "sea"}, Tokens(def))
	assert.True(t, ContainsToken(def, "sea"))
	assert.False(t, ContainsToken("the season of storms", "sea"), "substrings do not count")
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Ocean", " ocean "))
	assert.False(t, Equal("ocean", "sea"))
}

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]string{"# comment", "", "Ocean book 4", "fire ice 3"})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	p, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, Puzzle{Index: 0, Start: "ocean", End: "book", MinSteps: 4}, p)
	p, _ = c.At(1)
	assert.Equal(t, 1, p.Index)

	_, ok = c.At(2)
	assert.False(t, ok)
}

func TestParseCatalog_Errors(t *testing.T) {
	for _, lines := range [][]string{
		{},
		{"ocean book"},
		{"ocean ocean 3"},
		{"ocean book x"},
		{"ocean book 1"},
		{"oc3an book 3"},
	} {
		_, err := ParseCatalog(lines)
		assert.Error(t, err, "lines %v", lines)
	}
}

func TestLoadCatalog_EmbeddedDefault(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	p, ok := c.At(0)
	require.True(t, ok)
	assert.Equal(t, "ocean", p.Start)
	assert.Equal(t, "book", p.End)
	assert.Equal(t, 4, p.MinSteps)
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puzzles.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat dog 3\n"), 0o644))
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
