package game

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomWords_PickExcludesUsed(t *testing.T) {
	t.Parallel()
	rw := NewRandomWords([]string{"alpha", "beta", "gamma"}, rand.New(rand.NewSource(1)))
	used := map[string]struct{}{"alpha": {}, "gamma": {}}

	for i := 0; i < 20; i++ {
		assert.Equal(t, "beta", rw.Pick(used))
	}
}

func TestRandomWords_ExhaustedFallsBack(t *testing.T) {
	t.Parallel()
	rw := NewRandomWords([]string{"alpha", "beta"}, rand.New(rand.NewSource(1)))
	used := map[string]struct{}{"alpha": {}, "beta": {}}

	got := rw.Pick(used)
	assert.Contains(t, []string{"alpha", "beta"}, got, "an exhausted vocabulary repeats rather than stalls")
}

func TestRandomWords_EmptyVocabulary(t *testing.T) {
	t.Parallel()
	rw := NewRandomWords(nil, rand.New(rand.NewSource(1)))
	assert.Equal(t, "", rw.Pick(nil))
}

func TestLoadWords(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "apple\n\n# a comment\n  bridge  \ncastle\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	words, err := LoadWords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "bridge", "castle"}, words)
}

func TestLoadWords_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadWords(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
