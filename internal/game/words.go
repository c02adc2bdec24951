package game

import (
	"bufio"
	"math/rand"
	"os"
	"strings"
)

// WordSource picks the secret word for a round. exclude holds the words
// already used this game.
type WordSource interface {
	Pick(exclude map[string]struct{}) string
}

type randomWords struct {
	words []string
	rng   *rand.Rand
}

// NewRandomWords builds a WordSource over a fixed vocabulary.
func NewRandomWords(words []string, rng *rand.Rand) WordSource {
	return &randomWords{words: words, rng: rng}
}

// Pick chooses a word not yet used this game. When the vocabulary is
// exhausted it falls back to unrestricted random choice.
func (rw *randomWords) Pick(exclude map[string]struct{}) string {
	if len(rw.words) == 0 {
		return ""
	}
	fresh := make([]string, 0, len(rw.words))
	for _, w := range rw.words {
		if _, used := exclude[w]; !used {
			fresh = append(fresh, w)
		}
	}
	if len(fresh) == 0 {
		return rw.words[rw.rng.Intn(len(rw.words))]
	}
	return fresh[rw.rng.Intn(len(fresh))]
}

// LoadWords reads a word list, one word per line, skipping blanks and
// comments.
func LoadWords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// DefaultWords is the fallback vocabulary when no words file is configured.
var DefaultWords = []string{
	"apple", "bridge", "castle", "dragon", "elephant", "forest",
	"guitar", "house", "island", "jungle", "kite", "lighthouse",
	"mountain", "needle", "ocean", "piano", "queen", "rocket",
	"sandwich", "train", "umbrella", "volcano", "window", "zebra",
}
