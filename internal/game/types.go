package game

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Player is the ephemeral identity attached to a connection on join. It is
// never persisted on its own; it lives in the session attachment and inside
// score records.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is mutated by point-appends while live (same round, same author) and
// cleared at round boundaries and on explicit clear.
type Stroke struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"playerId"`
	Points   []Point `json:"points"`
	Color    string  `json:"color"`
	Size     float64 `json:"size"`
	Eraser   bool    `json:"eraser,omitempty"`
}

// FillOperation is append-only per round, same lifecycle as strokes.
type FillOperation struct {
	ID        string  `json:"id"`
	PlayerID  string  `json:"playerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color"`
	Timestamp int64   `json:"timestamp"`
}

type ChatEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	SentAt   int64  `json:"sentAt"`
}

// palette assigned to players by join order, wrapping around.
var palette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c",
	"#fabebe", "#008080", "#9a6324", "#800000",
}

func paletteColor(joinIndex int) string {
	return palette[joinIndex%len(palette)]
}

// sanitizeName normalizes, trims and clamps a display name. Returns the
// cleaned name and false when nothing printable remains.
func sanitizeName(name string, maxRunes int) (string, bool) {
	name = norm.NFC.String(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return clampRunes(name, maxRunes), true
}

// sanitizeChat trims and clamps chat content. Content that is empty after
// trimming is rejected.
func sanitizeChat(content string, maxRunes int) (string, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", false
	}
	return clampRunes(content, maxRunes), true
}

func clampRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeForMatch lowercases, trims and removes accents so "Café" leaks the
// word "cafe". Used only for containment suppression, never for the correct
// guess check, which is plain case-insensitive equality.
func normalizeForMatch(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
