package game

import (
	"math"
	"time"
)

// GuessScore computes a guesser's time-decayed score. A guess at the deadline
// earns exactly base; a guess with the full round remaining earns
// round(base*1.5). Expired or negative remaining time clamps to base.
func GuessScore(base int, roundEnd, now time.Time, roundDuration time.Duration) int {
	if roundDuration <= 0 {
		return base
	}
	frac := float64(roundEnd.Sub(now)) / float64(roundDuration)
	frac = math.Min(1, math.Max(0, frac))
	return int(math.Round(float64(base) * (1 + frac*0.5)))
}

// DrawerBonus is the drawer's payout when the round ends.
func DrawerBonus(bonusPerGuesser, correctGuessers int) int {
	return bonusPerGuesser * correctGuessers
}

// ComputeWinners returns every player holding the top score. Ties produce
// multiple winners; an empty score map produces none.
func ComputeWinners(scores map[string]ScoreEntry) []string {
	best := 0
	first := true
	for _, e := range scores {
		if first || e.Score > best {
			best = e.Score
			first = false
		}
	}
	if first {
		return nil
	}
	winners := make([]string, 0, 1)
	for id, e := range scores {
		if e.Score == best {
			winners = append(winners, id)
		}
	}
	return winners
}
