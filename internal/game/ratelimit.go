package game

import "time"

// RateLimitState is a sliding window of accepted action timestamps for one
// player and one bucket. It lives only in memory; pruning happens lazily on
// each check.
type RateLimitState struct {
	Timestamps []time.Time
}

// CheckRateLimit drops timestamps older than window, then either rejects
// (already at max inside the window) or accepts and records now. The returned
// state replaces the caller's copy either way.
func CheckRateLimit(state RateLimitState, max int, window time.Duration, now time.Time) (RateLimitState, bool) {
	cutoff := now.Add(-window)
	kept := state.Timestamps[:0]
	for _, ts := range state.Timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	state.Timestamps = kept

	if len(state.Timestamps) >= max {
		return state, false
	}
	state.Timestamps = append(state.Timestamps, now)
	return state, true
}

// rateBuckets are the three independent windows each player gets: chat and
// stroke-start share the message bucket, stroke/fill creation the stroke
// bucket, and high-frequency point appends the stroke-update bucket.
type rateBuckets struct {
	message      RateLimitState
	stroke       RateLimitState
	strokeUpdate RateLimitState
}
