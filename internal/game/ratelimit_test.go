package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckRateLimit_AcceptsUpToMax(t *testing.T) {
	t.Parallel()
	state := RateLimitState{}
	now := time.UnixMilli(1000)
	window := 10 * time.Second

	for i := 0; i < 5; i++ {
		var ok bool
		state, ok = CheckRateLimit(state, 5, window, now)
		assert.True(t, ok, "action %d should be accepted", i)
	}

	state, ok := CheckRateLimit(state, 5, window, now)
	assert.False(t, ok)
	assert.Len(t, state.Timestamps, 5, "rejected action must not be recorded")
}

func TestCheckRateLimit_WindowSlides(t *testing.T) {
	t.Parallel()
	state := RateLimitState{}
	window := 10 * time.Second
	start := time.UnixMilli(1000)

	var ok bool
	for i := 0; i < 5; i++ {
		state, ok = CheckRateLimit(state, 5, window, start)
		assert.True(t, ok)
	}

	// still inside the window
	state, ok = CheckRateLimit(state, 5, window, start.Add(window))
	assert.False(t, ok)

	// one instant later the original five have expired
	state, ok = CheckRateLimit(state, 5, window, start.Add(window+time.Millisecond))
	assert.True(t, ok)
	assert.Len(t, state.Timestamps, 1)
}

func TestCheckRateLimit_PartialExpiry(t *testing.T) {
	t.Parallel()
	state := RateLimitState{}
	window := 10 * time.Second
	start := time.UnixMilli(0)

	state, _ = CheckRateLimit(state, 3, window, start)
	state, _ = CheckRateLimit(state, 3, window, start.Add(4*time.Second))
	state, _ = CheckRateLimit(state, 3, window, start.Add(8*time.Second))

	_, ok := CheckRateLimit(state, 3, window, start.Add(9*time.Second))
	assert.False(t, ok)

	// the first timestamp ages out, freeing one slot
	state, ok = CheckRateLimit(state, 3, window, start.Add(11*time.Second))
	assert.True(t, ok)
	assert.Len(t, state.Timestamps, 3)
}

func TestCheckRateLimit_IndependentStates(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1000)
	window := 10 * time.Second

	a := RateLimitState{}
	b := RateLimitState{}
	var ok bool
	a, ok = CheckRateLimit(a, 1, window, now)
	assert.True(t, ok)
	a, ok = CheckRateLimit(a, 1, window, now)
	assert.False(t, ok)

	_, ok = CheckRateLimit(b, 1, window, now)
	assert.True(t, ok, "a full bucket for one player must not affect another")
}
