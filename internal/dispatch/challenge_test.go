// ABOUTME: Tests for the daily challenge state
// ABOUTME: Verifies phrase matching, once-only completion, and concurrency safety

package dispatch

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallenge_InitiallyPending(t *testing.T) {
	c := NewChallenge()

	state := c.State()
	assert.False(t, state.Completed)
	assert.Equal(t, 0, state.Points)
}

func TestChallenge_TryComplete_MatchingPhrase(t *testing.T) {
	c := NewChallenge()

	points, completed := c.TryComplete("show me a space pizza")
	require.True(t, completed)
	assert.Equal(t, ChallengeBonusPoints, points)

	state := c.State()
	assert.True(t, state.Completed)
	assert.Equal(t, ChallengeBonusPoints, state.Points)
}

func TestChallenge_TryComplete_CaseInsensitive(t *testing.T) {
	c := NewChallenge()

	_, completed := c.TryComplete("SHOW ME A SPACE PIZZA!")
	assert.True(t, completed)
}

func TestChallenge_TryComplete_NoMatch(t *testing.T) {
	c := NewChallenge()

	points, completed := c.TryComplete("show me a dragon")
	assert.False(t, completed)
	assert.Equal(t, 0, points)

	state := c.State()
	assert.False(t, state.Completed)
	assert.Equal(t, 0, state.Points)
}

func TestChallenge_TryComplete_OnlyOnce(t *testing.T) {
	c := NewChallenge()

	_, first := c.TryComplete("show me a space pizza")
	require.True(t, first)

	points, second := c.TryComplete("show me another space pizza")
	assert.False(t, second)
	assert.Equal(t, 0, points)

	// Points do not stack on repeat completions
	state := c.State()
	assert.Equal(t, ChallengeBonusPoints, state.Points)
}

func TestChallenge_TryComplete_ExactlyOneWinnerUnderConcurrency(t *testing.T) {
	c := NewChallenge()

	const workers = 10
	wins := make(chan int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if points, completed := c.TryComplete("space pizza"); completed {
				wins <- points
			}
		}()
	}
	wg.Wait()
	close(wins)

	total := 0
	winners := 0
	for points := range wins {
		winners++
		total += points
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, ChallengeBonusPoints, total)
}
