// ABOUTME: Process-wide one-shot daily challenge state
// ABOUTME: Completes once per process when the magic phrase is drawn

package dispatch

import (
	"strings"
	"sync"
)

// Daily challenge constants
const (
	ChallengePhrase      = "space pizza"
	ChallengeBonusPoints = 50
)

// Challenge is the one-shot daily challenge: ask Cosmo to draw the magic
// phrase and earn bonus points, once per process.
//
// Lifecycle: initialized pending at startup, completes at most once, is
// never persisted, and resets only when the process restarts. The mutex
// makes the completion race-free under concurrent dispatches.
type Challenge struct {
	mu        sync.Mutex
	completed bool
	points    int
}

// ChallengeState is a read-only snapshot for the UI badge.
type ChallengeState struct {
	Completed bool
	Points    int
}

// NewChallenge creates a pending challenge.
func NewChallenge() *Challenge {
	return &Challenge{}
}

// TryComplete completes the challenge if text contains the magic phrase
// and the challenge is still pending. It returns the points awarded by
// this call and whether this call performed the completion. Matching is
// case-insensitive; repeat matches award nothing.
func (c *Challenge) TryComplete(text string) (int, bool) {
	if !strings.Contains(strings.ToLower(text), ChallengePhrase) {
		return 0, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.completed {
		return 0, false
	}

	c.completed = true
	c.points = ChallengeBonusPoints
	return ChallengeBonusPoints, true
}

// State returns a snapshot of the challenge.
func (c *Challenge) State() ChallengeState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ChallengeState{
		Completed: c.completed,
		Points:    c.points,
	}
}
