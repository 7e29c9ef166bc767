// ABOUTME: License-key gate guarding the AI-facing routes
// ABOUTME: Validates caller-supplied keys against an injected allow-set

package license

import (
	"errors"
	"log/slog"
)

// ErrForbidden is returned when a key is missing or not in the allow-set
var ErrForbidden = errors.New("license key missing or invalid")

// HeaderName is the HTTP header carrying the caller's license key
const HeaderName = "x-license-key"

// ForbiddenMessage is the kid-friendly reply sent when the gate denies a
// request. The UI renders it as a chat bubble from the sleeping buddy.
const ForbiddenMessage = "Zzz... I'm asleep! Ask a grown-up to enter the license key so I can wake up. 😴"

// Gate validates caller-supplied license keys against a fixed allow-set.
// The set is loaded once at startup and never mutated; checks are
// read-only and safe for concurrent use.
type Gate struct {
	keys   map[string]struct{}
	logger *slog.Logger
}

// NewGate creates a gate from the given keys. Empty strings are ignored
// and duplicates collapse. An empty set disables the gate entirely: every
// check passes, and a warning is logged so the operator knows the AI
// routes are open.
func NewGate(keys []string, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "license")

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		set[k] = struct{}{}
	}

	if len(set) == 0 {
		logger.Warn("license gate disabled - no keys configured, AI routes are open")
	} else {
		logger.Info("license gate enabled", "keys", len(set))
	}

	return &Gate{keys: set, logger: logger}
}

// Enabled reports whether any keys are configured. A disabled gate
// allows all requests.
func (g *Gate) Enabled() bool {
	return len(g.keys) > 0
}

// Check returns nil if the key is acceptable: either the gate is
// disabled, or the key is present in the allow-set. Otherwise it
// returns ErrForbidden.
func (g *Gate) Check(key string) error {
	if !g.Enabled() {
		return nil
	}
	if key == "" {
		return ErrForbidden
	}
	if _, ok := g.keys[key]; !ok {
		return ErrForbidden
	}
	return nil
}
