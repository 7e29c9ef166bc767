// ABOUTME: Tests for the message classifier
// ABOUTME: Covers trigger detection, phrase stripping, and edit priority

package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		hasImage   bool
		wantKind   Kind
		wantPrompt string
	}{
		{
			name:     "plain chat",
			text:     "hello there",
			wantKind: Chat,
		},
		{
			name:     "question stays chat",
			text:     "why is the sky blue?",
			wantKind: Chat,
		},
		{
			name:       "show me strips trigger",
			text:       "Show me a dragon",
			wantKind:   GenerateImage,
			wantPrompt: "a dragon",
		},
		{
			name:       "bring me strips trigger",
			text:       "bring me a castle made of candy",
			wantKind:   GenerateImage,
			wantPrompt: "a castle made of candy",
		},
		{
			name:       "a pic of strips the article too",
			text:       "a pic of a robot dog",
			wantKind:   GenerateImage,
			wantPrompt: "a robot dog",
		},
		{
			name:       "mixed case trigger",
			text:       "SHOW ME the moon",
			wantKind:   GenerateImage,
			wantPrompt: "the moon",
		},
		{
			name:       "trigger mid-sentence",
			text:       "please show me a rainbow unicorn",
			wantKind:   GenerateImage,
			wantPrompt: "please  a rainbow unicorn",
		},
		{
			name:       "edit with pending image keeps text verbatim",
			text:       "make it purple",
			hasImage:   true,
			wantKind:   EditImage,
			wantPrompt: "make it purple",
		},
		{
			name:       "add with pending image",
			text:       "Add a party hat",
			hasImage:   true,
			wantKind:   EditImage,
			wantPrompt: "Add a party hat",
		},
		{
			name:     "edit phrase without pending image is chat",
			text:     "make it purple",
			wantKind: Chat,
		},
		{
			name:       "edit wins over generate while editing",
			text:       "change it to show me smiling",
			hasImage:   true,
			wantKind:   EditImage,
			wantPrompt: "change it to show me smiling",
		},
		{
			name:       "generate still works while editing if no edit phrase",
			text:       "show me a pirate ship",
			hasImage:   true,
			wantKind:   GenerateImage,
			wantPrompt: "a pirate ship",
		},
		{
			name:       "multi-byte runes before the trigger",
			text:       "ȺȺȺȺȺȺȺȺshow me comet",
			wantKind:   GenerateImage,
			wantPrompt: "ȺȺȺȺȺȺȺȺ comet",
		},
		{
			name:       "multi-byte rune near the stripped phrase",
			text:       "İ want a pic of the moon",
			wantKind:   GenerateImage,
			wantPrompt: "İ want  the moon",
		},
		{
			name:     "unicode lookalike is not a trigger",
			text:     "pİc of the sun",
			wantKind: Chat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text, tt.hasImage)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantPrompt, got.Prompt)
		})
	}
}

func TestStripTriggers_AllPhrases(t *testing.T) {
	assert.Equal(t, "a dragon", stripTriggers("show me a dragon"))
	assert.Equal(t, "a dragon", stripTriggers("Show Me a dragon"))
	assert.Equal(t, "a dragon", stripTriggers("bring me a dragon"))
	assert.Equal(t, "a dragon", stripTriggers("a pic of a dragon"))
	assert.Equal(t, "a dragon", stripTriggers("pic of a dragon"))
}

func TestRemoveFold(t *testing.T) {
	assert.Equal(t, " a cat", removeFold("Show Me a cat", "show me"))
	assert.Equal(t, "unchanged", removeFold("unchanged", "show me"))
	// Every occurrence goes
	assert.Equal(t, " and ", removeFold("show me and SHOW ME", "show me"))
	// Multi-byte runes ahead of the phrase do not shift the cut
	assert.Equal(t, "ȺȺ dragon", removeFold("ȺȺshow me dragon", "show me"))
	assert.Equal(t, "İmage ", removeFold("İmage show me", "show me"))
}

func TestLowerASCII(t *testing.T) {
	assert.Equal(t, "show me a dragon", lowerASCII("Show Me a DRAGON"))
	// Non-ASCII letters pass through untouched
	assert.Equal(t, "Ⱥİ ok", lowerASCII("Ⱥİ OK"))
	assert.Equal(t, "plain", lowerASCII("plain"))
}
