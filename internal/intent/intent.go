// ABOUTME: Message classifier mapping free-text chat input to an intent
// ABOUTME: Pure functions, no state; trigger phrases decide the branch

package intent

import "strings"

// Kind identifies what the user is asking for
type Kind string

const (
	Chat          Kind = "chat"           // Plain conversation
	GenerateImage Kind = "generate_image" // Draw a new picture
	EditImage     Kind = "edit_image"     // Change the picture under edit
)

// Intent is the classified purpose of a chat message. Prompt is set for
// image intents: the stripped subject for generation, the verbatim
// instruction for edits.
type Intent struct {
	Kind   Kind
	Prompt string
}

// editTriggers mark an edit request, but only while an image is under edit
var editTriggers = []string{"add", "remove", "change", "edit", "make it"}

// generateTriggers mark an image-generation request
var generateTriggers = []string{"show me", "bring me", "pic of"}

// stripPhrases are removed from generation prompts. "a pic of" comes
// before "pic of" so the article is consumed along with the phrase.
var stripPhrases = []string{"show me", "bring me", "a pic of", "pic of"}

// Classify maps raw user text to an Intent. Matching ignores ASCII case;
// the original casing is preserved in prompts. Edit triggers are checked
// before generate triggers, so while an image is under edit an edit
// phrase wins even if a generate phrase is also present. Empty or
// whitespace-only input is the caller's problem and is rejected upstream.
func Classify(text string, hasImageUnderEdit bool) Intent {
	lowered := lowerASCII(text)

	if hasImageUnderEdit && containsAny(lowered, editTriggers) {
		return Intent{Kind: EditImage, Prompt: text}
	}

	if containsAny(lowered, generateTriggers) {
		return Intent{Kind: GenerateImage, Prompt: stripTriggers(text)}
	}

	return Intent{Kind: Chat}
}

// containsAny reports whether lowered contains any of the phrases.
// Phrases are already lower-case.
func containsAny(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// stripTriggers removes all trigger phrases from text, ignoring ASCII
// case, and trims surrounding whitespace. The remaining original casing
// is kept.
func stripTriggers(text string) string {
	for _, p := range stripPhrases {
		text = removeFold(text, p)
	}
	return strings.TrimSpace(text)
}

// removeFold deletes every occurrence of phrase from s, ignoring ASCII
// case. phrase must be lower-case ASCII: lowerASCII keeps byte offsets
// identical to s, so an index into the folded string is valid in s.
func removeFold(s, phrase string) string {
	for {
		idx := strings.Index(lowerASCII(s), phrase)
		if idx < 0 {
			return s
		}
		s = s[:idx] + s[idx+len(phrase):]
	}
}

// lowerASCII lowercases ASCII letters, leaving every other byte
// untouched. The result is always the same length as s.
func lowerASCII(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			if b == nil {
				b = []byte(s)
			}
			b[i] = c + 'a' - 'A'
		}
	}
	if b == nil {
		return s
	}
	return string(b)
}
