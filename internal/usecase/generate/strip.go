package generate

import "strings"

// DefaultDenylist holds phrases that mark a line as leaked model reasoning.
var DefaultDenylist = []string{
	"okay", "let me", "first", "need to", "check", "verify", "looking at", "analyzing",
	"thinking", "considering", "let's", "i need", "i will", "i should", "i must",
}

// StripFunc post-filters a raw model reply.
type StripFunc func(text string) string

// NewStripper returns a StripFunc dropping every line that contains one of words,
// case-insensitively. The remaining lines are rejoined with newlines.
func NewStripper(words []string) StripFunc {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}

	return func(text string) string {
		lines := strings.Split(text, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if !containsAny(strings.ToLower(line), lowered) {
				kept = append(kept, line)
			}
		}
		return strings.Join(kept, "\n")
	}
}

// StripReasoning filters text with DefaultDenylist.
var StripReasoning = NewStripper(DefaultDenylist)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
