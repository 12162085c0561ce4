package grading

import (
	"strings"
	"unicode"
)

// Normalize collapses free text into a canonical comparable form: lower-cased,
// punctuation removed, whitespace runs squeezed to single spaces, trimmed.
// Input that carries no letters or digits normalizes to the empty string,
// which is the trigger for the empty-answer short circuit in the engine.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	builder := strings.Builder{}
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		builder.WriteRune(r)
	}

	return strings.Join(strings.Fields(builder.String()), " ")
}
