package recommend

import (
	"regexp"
	"strings"
)

// Suggestion is one parsed recommendation line. Description is empty when the
// completion line carried no "- " separator.
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var ordinalPrefix = regexp.MustCompile(`^[0-9]+\. `)

// ParseSuggestions splits completion text into suggestions. Each non-empty
// line is cut at the first "- " into name and description, the leading
// "<digits>. " ordinal is stripped from the name, and both sides are trimmed.
// Line order is preserved.
func ParseSuggestions(text string) []Suggestion {
	var suggestions []Suggestion
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, description, _ := strings.Cut(line, "- ")
		suggestions = append(suggestions, Suggestion{
			Name:        strings.TrimSpace(ordinalPrefix.ReplaceAllString(strings.TrimSpace(name), "")),
			Description: strings.TrimSpace(description),
		})
	}
	return suggestions
}
