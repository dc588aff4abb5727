package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// textSanitizer strips markup from free text while keeping characters such as & and < literal.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() textSanitizer {
	return textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s textSanitizer) clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

func (s textSanitizer) cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		if text := s.clean(value); text != "" {
			cleaned = append(cleaned, text)
		}
	}
	return cleaned
}
