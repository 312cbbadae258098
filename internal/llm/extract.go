package llm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Heuristic profile extraction from raw user text. Misses are expected
// steady-state behavior, not errors: an empty map just means nothing matched.

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`meu nome é\s+([\p{L}][\p{L}\s]+)`),
	regexp.MustCompile(`eu sou\s+([\p{L}][\p{L}\s]+)`),
	regexp.MustCompile(`chamo-me\s+([\p{L}][\p{L}\s]+)`),
	regexp.MustCompile(`sou\s+([\p{L}][\p{L}\s]+)`),
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// ExtractProfile pulls name/email candidates out of a user message. Name
// patterns run against the lower-cased text in order; the first match wins and
// is title-cased for storage.
func ExtractProfile(message string) map[string]string {
	profile := make(map[string]string)

	lower := strings.ToLower(message)
	for _, pat := range namePatterns {
		if m := pat.FindStringSubmatch(lower); m != nil {
			profile["name"] = titleCaser.String(strings.TrimSpace(m[1]))
			break
		}
	}

	if m := emailPattern.FindString(message); m != "" {
		profile["email"] = m
	}

	if len(profile) == 0 {
		return nil
	}
	return profile
}
