package moderation

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordData []byte

// Matcher holds the blocked-term list, indexed for whole-token lookup.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	terms map[string]string // normalized term -> locale
}

// NewMatcher builds the matcher from the embedded keyword list.
func NewMatcher() (*Matcher, error) {
	return NewMatcherFromYAML(keywordData)
}

// NewMatcherFromYAML builds a matcher from a locale -> terms mapping.
func NewMatcherFromYAML(data []byte) (*Matcher, error) {
	var byLocale map[string][]string
	if err := yaml.Unmarshal(data, &byLocale); err != nil {
		return nil, fmt.Errorf("failed to parse keyword list: %w", err)
	}

	terms := make(map[string]string)
	for locale, words := range byLocale {
		for _, word := range words {
			normalized := strings.ToLower(strings.TrimSpace(word))
			if normalized == "" {
				continue
			}
			terms[normalized] = locale
		}
	}

	if len(terms) == 0 {
		return nil, fmt.Errorf("keyword list is empty")
	}

	return &Matcher{terms: terms}, nil
}

// Match reports whether the content contains any blocked term and, if so,
// which locale lists matched. Terms match only as whole tokens, so "class"
// never trips on "ass". Matching over Unicode letter/digit boundaries also
// covers the Cyrillic and Azerbaijani lists, where an ASCII \b regexp
// would never fire.
func (m *Matcher) Match(content string) (bool, []string) {
	tokens := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	localeSet := make(map[string]struct{})
	for _, token := range tokens {
		if locale, ok := m.terms[token]; ok {
			localeSet[locale] = struct{}{}
		}
	}

	if len(localeSet) == 0 {
		return false, nil
	}

	locales := make([]string, 0, len(localeSet))
	for locale := range localeSet {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	return true, locales
}
