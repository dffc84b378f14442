// Package textnorm builds comparison keys for names that differ only in
// accents, case, spacing or punctuation.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key folds s so that "Sorszám", "sorszam" and "Sorszám:" compare equal.
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Equal compares a and b by Key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Set is a lookup table of folded keys
type Set map[string]struct{}

// NewSet folds every value into a Set
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[Key(v)] = struct{}{}
	}
	return s
}

// Contains reports whether v folds to a member of s
func (s Set) Contains(v string) bool {
	_, ok := s[Key(v)]
	return ok
}
