// Package textnorm folds the typographic noise found in statement labels so
// that "TOTAL STOCKHOLDERS’ EQUITY:" and "Total stockholders' equity" compare
// equal.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Applied before NFKC: compatibility decomposition would turn the acute
// accent into a space plus a combining mark.
var punctuation = strings.NewReplacer(
	"’", "'", // right single quote
	"‘", "'", // left single quote
	"ʼ", "'", // modifier apostrophe
	"´", "'", // acute accent
	"′", "'", // prime
	"`", "'",
	"“", `"`,
	"”", `"`,
	"—", "-", // em dash
	"–", "-", // en dash
	"‒", "-", // figure dash
	"−", "-", // minus sign
	"\u200b", "", // zero width space
	"\ufeff", "",
)

var (
	footnote   = regexp.MustCompile(`(\s*\(([0-9]{1,2}|[a-z])\))+$`)
	trailing   = regexp.MustCompile(`[\s:*]+$`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize returns the comparison form of a label: width-folded NFKC text,
// case-folded, whitespace collapsed, trailing colons and footnote markers
// removed.
func Normalize(s string) string {
	s = punctuation.Replace(s)
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)
	s = cases.Fold().String(s)
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for {
		trimmed := trailing.ReplaceAllString(footnote.ReplaceAllString(s, ""), "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	return s
}

// Contains reports whether the normalized form of text contains the
// normalized form of phrase.
func Contains(text, phrase string) bool {
	p := Normalize(phrase)
	if p == "" {
		return false
	}
	return strings.Contains(Normalize(text), p)
}

// ContainsAny is Contains over a list of phrases, for text that is already
// normalized.
func ContainsAny(normalized string, phrases []string) bool {
	for _, phrase := range phrases {
		p := Normalize(phrase)
		if p != "" && strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}
