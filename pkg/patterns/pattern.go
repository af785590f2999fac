package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/saranrapjs/quarterly-statements/pkg/textnorm"
)

// Pattern forms. A pattern without a prefix must equal the label once both
// are normalized.
const (
	prefixForm   = "prefix:"
	containsForm = "contains:"
	regexpForm   = "re:"
	ixbrlForm    = "ixbrl:"
)

// Pattern matches one row: its normalized label and the inline XBRL concept
// names of its value cells.
type Pattern interface {
	Match(label string, concepts []string) bool
	String() string
}

type exact string

func (p exact) Match(label string, _ []string) bool { return label == string(p) }
func (p exact) String() string                      { return string(p) }

type prefix string

func (p prefix) Match(label string, _ []string) bool { return strings.HasPrefix(label, string(p)) }
func (p prefix) String() string                      { return prefixForm + string(p) }

type contains string

func (p contains) Match(label string, _ []string) bool { return strings.Contains(label, string(p)) }
func (p contains) String() string                      { return containsForm + string(p) }

type expr struct{ re *regexp.Regexp }

func (p expr) Match(label string, _ []string) bool { return p.re.MatchString(label) }
func (p expr) String() string                      { return regexpForm + p.re.String() }

// ixbrlConcept matches a tagged value cell. A name without a namespace
// prefix matches that local name in any namespace.
type ixbrlConcept string

func (p ixbrlConcept) Match(_ string, concepts []string) bool {
	want := strings.ToLower(string(p))
	for _, c := range concepts {
		c = strings.ToLower(c)
		if c == want {
			return true
		}
		if !strings.Contains(want, ":") {
			if _, local, ok := strings.Cut(c, ":"); ok && local == want {
				return true
			}
		}
	}
	return false
}

func (p ixbrlConcept) String() string { return ixbrlForm + string(p) }

// Compile parses one pattern string.
func Compile(s string) (Pattern, error) {
	switch {
	case strings.HasPrefix(s, regexpForm):
		re, err := regexp.Compile(s[len(regexpForm):])
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", s, err)
		}
		return expr{re}, nil
	case strings.HasPrefix(s, ixbrlForm):
		name := strings.TrimSpace(s[len(ixbrlForm):])
		if name == "" {
			return nil, fmt.Errorf("pattern %q: empty concept name", s)
		}
		return ixbrlConcept(name), nil
	}

	form, body := "", s
	for _, f := range []string{prefixForm, containsForm} {
		if strings.HasPrefix(s, f) {
			form, body = f, s[len(f):]
		}
	}
	body = textnorm.Normalize(body)
	if body == "" {
		return nil, fmt.Errorf("pattern %q normalizes to nothing", s)
	}
	switch form {
	case prefixForm:
		return prefix(body), nil
	case containsForm:
		return contains(body), nil
	}
	return exact(body), nil
}

func compileAll(list []string) ([]Pattern, error) {
	compiled := make([]Pattern, 0, len(list))
	for _, s := range list {
		p, err := Compile(s)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, p)
	}
	return compiled, nil
}

func matchAny(patterns []Pattern, label string, concepts []string) bool {
	for _, p := range patterns {
		if p.Match(label, concepts) {
			return true
		}
	}
	return false
}
