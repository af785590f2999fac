package patterns

import (
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/textnorm"
)

// None is the section state outside any delimited section.
const None = ""

// Matcher classifies the rows of one table, top to bottom. It carries the
// current section, so a fresh Matcher is needed per table.
type Matcher struct {
	rules    []Rule
	sections []Section
	current  string
}

// Matcher returns a matcher positioned before the first row.
func (cd *ConceptDialect) Matcher() *Matcher {
	return &Matcher{rules: cd.rules, sections: cd.sections}
}

// Section names the section the last classified row belonged to.
func (m *Matcher) Section() string { return m.current }

// Classify maps a row label to a metric key: the key of the first rule, in
// declared order, with a matching pattern.
func (m *Matcher) Classify(label string) (metrics.Key, bool) {
	return m.ClassifyRow(label, nil)
}

// ClassifyRow is Classify for a row whose value cells carry inline XBRL
// concept names.
//
// A row matching a section's start delimiter enters that section before it
// is classified; a row matching the current section's end delimiter is
// classified inside the section, which then ends.
func (m *Matcher) ClassifyRow(label string, concepts []string) (metrics.Key, bool) {
	norm := textnorm.Normalize(label)
	for _, s := range m.sections {
		if s.Name != m.current && matchAny(s.start, norm, nil) {
			m.current = s.Name
			break
		}
	}

	key, ok := m.classify(norm, concepts)

	if m.current != None {
		for _, s := range m.sections {
			if s.Name == m.current && matchAny(s.end, norm, nil) {
				m.current = None
				break
			}
		}
	}
	return key, ok
}

func (m *Matcher) classify(norm string, concepts []string) (metrics.Key, bool) {
	if norm == "" && len(concepts) == 0 {
		return "", false
	}
	for _, r := range m.rules {
		if r.Section != None && r.Section != m.current {
			continue
		}
		if matchAny(r.patterns, norm, concepts) {
			return r.Key, true
		}
	}
	return "", false
}

// Phrases returns the literal text of the dialect's label patterns, used as
// content phrases when locating a statement that has no built-in ones.
func (cd *ConceptDialect) Phrases() []string {
	var phrases []string
	seen := map[string]bool{}
	for _, r := range cd.rules {
		for _, p := range r.patterns {
			var text string
			switch p := p.(type) {
			case exact:
				text = string(p)
			case prefix:
				text = string(p)
			case contains:
				text = string(p)
			default:
				continue
			}
			if !seen[text] {
				seen[text] = true
				phrases = append(phrases, text)
			}
		}
	}
	return phrases
}

// Expected returns the keys a located table should yield: the core keys of a
// fixed statement plus every key the company's own rules name, in that
// order and without repeats.
func (cd *ConceptDialect) Expected() []metrics.Key {
	var keys []metrics.Key
	seen := map[metrics.Key]bool{}
	add := func(k metrics.Key) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range metrics.Core(cd.concept) {
		add(k)
	}
	for _, r := range cd.Rules {
		add(r.Key)
	}
	return keys
}
