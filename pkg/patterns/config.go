// Package patterns holds the per-company label dialects: which rows of a
// located statement table map to which metric key, for which fiscal years
// and document kinds. Dialects are configuration, read from YAML.
package patterns

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
)

// Company is one company's configuration file.
type Company struct {
	Company  string `yaml:"company" validate:"required"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency" validate:"required,len=3,uppercase"`
	// Scale every value is normalized into before it reaches a record.
	Scale numeric.Scale `yaml:"scale"`
	// FX converts a statement presented in another currency into Currency:
	// one unit of the key currency is worth FX[key] units of Currency.
	FX       map[string]float64 `yaml:"fx" validate:"dive,keys,len=3,uppercase,endkeys,gt=0"`
	Dialects []*Dialect         `yaml:"dialects" validate:"required,min=1,dive,required"`
}

// Dialect is the label vocabulary a company used over a range of fiscal
// years, optionally limited to some document kinds.
type Dialect struct {
	FromYear int           `yaml:"fromYear" validate:"omitempty,min=1900"`
	ToYear   int           `yaml:"toYear" validate:"omitempty,min=1900"`
	Kinds    []filing.Kind `yaml:"kinds" validate:"dive,oneof=table-html layout-text shadow-deck"`

	Concepts map[filing.Concept]*ConceptDialect `yaml:"concepts" validate:"required,min=1,dive,keys,oneof=income balance cashflow segment-revenue segment-profit investments,endkeys,required"`

	company *Company
}

// Locate overrides the built-in section locating strategy of a concept.
type Locate struct {
	Headings []string `yaml:"headings"`
	Phrases  []string `yaml:"phrases"`
	Avoid    []string `yaml:"avoid"`
	MinScore int      `yaml:"minScore" validate:"min=0"`
	MaxWalk  int      `yaml:"maxWalk" validate:"min=0"`
}

// Section is a named run of rows bounded by delimiter rows, such as the
// segment breakdown inside a larger revenue table.
type Section struct {
	Name  string   `yaml:"name" validate:"required"`
	Start []string `yaml:"start" validate:"required,min=1,dive,required"`
	End   []string `yaml:"end" validate:"dive,required"`

	start, end []Pattern
}

// Rule maps any of its patterns to Key. A rule with a Section only applies
// while that section is current.
type Rule struct {
	Key     metrics.Key `yaml:"key" validate:"required"`
	Match   []string    `yaml:"match" validate:"required,min=1,dive,required"`
	Section string      `yaml:"section"`

	patterns []Pattern
}

// ConceptDialect configures one statement.
type ConceptDialect struct {
	// Column is the index among a row's value cells holding the period the
	// document reports on; 0 is the first (leftmost) figure.
	Column int `yaml:"column" validate:"min=0"`
	// YTD marks quarterly documents presenting year-to-date figures for
	// this statement, as cash flow statements usually do.
	YTD bool `yaml:"ytd"`
	// NoDefaults drops the generic label rules otherwise tried after the
	// company's own.
	NoDefaults bool      `yaml:"noDefaults"`
	Locate     *Locate   `yaml:"locate"`
	Sections   []Section `yaml:"sections" validate:"dive"`
	Rules      []Rule    `yaml:"rules" validate:"dive"`

	concept filing.Concept
	rules   []Rule
	// sections includes the generic ones unless NoDefaults is set.
	sections []Section
}

var validate = validator.New()

// Validate checks the structure with struct tags, then the semantics: keys
// allowed for each concept, compilable patterns, sections referenced by
// rules. It compiles the patterns as a side effect.
func (c *Company) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("company %q: %w", c.Company, err)
	}
	for i, d := range c.Dialects {
		if d.ToYear != 0 && d.ToYear < d.FromYear {
			return fmt.Errorf("company %q: dialect %d: toYear %d before fromYear %d", c.Company, i, d.ToYear, d.FromYear)
		}
		d.company = c
		for concept, cd := range d.Concepts {
			if err := cd.compile(concept); err != nil {
				return fmt.Errorf("company %q: dialect %d: %s: %w", c.Company, i, concept, err)
			}
		}
	}
	return nil
}

func (cd *ConceptDialect) compile(concept filing.Concept) error {
	cd.concept = concept
	cd.rules = nil
	cd.sections = nil

	names := map[string]bool{}
	sections := slices.Clone(cd.Sections)
	rules := slices.Clone(cd.Rules)
	if !cd.NoDefaults {
		for _, s := range genericSections[concept] {
			if !slices.ContainsFunc(sections, func(own Section) bool { return own.Name == s.Name }) {
				sections = append(sections, s)
			}
		}
		rules = append(rules, genericRules[concept]...)
	}
	for i := range sections {
		s := &sections[i]
		if names[s.Name] {
			return fmt.Errorf("section %q declared twice", s.Name)
		}
		names[s.Name] = true
		var err error
		if s.start, err = compileAll(s.Start); err != nil {
			return err
		}
		if s.end, err = compileAll(s.End); err != nil {
			return err
		}
	}
	for i := range rules {
		r := &rules[i]
		if err := metrics.Validate(concept, r.Key); err != nil {
			return err
		}
		if r.Section != "" && !names[r.Section] {
			return fmt.Errorf("rule for %q: unknown section %q", r.Key, r.Section)
		}
		var err error
		if r.patterns, err = compileAll(r.Match); err != nil {
			return err
		}
	}
	cd.sections = sections
	cd.rules = rules
	return nil
}

// Concept returns the statement this dialect configures.
func (cd *ConceptDialect) Concept() filing.Concept { return cd.concept }

// Covers reports whether the dialect applies to a fiscal year and kind.
func (d *Dialect) Covers(fy int, kind filing.Kind) bool {
	if d.FromYear != 0 && fy < d.FromYear {
		return false
	}
	if d.ToYear != 0 && fy > d.ToYear {
		return false
	}
	return len(d.Kinds) == 0 || slices.Contains(d.Kinds, kind)
}

// Company returns the configuration the dialect belongs to.
func (d *Dialect) Company() *Company { return d.company }
