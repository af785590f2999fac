package locate

import (
	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/grid"
)

const (
	DefaultMinScore = 2
	DefaultMaxWalk  = 8
)

// Strategy is how one concept's table is recognized.
type Strategy struct {
	// Headings are phrases of the text line introducing the table.
	Headings []string
	// Phrases are row labels the table is expected to contain; each one
	// found scores a point.
	Phrases []string
	// Avoid phrases mark look-alike tables, such as parent-company-only
	// schedules; each one found costs a point.
	Avoid []string
	// MinScore is the lowest score a table is accepted with.
	MinScore int
	// MaxWalk bounds how many blocks after a heading are searched for its
	// table.
	MaxWalk int
}

var defaults = map[filing.Concept]Strategy{
	filing.Income: {
		Headings: []string{
			"statements of operations",
			"statement of operations",
			"statements of income",
			"statement of income",
			"income statements",
			"statements of earnings",
		},
		Phrases: []string{
			"net income",
			"operating income",
			"income from operations",
			"provision for income taxes",
			"income before",
			"gross margin",
			"gross profit",
			"cost of sales",
			"cost of revenue",
			"research and development",
			"total operating expenses",
			"earnings per share",
		},
		Avoid: []string{"comprehensive income", "parent company"},
	},
	filing.Balance: {
		Headings: []string{
			"balance sheets",
			"balance sheet",
			"statements of financial position",
			"statement of financial position",
		},
		Phrases: []string{
			"total assets",
			"cash and cash equivalents",
			"total current assets",
			"total current liabilities",
			"total liabilities",
			"accounts payable",
			"retained earnings",
			"stockholders' equity",
			"shareholders' equity",
		},
		Avoid: []string{"parent company"},
	},
	filing.CashFlow: {
		Headings: []string{
			"statements of cash flows",
			"statement of cash flows",
			"cash flows statements",
		},
		Phrases: []string{
			"operating activities",
			"investing activities",
			"financing activities",
			"depreciation and amortization",
			"share-based compensation",
			"stock-based compensation",
			"end of period",
		},
		Avoid: []string{"parent company"},
	},
}

// Default returns the built-in strategy for a concept. Segment and
// investment tables have no built-in phrases; they come from configuration.
func Default(c filing.Concept) Strategy {
	s := defaults[c]
	s.MinScore = DefaultMinScore
	s.MaxWalk = DefaultMaxWalk
	return s
}

// Override replaces each part of s that o sets.
func (s Strategy) Override(o Strategy) Strategy {
	if len(o.Headings) > 0 {
		s.Headings = o.Headings
	}
	if len(o.Phrases) > 0 {
		s.Phrases = o.Phrases
	}
	if len(o.Avoid) > 0 {
		s.Avoid = o.Avoid
	}
	if o.MinScore > 0 {
		s.MinScore = o.MinScore
	}
	if o.MaxWalk > 0 {
		s.MaxWalk = o.MaxWalk
	}
	return s
}

// Locator holds the strategy of every concept for one document.
type Locator struct {
	strategies map[filing.Concept]Strategy
}

// NewLocator starts from the built-in strategies.
func NewLocator() *Locator {
	l := &Locator{strategies: map[filing.Concept]Strategy{}}
	for _, c := range filing.Concepts {
		l.strategies[c] = Default(c)
	}
	return l
}

// Override adjusts the strategy of one concept.
func (l *Locator) Override(c filing.Concept, o Strategy) {
	l.strategies[c] = l.Strategy(c).Override(o)
}

// Strategy returns the strategy in effect for a concept.
func (l *Locator) Strategy(c filing.Concept) Strategy {
	if s, ok := l.strategies[c]; ok {
		return s
	}
	return Default(c)
}

// Locate finds the table for a concept.
func (l *Locator) Locate(g *grid.Grid, c filing.Concept) (*Section, bool) {
	return Locate(g, l.Strategy(c))
}
