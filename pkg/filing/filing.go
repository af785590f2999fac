// Package filing identifies the documents the extraction engine works on:
// which company, which fiscal period, and what kind of document it is.
package filing

import (
	"fmt"
	"slices"
	"strings"
)

// Kind tags the layout family of a document. Each kind has its own signal
// for telling data apart from prose.
type Kind string

const (
	TableHTML  Kind = "table-html"
	LayoutText Kind = "layout-text"
	ShadowDeck Kind = "shadow-deck"
)

// kinds is in order of authority: a regulatory filing's table beats the
// same figure recovered from a press release or a deck.
var kinds = []Kind{TableHTML, LayoutText, ShadowDeck}

// ParseKind accepts the canonical names plus a few aliases used in manifests.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table-html", "html", "filing":
		return TableHTML, nil
	case "layout-text", "text", "pdf":
		return LayoutText, nil
	case "shadow-deck", "deck", "presentation":
		return ShadowDeck, nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

func (k Kind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Priority ranks kinds by authority, 0 being the most authoritative.
func (k Kind) Priority() int {
	return slices.Index(kinds, k)
}

// Concept names the statement to pull out of a document.
type Concept string

const (
	Income         Concept = "income"
	Balance        Concept = "balance"
	CashFlow       Concept = "cashflow"
	SegmentRevenue Concept = "segment-revenue"
	SegmentProfit  Concept = "segment-profit"
	Investments    Concept = "investments"
)

// Concepts lists every concept in the order fragments are merged.
var Concepts = []Concept{Income, Balance, CashFlow, SegmentRevenue, SegmentProfit, Investments}

func (c Concept) Valid() bool {
	for _, known := range Concepts {
		if c == known {
			return true
		}
	}
	return false
}

// Order is the concept's position in Concepts, or -1.
func (c Concept) Order() int {
	return slices.Index(Concepts, c)
}

// Annual is the Quarter value of a fiscal-year document (10-K, annual report).
const Annual = 0

// Unit is one (company, fiscal year, quarter, document kind) extraction target.
type Unit struct {
	Company    string `json:"company"`
	FiscalYear int    `json:"fiscal_year"`
	Quarter    int    `json:"quarter"`
	Kind       Kind   `json:"kind"`
}

// Period drops the document kind: every kind for the same period folds into
// one quarterly record.
func (u Unit) Period() Period {
	return Period{FiscalYear: u.FiscalYear, Quarter: u.Quarter}
}

func (u Unit) String() string {
	return fmt.Sprintf("%s %s %s", u.Company, u.Period(), u.Kind)
}

// Validate rejects units that cannot be keyed.
func (u Unit) Validate() error {
	if u.Company == "" {
		return fmt.Errorf("unit has no company")
	}
	if u.FiscalYear < 1900 || u.FiscalYear > 2999 {
		return fmt.Errorf("unit %s: fiscal year %d out of range", u.Company, u.FiscalYear)
	}
	if u.Quarter < Annual || u.Quarter > 4 {
		return fmt.Errorf("unit %s: quarter %d out of range", u.Company, u.Quarter)
	}
	if !u.Kind.Valid() {
		return fmt.Errorf("unit %s: unknown document kind %q", u.Company, u.Kind)
	}
	return nil
}

// Period is a fiscal quarter, or the whole fiscal year when Quarter is Annual.
type Period struct {
	FiscalYear int `json:"fiscal_year"`
	Quarter    int `json:"quarter"`
}

func (p Period) IsAnnual() bool {
	return p.Quarter == Annual
}

// Before orders periods chronologically, with the annual period after Q4 of
// the same fiscal year.
func (p Period) Before(o Period) bool {
	if p.FiscalYear != o.FiscalYear {
		return p.FiscalYear < o.FiscalYear
	}
	return p.rank() < o.rank()
}

func (p Period) rank() int {
	if p.Quarter == Annual {
		return 5
	}
	return p.Quarter
}

func (p Period) String() string {
	if p.IsAnnual() {
		return fmt.Sprintf("FY%d", p.FiscalYear)
	}
	return fmt.Sprintf("FY%d Q%d", p.FiscalYear, p.Quarter)
}

// Document is the fetched bytes of one filing unit.
type Document struct {
	Unit
	Source string
	Bytes  []byte
}
