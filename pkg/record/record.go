// Package record is the output model: one Quarterly record per company and
// period, merged from the per-statement fragments of every document read
// for that period.
package record

import (
	"sort"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/reconcile"
)

// Origin tells a figure read from a document from one computed from others.
type Origin string

const (
	Reported Origin = "reported"
	Derived  Origin = "derived"
)

// Entry is one metric of a record. A nil Value is an explicit null: the key
// was expected but no figure could be read or derived.
type Entry struct {
	Value     *float64       `json:"value"`
	Origin    Origin         `json:"origin"`
	Concept   filing.Concept `json:"concept"`
	Source    filing.Kind    `json:"source,omitempty"`
	Composite bool           `json:"composite,omitempty"`
	// YTD marks a figure still accumulated from the start of the fiscal
	// year. Reconciliation turns it into a single-quarter figure.
	YTD bool `json:"ytd,omitempty"`
}

// Status of a concept's extraction.
type Status string

const (
	Located    Status = "located"
	NotLocated Status = "not-located"
)

// Confidence records whether a concept's table was found, and how well it
// scored.
type Confidence struct {
	Status Status      `json:"status"`
	Score  int         `json:"score,omitempty"`
	Source filing.Kind `json:"source,omitempty"`
}

// Quarterly is the canonical record of one company period. Quarter is
// filing.Annual for the fiscal-year record.
type Quarterly struct {
	Company     string                         `json:"company"`
	FiscalYear  int                            `json:"fiscal_year"`
	Quarter     int                            `json:"quarter"`
	Metrics     map[metrics.Key]*Entry         `json:"metrics"`
	Confidence  map[filing.Concept]*Confidence `json:"confidence"`
	Diagnostics []Diagnostic                   `json:"diagnostics,omitempty"`
}

// New returns an empty record.
func New(company string, fy, quarter int) *Quarterly {
	return &Quarterly{
		Company:    company,
		FiscalYear: fy,
		Quarter:    quarter,
		Metrics:    map[metrics.Key]*Entry{},
		Confidence: map[filing.Concept]*Confidence{},
	}
}

func (q *Quarterly) Period() filing.Period {
	return filing.Period{FiscalYear: q.FiscalYear, Quarter: q.Quarter}
}

// Value returns the figure of a key, or nil.
func (q *Quarterly) Value(k metrics.Key) *float64 {
	if e, ok := q.Metrics[k]; ok {
		return e.Value
	}
	return nil
}

// Has reports whether the key holds a figure.
func (q *Quarterly) Has(k metrics.Key) bool {
	return q.Value(k) != nil
}

// Values returns the keys of one concept as reconciliation operands.
func (q *Quarterly) Values(c filing.Concept) reconcile.Values {
	v := reconcile.Values{}
	for k, e := range q.Metrics {
		if e.Concept == c && !e.Composite {
			v[k] = e.Value
		}
	}
	return v
}

// Fill sets a figure for a key that has none. A key already holding a
// figure is never overwritten.
func (q *Quarterly) Fill(k metrics.Key, e Entry) bool {
	if q.Has(k) {
		return false
	}
	if e.Value == nil {
		if _, ok := q.Metrics[k]; ok {
			return false
		}
	}
	q.Metrics[k] = &e
	return true
}

// Note appends diagnostics.
func (q *Quarterly) Note(d ...Diagnostic) {
	q.Diagnostics = append(q.Diagnostics, d...)
}

// Finish puts the diagnostics in a stable order, so that identical inputs
// serialize identically.
func (q *Quarterly) Finish() {
	SortDiagnostics(q.Diagnostics)
}

// Merge folds fragments into one record: the union of their keys, where the
// first non-null figure for a key wins. Fragments are taken in the order
// given.
func Merge(company string, fy, quarter int, fragments []Fragment) *Quarterly {
	q := New(company, fy, quarter)
	for _, f := range fragments {
		for _, k := range f.Keys() {
			q.Fill(k, Entry{
				Value:   f.Values[k],
				Origin:  Reported,
				Concept: f.Concept,
				Source:  f.Source,
				YTD:     f.YTD,
			})
		}
		conf := q.Confidence[f.Concept]
		switch {
		case f.Located && (conf == nil || conf.Status == NotLocated):
			q.Confidence[f.Concept] = &Confidence{Status: Located, Score: f.Score, Source: f.Source}
		case !f.Located && conf == nil:
			q.Confidence[f.Concept] = &Confidence{Status: NotLocated}
		}
		q.Note(f.Diagnostics...)
	}
	return q
}

// Series is the time series of one company, ordered by period.
type Series struct {
	Company  string       `json:"company"`
	Currency string       `json:"currency"`
	Scale    string       `json:"scale"`
	Records  []*Quarterly `json:"records"`
}

// Sort orders records chronologically, each fiscal year's annual record
// after its fourth quarter.
func (s *Series) Sort() {
	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].Period().Before(s.Records[j].Period())
	})
}

// Record returns the record of a period, or nil.
func (s *Series) Record(p filing.Period) *Quarterly {
	for _, r := range s.Records {
		if r.Period() == p {
			return r
		}
	}
	return nil
}
