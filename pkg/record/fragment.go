package record

import (
	"sort"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
)

// Fragment is the output of one statement pass over one document.
type Fragment struct {
	Concept filing.Concept           `json:"concept"`
	Source  filing.Kind              `json:"source"`
	Located bool                     `json:"located"`
	Score   int                      `json:"score,omitempty"`
	Values  map[metrics.Key]*float64 `json:"values"`
	// YTD marks values that are year-to-date rather than single-quarter.
	YTD         bool         `json:"ytd,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// NewFragment starts an empty fragment.
func NewFragment(c filing.Concept, source filing.Kind) *Fragment {
	return &Fragment{Concept: c, Source: source, Values: map[metrics.Key]*float64{}}
}

// Set records the figure of the first row classified as k. Later rows for
// the same key are ignored so that a repeated subtotal cannot shadow the
// primary total; Set reports whether the value was taken.
func (f *Fragment) Set(k metrics.Key, v *float64) bool {
	if _, ok := f.Values[k]; ok {
		return false
	}
	f.Values[k] = v
	return true
}

// Keys returns the fragment's keys, sorted.
func (f *Fragment) Keys() []metrics.Key {
	keys := make([]metrics.Key, 0, len(f.Values))
	for k := range f.Values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Note appends a diagnostic.
func (f *Fragment) Note(kind DiagnosticKind, key metrics.Key, detail string) {
	f.Diagnostics = append(f.Diagnostics, Diagnostic{
		Kind:    kind,
		Concept: f.Concept,
		Key:     key,
		Source:  f.Source,
		Detail:  detail,
	})
}

// Draft is everything extracted from one document.
type Draft struct {
	Unit        filing.Unit  `json:"unit"`
	Fragments   []Fragment   `json:"fragments"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
