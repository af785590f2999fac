package record

import (
	"fmt"
	"sort"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
)

// DiagnosticKind classifies an expected extraction failure. None of these
// abort a unit; they leave null fields and this trail behind.
type DiagnosticKind string

const (
	// StructuralMiss: no table qualified for the concept.
	StructuralMiss DiagnosticKind = "structural-miss"
	// LabelMiss: the table was found but an expected row was not.
	LabelMiss DiagnosticKind = "label-miss"
	// NumericMalformed: a classified row had no readable figure.
	NumericMalformed DiagnosticKind = "numeric-malformed"
	// ReconciliationBlocked: a quarter could not be derived for a key.
	ReconciliationBlocked DiagnosticKind = "reconciliation-blocked"
	// ScaleMismatch: the table is in a currency that cannot be converted
	// into the company's reporting currency.
	ScaleMismatch DiagnosticKind = "scale-mismatch"
)

// Diagnostic is one entry of the audit trail.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Concept filing.Concept `json:"concept,omitempty"`
	Key     metrics.Key    `json:"key,omitempty"`
	Source  filing.Kind    `json:"source,omitempty"`
	Detail  string         `json:"detail,omitempty"`
}

func (d Diagnostic) String() string {
	s := string(d.Kind)
	if d.Concept != "" {
		s += " " + string(d.Concept)
	}
	if d.Key != "" {
		s += "." + string(d.Key)
	}
	if d.Detail != "" {
		s += fmt.Sprintf(" (%s)", d.Detail)
	}
	return s
}

// SortDiagnostics orders diagnostics by concept, key, kind, source and
// detail.
func SortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Concept != b.Concept {
			return a.Concept < b.Concept
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Detail < b.Detail
	})
}
