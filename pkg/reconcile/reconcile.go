// Package reconcile derives values a company never reported for a period
// from the ones it did: the fourth quarter from the annual total, and single
// quarters from year-to-date figures. A value is derived only when every
// input is present; anything less is reported as blocked, never estimated.
package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
)

// Values maps keys to figures; a nil pointer is a known-absent figure.
type Values map[metrics.Key]*float64

// Input is a named operand, named so that a blocked key can say what was
// missing.
type Input struct {
	Name   string
	Values Values
}

// Blocked is a key that could not be derived.
type Blocked struct {
	Key     metrics.Key
	Missing []string
}

func (b Blocked) String() string {
	return fmt.Sprintf("%s: missing %s", b.Key, strings.Join(b.Missing, ", "))
}

// Derivation is the outcome for every key seen in any input.
type Derivation struct {
	Values  Values
	Blocked []Blocked
}

// Difference computes total − Σparts for every key that is non-null in all
// inputs, with exact decimal arithmetic. Every other key seen in any input
// is blocked, listing the inputs it is missing from.
func Difference(total Input, parts ...Input) Derivation {
	inputs := append([]Input{total}, parts...)
	keys := map[metrics.Key]bool{}
	for _, in := range inputs {
		for k := range in.Values {
			keys[k] = true
		}
	}

	d := Derivation{Values: Values{}}
	for _, k := range sortedKeys(keys) {
		var missing []string
		for _, in := range inputs {
			if in.Values[k] == nil {
				missing = append(missing, in.Name)
			}
		}
		if len(missing) > 0 {
			d.Blocked = append(d.Blocked, Blocked{Key: k, Missing: missing})
			continue
		}
		v := decimal.NewFromFloat(*total.Values[k])
		for _, p := range parts {
			v = v.Sub(decimal.NewFromFloat(*p.Values[k]))
		}
		f := v.InexactFloat64()
		d.Values[k] = &f
	}
	return d
}

// DeriveQ4 computes q4 = annual − (q1 + q2 + q3) per key.
func DeriveQ4(annual, q1, q2, q3 Values) Derivation {
	return Difference(
		Input{Name: "annual", Values: annual},
		Input{Name: "Q1", Values: q1},
		Input{Name: "Q2", Values: q2},
		Input{Name: "Q3", Values: q3},
	)
}

// Decumulate turns the year-to-date figures through quarter q into the
// figures of quarter q alone, given the year-to-date figures through the
// previous quarter.
func Decumulate(q int, ytd, prior Values) Derivation {
	return Difference(
		Input{Name: fmt.Sprintf("Q%d year-to-date", q), Values: ytd},
		Input{Name: fmt.Sprintf("Q%d year-to-date", q-1), Values: prior},
	)
}

// Only restricts values to the keys accepted by keep.
func (v Values) Only(keep func(metrics.Key) bool) Values {
	out := Values{}
	for k, x := range v {
		if keep(k) {
			out[k] = x
		}
	}
	return out
}

func sortedKeys(set map[metrics.Key]bool) []metrics.Key {
	keys := make([]metrics.Key, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
