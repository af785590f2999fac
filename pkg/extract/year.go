package extract

import (
	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/reconcile"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

// year holds the merged records of one company fiscal year, keyed by
// quarter, filing.Annual included.
type year map[int]*record.Quarterly

// reconcile turns year-to-date figures into single quarters, then fills the
// fourth quarter from the annual record. Figures are only ever computed
// from complete inputs; every other gap is left null and noted.
func (y year) reconcile() {
	ytd := map[int]reconcile.Values{}
	for q := 1; q <= 4; q++ {
		if r := y[q]; r != nil {
			ytd[q] = entries(r, func(e *record.Entry) bool { return e.YTD })
		}
	}
	// Latest first, so each quarter still sees the cumulative figures of
	// the one before.
	for q := 4; q >= 1; q-- {
		if r := y[q]; r != nil {
			y.decumulate(r, q, ytd)
		}
	}

	annual := y[filing.Annual]
	if annual == nil || (y[1] == nil && y[2] == nil && y[3] == nil && y[4] == nil) {
		return
	}
	q4 := y[4]
	if q4 == nil {
		q4 = record.New(annual.Company, annual.FiscalYear, 4)
		y[4] = q4
	}
	y.fourthQuarter(q4, annual, ytd[3])
}

func (y year) decumulate(r *record.Quarterly, q int, ytd map[int]reconcile.Values) {
	through := ytd[q]
	if len(through) == 0 {
		return
	}
	flows := reconcile.Values{}
	for k, v := range through {
		e := r.Metrics[k]
		def := metrics.Lookup(e.Concept, k)
		switch {
		case q == 1 || def.Nature == metrics.Stock:
			e.YTD = false
		case !def.Derivable():
			e.Value, e.Origin, e.YTD = nil, record.Derived, false
			r.Note(record.Diagnostic{
				Kind:    record.ReconciliationBlocked,
				Concept: e.Concept,
				Key:     k,
				Detail:  "only a year-to-date figure, which is not additive",
			})
		default:
			flows[k] = v
		}
	}
	if len(flows) == 0 {
		return
	}

	prior := ytd[q-1]
	if q == 2 && y[1] != nil {
		// The first quarter's figures are year-to-date however presented.
		prior = entries(y[1], func(*record.Entry) bool { return true })
	}
	d := reconcile.Decumulate(q, flows, within(prior, flows))
	for k, v := range d.Values {
		e := r.Metrics[k]
		e.Value, e.Origin, e.YTD = v, record.Derived, false
	}
	for _, b := range d.Blocked {
		e := r.Metrics[b.Key]
		e.Value, e.Origin, e.YTD = nil, record.Derived, false
		r.Note(record.Diagnostic{
			Kind:    record.ReconciliationBlocked,
			Concept: e.Concept,
			Key:     b.Key,
			Detail:  b.String(),
		})
	}
}

// fourthQuarter fills the keys q4 does not report. Additive flows are the
// annual figure less the first three quarters, or less the third quarter's
// year-to-date figure where one was reported. Stocks are the fiscal
// year-end balances. Per-share figures and share counts are left alone.
func (y year) fourthQuarter(q4, annual *record.Quarterly, ytd3 reconcile.Values) {
	flows := reconcile.Values{}
	viaYTD := reconcile.Values{}
	conceptOf := map[metrics.Key]filing.Concept{}
	for k, e := range annual.Metrics {
		if q4.Has(k) || e.Composite {
			continue
		}
		def := metrics.Lookup(e.Concept, k)
		conceptOf[k] = e.Concept
		switch {
		case def.Nature == metrics.Stock:
			if e.Value != nil {
				v := *e.Value
				q4.Fill(k, record.Entry{Value: &v, Origin: record.Reported, Concept: e.Concept, Source: e.Source})
			}
		case def.Derivable():
			if _, ok := ytd3[k]; ok {
				viaYTD[k] = e.Value
			} else {
				flows[k] = e.Value
			}
		}
	}

	derivations := []reconcile.Derivation{
		reconcile.DeriveQ4(flows, y.values(1, flows), y.values(2, flows), y.values(3, flows)),
		reconcile.Difference(
			reconcile.Input{Name: "annual", Values: viaYTD},
			reconcile.Input{Name: "Q3 year-to-date", Values: within(ytd3, viaYTD)},
		),
	}
	for _, d := range derivations {
		for k, v := range d.Values {
			q4.Fill(k, record.Entry{Value: v, Origin: record.Derived, Concept: conceptOf[k]})
		}
		for _, b := range d.Blocked {
			if def, ok := metrics.Fixed(b.Key); ok && def.Composite {
				// Left to the composite formula.
				continue
			}
			q4.Fill(b.Key, record.Entry{Origin: record.Derived, Concept: conceptOf[b.Key]})
			q4.Note(record.Diagnostic{
				Kind:    record.ReconciliationBlocked,
				Concept: conceptOf[b.Key],
				Key:     b.Key,
				Detail:  b.String(),
			})
		}
	}
}

// values returns quarter q's figures for the keys of like.
func (y year) values(q int, like reconcile.Values) reconcile.Values {
	r := y[q]
	if r == nil {
		return reconcile.Values{}
	}
	return within(entries(r, func(*record.Entry) bool { return true }), like)
}

func entries(r *record.Quarterly, keep func(*record.Entry) bool) reconcile.Values {
	v := reconcile.Values{}
	for k, e := range r.Metrics {
		if !e.Composite && keep(e) {
			v[k] = e.Value
		}
	}
	return v
}

func within(v, like reconcile.Values) reconcile.Values {
	return v.Only(func(k metrics.Key) bool {
		_, ok := like[k]
		return ok
	})
}
