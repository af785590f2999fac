package record

import (
	"github.com/shopspring/decimal"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
)

type term struct {
	key  metrics.Key
	sign int
	abs  bool
}

func plus(k metrics.Key) term     { return term{key: k, sign: 1} }
func minus(k metrics.Key) term    { return term{key: k, sign: -1} }
func minusAbs(k metrics.Key) term { return term{key: k, sign: -1, abs: true} }

// formula is a composite key with its alternative definitions, tried in
// order: the first whose operands are all present is used.
type formula struct {
	key     metrics.Key
	concept filing.Concept
	forms   [][]term
}

var formulas = []formula{
	{metrics.SGA, filing.Income, [][]term{
		{plus(metrics.SalesAndMarketing), plus(metrics.GeneralAndAdministrative)},
	}},
	{metrics.GrossProfit, filing.Income, [][]term{
		{plus(metrics.Revenue), minus(metrics.CostOfRevenue)},
	}},
	{metrics.NonOperatingIncome, filing.Income, [][]term{
		{plus(metrics.IncomeBeforeTax), minus(metrics.OperatingIncome)},
		{plus(metrics.InterestIncome), plus(metrics.InterestExpense), plus(metrics.OtherIncomeNet)},
	}},
	{metrics.FreeCashFlow, filing.CashFlow, [][]term{
		{plus(metrics.OperatingCashFlow), minusAbs(metrics.CapitalExpenditure)},
	}},
}

// Composites computes the composite keys a record does not report. A
// reported figure is never replaced, and a composite with any operand
// missing is null rather than a partial sum.
func (q *Quarterly) Composites() {
	for _, f := range formulas {
		if q.Has(f.key) || !q.mentions(f) {
			continue
		}
		var value *float64
		for _, form := range f.forms {
			if v, ok := q.evaluate(form); ok {
				value = v
				break
			}
		}
		q.Metrics[f.key] = &Entry{
			Value:     value,
			Origin:    Derived,
			Concept:   f.concept,
			Composite: true,
		}
	}
}

// mentions reports whether any operand of f was extracted at all, null or
// not. Records of unrelated statements get no composite entries.
func (q *Quarterly) mentions(f formula) bool {
	for _, form := range f.forms {
		for _, t := range form {
			if _, ok := q.Metrics[t.key]; ok {
				return true
			}
		}
	}
	return false
}

func (q *Quarterly) evaluate(form []term) (*float64, bool) {
	sum := decimal.Zero
	for _, t := range form {
		v := q.Value(t.key)
		if v == nil {
			return nil, false
		}
		d := decimal.NewFromFloat(*v)
		if t.abs {
			d = d.Abs()
		}
		if t.sign < 0 {
			d = d.Neg()
		}
		sum = sum.Add(d)
	}
	f := sum.InexactFloat64()
	return &f, true
}
