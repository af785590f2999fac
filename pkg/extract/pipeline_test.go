package extract

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/patterns"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

func fragment(c filing.Concept, ytd bool, values map[metrics.Key]float64) record.Fragment {
	f := record.NewFragment(c, filing.TableHTML)
	f.Located = true
	f.YTD = ytd
	for k, v := range values {
		v := v
		f.Set(k, &v)
	}
	return *f
}

func newDraft(q int, fragments ...record.Fragment) *record.Draft {
	return &record.Draft{
		Unit:      filing.Unit{Company: "acme", FiscalYear: 2024, Quarter: q, Kind: filing.TableHTML},
		Fragments: fragments,
	}
}

func quarterDraft(q int, revenue, ytdCash, assets float64) *record.Draft {
	return newDraft(q,
		fragment(filing.Income, false, map[metrics.Key]float64{metrics.Revenue: revenue, metrics.EPSBasic: 0.5}),
		fragment(filing.Balance, false, map[metrics.Key]float64{metrics.TotalAssets: assets}),
		fragment(filing.CashFlow, q != filing.Annual, map[metrics.Key]float64{metrics.OperatingCashFlow: ytdCash}),
	)
}

func onlySeries(t *testing.T, series []*record.Series) *record.Series {
	t.Helper()
	require.Len(t, series, 1)
	return series[0]
}

func entry(t *testing.T, s *record.Series, q int, k metrics.Key) *record.Entry {
	t.Helper()
	r := s.Record(filing.Period{FiscalYear: 2024, Quarter: q})
	require.NotNil(t, r, "no record for quarter %d", q)
	return r.Metrics[k]
}

func TestAssembleReconciles(t *testing.T) {
	drafts := []*record.Draft{
		quarterDraft(filing.Annual, 460, 70, 600),
		quarterDraft(1, 100, 10, 500),
		quarterDraft(2, 110, 25, 520),
		quarterDraft(3, 120, 45, 530),
	}
	s := onlySeries(t, Assemble(testRegistry(t), drafts))
	assert.Equal(t, "ACME", s.Company)
	assert.Equal(t, "USD", s.Currency)
	assert.Equal(t, "millions", s.Scale)

	var periods []filing.Period
	for _, r := range s.Records {
		periods = append(periods, r.Period())
	}
	assert.Equal(t, []filing.Period{
		{FiscalYear: 2024, Quarter: 1},
		{FiscalYear: 2024, Quarter: 2},
		{FiscalYear: 2024, Quarter: 3},
		{FiscalYear: 2024, Quarter: 4},
		{FiscalYear: 2024, Quarter: filing.Annual},
	}, periods)

	tests := []struct {
		name   string
		q      int
		key    metrics.Key
		want   float64
		origin record.Origin
	}{
		{"first quarter is its own year to date", 1, metrics.OperatingCashFlow, 10, record.Reported},
		{"second quarter de-cumulated", 2, metrics.OperatingCashFlow, 15, record.Derived},
		{"third quarter de-cumulated", 3, metrics.OperatingCashFlow, 20, record.Derived},
		{"fourth quarter from the third quarter year to date", 4, metrics.OperatingCashFlow, 25, record.Derived},
		{"fourth quarter revenue", 4, metrics.Revenue, 130, record.Derived},
		{"year-end balance carried", 4, metrics.TotalAssets, 600, record.Reported},
		{"annual untouched", filing.Annual, metrics.Revenue, 460, record.Reported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entry(t, s, tt.q, tt.key)
			require.NotNil(t, e)
			require.NotNil(t, e.Value)
			assert.Equal(t, tt.want, *e.Value)
			assert.Equal(t, tt.origin, e.Origin)
			assert.False(t, e.YTD)
		})
	}

	assert.Equal(t, filing.TableHTML, entry(t, s, 4, metrics.TotalAssets).Source)
	assert.Nil(t, entry(t, s, 4, metrics.EPSBasic), "per-share figures are never derived")
	assert.Empty(t, s.Record(filing.Period{FiscalYear: 2024, Quarter: 4}).Diagnostics)
}

func TestAssembleBlocked(t *testing.T) {
	drafts := []*record.Draft{
		quarterDraft(filing.Annual, 460, 70, 600),
		quarterDraft(1, 100, 10, 500),
		quarterDraft(3, 120, 45, 530),
	}
	s := onlySeries(t, Assemble(testRegistry(t), drafts))

	q3 := entry(t, s, 3, metrics.OperatingCashFlow)
	require.NotNil(t, q3)
	assert.Nil(t, q3.Value, "no second quarter year to date to subtract")
	assert.Equal(t, record.Derived, q3.Origin)

	q4 := entry(t, s, 4, metrics.Revenue)
	require.NotNil(t, q4)
	assert.Nil(t, q4.Value)

	cash := entry(t, s, 4, metrics.OperatingCashFlow)
	require.NotNil(t, cash.Value, "the third quarter year to date still covers the first three quarters")
	assert.Equal(t, 25.0, *cash.Value)

	var blocked []string
	for _, r := range s.Records {
		for _, d := range r.Diagnostics {
			if d.Kind == record.ReconciliationBlocked {
				blocked = append(blocked, r.Period().String()+" "+d.String())
			}
		}
	}
	assert.Equal(t, []string{
		"FY2024 Q3 reconciliation-blocked cashflow.operatingCashFlow (operatingCashFlow: missing Q2 year-to-date)",
		"FY2024 Q4 reconciliation-blocked income.revenue (revenue: missing Q2)",
	}, blocked)
}

func TestAssembleMergePriority(t *testing.T) {
	html := newDraft(1, fragment(filing.Income, false, map[metrics.Key]float64{metrics.Revenue: 100}))
	text := &record.Draft{
		Unit: filing.Unit{Company: "ACME", FiscalYear: 2024, Quarter: 1, Kind: filing.LayoutText},
		Fragments: []record.Fragment{
			*record.NewFragment(filing.Income, filing.LayoutText),
		},
	}
	text.Fragments[0].Located = true
	revenue, opex := 99.0, 40.0
	text.Fragments[0].Set(metrics.Revenue, &revenue)
	text.Fragments[0].Set(metrics.OperatingExpenses, &opex)

	// The press release comes first in the input; the filing still wins.
	s := onlySeries(t, Assemble(testRegistry(t), []*record.Draft{text, html}))
	r := s.Record(filing.Period{FiscalYear: 2024, Quarter: 1})
	require.NotNil(t, r)
	assert.Equal(t, 100.0, *r.Metrics[metrics.Revenue].Value)
	assert.Equal(t, filing.TableHTML, r.Metrics[metrics.Revenue].Source)
	assert.Equal(t, 40.0, *r.Metrics[metrics.OperatingExpenses].Value)
	assert.Equal(t, filing.LayoutText, r.Metrics[metrics.OperatingExpenses].Source)
}

func testDocuments() []filing.Document {
	cash := statementHTML(
		"CONDENSED CONSOLIDATED STATEMENTS OF CASH FLOWS",
		"(In millions)",
		row{"Net income", "200"},
		row{"Cash generated by operating activities", "410"},
		row{"Payments for acquisition of property, plant and equipment", "(90)"},
		row{"Cash used in investing activities", "(150)"},
	)
	return []filing.Document{
		document(1, incomeStatement, balanceSheet, cash),
		document(2, incomeStatement, balanceSheet, cash),
		document(filing.Annual, incomeStatement, balanceSheet, cash),
	}
}

func TestPipelineRun(t *testing.T) {
	docs := testDocuments()
	unknown := document(3, incomeStatement)
	unknown.Company = "GLOBEX"
	docs = append(docs, unknown)

	p := &Pipeline{Engine: NewEngine(testRegistry(t)), Workers: 2}
	res, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, res.Drafts, len(docs))
	assert.Nil(t, res.Drafts[3])
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "GLOBEX", res.Failures[0].Unit.Company)
	assert.True(t, errors.Is(res.Failures[0], patterns.ErrUnknownCompany))

	s := onlySeries(t, res.Series)
	q1 := s.Record(filing.Period{FiscalYear: 2024, Quarter: 1})
	require.NotNil(t, q1)
	assert.Equal(t, 1000.0, *q1.Metrics[metrics.Revenue].Value)
	assert.Equal(t, record.Located, q1.Confidence[filing.Income].Status)
	assert.Equal(t, record.NotLocated, q1.Confidence[filing.SegmentRevenue].Status)

	fcf := q1.Metrics[metrics.FreeCashFlow]
	require.NotNil(t, fcf)
	assert.True(t, fcf.Composite)
	assert.Equal(t, 320.0, *fcf.Value)

	gross := q1.Metrics[metrics.GrossProfit]
	assert.False(t, gross.Composite, "the reported gross margin is kept")
	assert.Equal(t, 400.0, *gross.Value)

	q2 := s.Record(filing.Period{FiscalYear: 2024, Quarter: 2})
	require.NotNil(t, q2)
	assert.Equal(t, 0.0, *q2.Metrics[metrics.OperatingCashFlow].Value)
}

func TestPipelineIdempotent(t *testing.T) {
	reg := testRegistry(t)
	var outputs [][]byte
	for _, workers := range []int{1, 3, 8} {
		p := &Pipeline{Engine: NewEngine(reg), Workers: workers}
		res, err := p.Run(context.Background(), testDocuments())
		require.NoError(t, err)
		b, err := json.Marshal(res.Series)
		require.NoError(t, err)
		outputs = append(outputs, b)
	}
	assert.Equal(t, string(outputs[0]), string(outputs[1]))
	assert.Equal(t, string(outputs[0]), string(outputs[2]))
}

func TestPipelineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Engine: NewEngine(testRegistry(t))}
	_, err := p.Run(ctx, testDocuments())
	assert.ErrorIs(t, err, context.Canceled)
}
