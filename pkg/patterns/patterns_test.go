package patterns

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
)

const acme = `
company: acme
currency: USD
dialects:
  - fromYear: 2022
    kinds: [layout-text]
    concepts:
      segment-revenue:
        rules:
          - {key: widgetsRevenue, match: ["widget sales"]}
  - fromYear: 2020
    concepts:
      income:
        rules:
          - key: revenue
            match: ["contains:net sales"]
          - key: costOfRevenue
            match: ["contains:net sales"]
      segment-revenue:
        sections:
          - name: widgets
            start: ["widgets segment"]
            end: ["prefix:total"]
          - name: gadgets
            start: ["gadgets segment"]
            end: ["prefix:total"]
        rules:
          - {key: widgetsRevenue, section: widgets, match: ["prefix:total"]}
          - {key: gadgetsRevenue, section: gadgets, match: ["prefix:total"]}
          - {key: otherRevenue, match: ["re:^other( revenue)?$", "ixbrl:acme:OtherRevenue"]}
`

func mustParse(t *testing.T, s string) *Company {
	t.Helper()
	c, err := Parse([]byte(s))
	require.NoError(t, err)
	return c
}

func TestParseDefaults(t *testing.T) {
	c := mustParse(t, acme)
	assert.Equal(t, "acme", c.Company)
	assert.Equal(t, numeric.Millions, c.Scale, "scale defaults to millions")
	require.Len(t, c.Dialects, 2)
	assert.Equal(t, c, c.Dialects[0].Company())
}

func TestFirstMatchPrecedence(t *testing.T) {
	c := mustParse(t, acme)
	m := c.Dialects[1].Concepts[filing.Income].Matcher()

	key, ok := m.Classify("Total net sales")
	assert.True(t, ok)
	assert.Equal(t, metrics.Revenue, key, "the earlier rule wins over a later overlapping one")

	key, ok = m.Classify("TOTAL COST OF SALES:")
	assert.True(t, ok)
	assert.Equal(t, metrics.CostOfRevenue, key, "generic rules follow the company's own")

	_, ok = m.Classify("Letter from the CEO")
	assert.False(t, ok)
}

func TestSectionDisambiguatesDuplicateTotals(t *testing.T) {
	c := mustParse(t, acme)
	m := c.Dialects[1].Concepts[filing.SegmentRevenue].Matcher()

	rows := []struct {
		label   string
		key     metrics.Key
		section string
	}{
		{"Widgets segment", "", "widgets"},
		{"Hardware", "", "widgets"},
		{"Total", "widgetsRevenue", None},
		{"Gadgets segment", "", "gadgets"},
		{"Total", "gadgetsRevenue", None},
		{"Total", "", None},
		{"Other revenue", "otherRevenue", None},
	}
	for _, r := range rows {
		key, ok := m.Classify(r.label)
		assert.Equal(t, r.key != "", ok, r.label)
		assert.Equal(t, r.key, key, r.label)
		assert.Equal(t, r.section, m.Section(), r.label)
	}
}

func TestClassifyRowByInlineConcept(t *testing.T) {
	c := mustParse(t, acme)
	m := c.Dialects[1].Concepts[filing.SegmentRevenue].Matcher()
	key, ok := m.ClassifyRow("Services and licensing", []string{"acme:OtherRevenue"})
	assert.True(t, ok)
	assert.Equal(t, metrics.Key("otherRevenue"), key)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		label   string
		match   bool
	}{
		{"Total stockholders’ equity", "total stockholders' equity", true},
		{"total assets", "total assets and liabilities", false},
		{"prefix:total assets", "total assets and liabilities", true},
		{"contains:operating activities", "net cash provided by operating activities", true},
		{"re:^income .* taxes$", "income before provision for income taxes", true},
		{"re:^income .* taxes$", "net income", false},
	}
	for _, tt := range tests {
		p, err := Compile(tt.pattern)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.match, p.Match(tt.label, nil), "%s ~ %s", tt.pattern, tt.label)
	}

	p, err := Compile("ixbrl:Assets")
	require.NoError(t, err)
	assert.True(t, p.Match("", []string{"us-gaap:Assets"}))
	assert.False(t, p.Match("total assets", []string{"us-gaap:AssetsCurrent"}))

	for _, bad := range []string{"re:([", "prefix: :", "ixbrl:", "(1)"} {
		_, err := Compile(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidation(t *testing.T) {
	tests := map[string]string{
		"missing currency": `
company: x
dialects: [{concepts: {income: {}}}]`,
		"no dialects": `
company: x
currency: USD`,
		"unknown concept": `
company: x
currency: USD
dialects: [{concepts: {ebitda: {}}}]`,
		"unknown kind": `
company: x
currency: USD
dialects: [{kinds: [spreadsheet], concepts: {income: {}}}]`,
		"key outside vocabulary": `
company: x
currency: USD
dialects: [{concepts: {balance: {rules: [{key: revenue, match: [sales]}]}}}]`,
		"snake case segment key": `
company: x
currency: USD
dialects: [{concepts: {segment-revenue: {rules: [{key: cloud_revenue, match: [cloud]}]}}}]`,
		"unknown section": `
company: x
currency: USD
dialects: [{concepts: {segment-revenue: {rules: [{key: cloudRevenue, section: cloud, match: [cloud]}]}}}]`,
		"bad regexp": `
company: x
currency: USD
dialects: [{concepts: {income: {rules: [{key: revenue, match: ["re:(("]}]}}}]`,
		"misspelled field": `
company: x
currency: USD
dialects: [{concepts: {income: {rulez: []}}}]`,
		"inverted years": `
company: x
currency: USD
dialects: [{fromYear: 2024, toYear: 2020, concepts: {income: {}}}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	r := &Registry{companies: map[string]*Company{}}
	require.NoError(t, r.Add(mustParse(t, acme)))

	d, err := r.Resolve(filing.Unit{Company: "ACME", FiscalYear: 2023, Quarter: 1, Kind: filing.LayoutText})
	require.NoError(t, err)
	assert.Contains(t, d.Concepts, filing.SegmentRevenue)
	assert.NotContains(t, d.Concepts, filing.Income)

	d, err = r.Resolve(filing.Unit{Company: "acme", FiscalYear: 2021, Quarter: 1, Kind: filing.LayoutText})
	require.NoError(t, err)
	assert.Contains(t, d.Concepts, filing.Income)

	_, err = r.Resolve(filing.Unit{Company: "acme", FiscalYear: 2019, Kind: filing.TableHTML})
	assert.True(t, errors.Is(err, ErrNoDialect))

	_, err = r.Resolve(filing.Unit{Company: "globex", FiscalYear: 2023, Kind: filing.TableHTML})
	assert.True(t, errors.Is(err, ErrUnknownCompany))

	assert.Error(t, r.Add(mustParse(t, acme)), "duplicate company")
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"acme.yaml":  {Data: []byte(acme)},
		"README.txt": {Data: []byte("not a pattern set")},
	}
	r, err := Load(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME"}, r.Companies())

	fsys["broken.yml"] = &fstest.MapFile{Data: []byte("company: [")}
	_, err = Load(fsys)
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	r, err := Defaults()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "INTC", "PLTR"}, r.Companies())

	d, err := r.Resolve(filing.Unit{Company: "pltr", FiscalYear: 2024, Quarter: 3, Kind: filing.ShadowDeck})
	require.NoError(t, err)
	assert.Len(t, d.Concepts, 2)

	d, err = r.Resolve(filing.Unit{Company: "aapl", FiscalYear: 2024, Quarter: 3, Kind: filing.TableHTML})
	require.NoError(t, err)
	m := d.Concepts[filing.SegmentProfit].Matcher()
	for _, label := range []string{"Americas:", "Net sales", "Operating income", "Europe:", "Net sales"} {
		m.Classify(label)
	}
	key, ok := m.Classify("Operating income")
	assert.True(t, ok)
	assert.Equal(t, metrics.Key("europeOperatingIncome"), key)
}

func TestPhrases(t *testing.T) {
	c := mustParse(t, acme)
	cd := c.Dialects[0].Concepts[filing.SegmentRevenue]
	assert.Equal(t, []string{"widget sales"}, cd.Phrases())
	assert.Equal(t, filing.SegmentRevenue, cd.Concept())
}

func TestExpected(t *testing.T) {
	c := mustParse(t, acme)
	income := c.Dialects[1].Concepts[filing.Income]
	assert.Equal(t, []metrics.Key{
		metrics.Revenue, metrics.OperatingIncome, metrics.NetIncome, metrics.CostOfRevenue,
	}, income.Expected())

	segments := c.Dialects[1].Concepts[filing.SegmentRevenue]
	assert.Equal(t, []metrics.Key{"widgetsRevenue", "gadgetsRevenue", "otherRevenue"}, segments.Expected())
}
