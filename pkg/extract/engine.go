// Package extract runs the extraction passes: one document at a time through
// the adapter, locator, matcher and parser into fragments, then many
// documents in parallel into reconciled quarterly records.
package extract

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/saranrapjs/quarterly-statements/pkg/adapter"
	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/grid"
	"github.com/saranrapjs/quarterly-statements/pkg/locate"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
	"github.com/saranrapjs/quarterly-statements/pkg/patterns"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

// Engine extracts the configured statements of single documents.
type Engine struct {
	Registry *patterns.Registry
}

func NewEngine(r *patterns.Registry) *Engine {
	return &Engine{Registry: r}
}

// ExtractUnit reads one document into a draft holding one fragment per
// statement its company's dialect configures. Failing to find a statement
// is not an error; only an invalid unit, an unknown company or unreadable
// bytes are.
func (e *Engine) ExtractUnit(doc filing.Document) (*record.Draft, error) {
	if err := doc.Unit.Validate(); err != nil {
		return nil, err
	}
	dialect, err := e.Registry.Resolve(doc.Unit)
	if err != nil {
		return nil, err
	}
	g, err := adapter.Adapt(doc.Bytes, doc.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc.Unit, err)
	}

	draft := &record.Draft{Unit: doc.Unit}
	if g.Empty() && doc.Kind == filing.ShadowDeck {
		draft.Diagnostics = append(draft.Diagnostics, record.Diagnostic{
			Kind:   record.StructuralMiss,
			Source: doc.Kind,
			Detail: "no hidden text layer matching " + adapter.ShadowSignature,
		})
	}

	company := dialect.Company()
	loc := locator(dialect)
	for _, c := range filing.Concepts {
		cd, ok := dialect.Concepts[c]
		if !ok {
			continue
		}
		f := statement(g, loc, doc.Unit, company, cd)
		draft.Fragments = append(draft.Fragments, *f)
	}
	return draft, nil
}

// locator applies the dialect's strategy overrides. Statements with no
// built-in content phrases are scored on the labels their rules name.
func locator(d *patterns.Dialect) *locate.Locator {
	loc := locate.NewLocator()
	for c, cd := range d.Concepts {
		if o := cd.Locate; o != nil {
			loc.Override(c, locate.Strategy{
				Headings: o.Headings,
				Phrases:  o.Phrases,
				Avoid:    o.Avoid,
				MinScore: o.MinScore,
				MaxWalk:  o.MaxWalk,
			})
		}
		if len(loc.Strategy(c).Phrases) == 0 {
			loc.Override(c, locate.Strategy{Phrases: cd.Phrases()})
		}
	}
	return loc
}

// statement runs one concept's pass: locate the table, classify its rows
// top to bottom, read the configured column and normalize the figures into
// the company's scale and currency.
func statement(g *grid.Grid, loc *locate.Locator, u filing.Unit, company *patterns.Company, cd *patterns.ConceptDialect) *record.Fragment {
	c := cd.Concept()
	f := record.NewFragment(c, u.Kind)
	sec, ok := loc.Locate(g, c)
	if !ok {
		f.Note(record.StructuralMiss, "", "no table qualified")
		return f
	}
	f.Located = true
	f.Score = sec.Score
	f.YTD = cd.YTD && !u.Period().IsAnnual()

	scale := company.Scale
	if sec.ScaleFound {
		scale = sec.Scale
	}
	parser := numeric.Parser{Base: scale}

	m := cd.Matcher()
	for _, row := range sec.Table.Rows {
		values := row.Values()
		key, ok := m.ClassifyRow(row.Label(), concepts(values))
		if !ok || len(values) == 0 {
			continue
		}
		if _, seen := f.Values[key]; seen {
			continue
		}
		if cd.Column >= len(values) {
			f.Set(key, nil)
			f.Note(record.NumericMalformed, key, fmt.Sprintf("no figure in column %d", cd.Column))
			continue
		}
		cell := values[cd.Column]
		v, ok := parser.Parse(cell.Text)
		if !ok {
			f.Set(key, nil)
			if !numeric.Blank(cell.Text) {
				f.Note(record.NumericMalformed, key, fmt.Sprintf("%q", cell.Text))
			}
			continue
		}
		if cell.Negated && v > 0 {
			v = -v
		}
		f.Set(key, &v)
	}

	for _, k := range cd.Expected() {
		if _, ok := f.Values[k]; !ok {
			f.Set(k, nil)
			f.Note(record.LabelMiss, k, "no row matched")
		}
	}

	normalize(f, sec, scale, company)
	return f
}

func concepts(values []grid.Cell) []string {
	var names []string
	for _, c := range values {
		if c.Concept != "" {
			names = append(names, c.Concept)
		}
	}
	return names
}

// normalize converts a fragment's figures from the table's presentation
// into the company's reporting scale and currency. Per-share amounts keep
// their units whatever the table scale; share counts keep their currency.
// A table in a currency with no configured rate keeps its keys but loses
// its figures.
func normalize(f *record.Fragment, sec *locate.Section, from numeric.Scale, company *patterns.Company) {
	rate := decimal.NewFromInt(1)
	if sec.Currency != "" && sec.Currency != company.Currency {
		fx, ok := company.FX[sec.Currency]
		if !ok {
			for k := range f.Values {
				f.Values[k] = nil
			}
			f.Note(record.ScaleMismatch, "", fmt.Sprintf("%s table, %s reporting currency, no rate", sec.Currency, company.Currency))
			return
		}
		rate = decimal.NewFromFloat(fx)
	}

	for _, k := range f.Keys() {
		v := f.Values[k]
		if v == nil {
			continue
		}
		def := metrics.Lookup(f.Concept, k)
		x := *v
		if !def.Unscaled {
			x = numeric.Convert(x, from, company.Scale)
		}
		if !def.Count && !rate.Equal(decimal.NewFromInt(1)) {
			x = decimal.NewFromFloat(x).Mul(rate).InexactFloat64()
		}
		f.Values[k] = &x
	}
}
