package extract

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/patterns"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

const DefaultWorkers = 4

// Pipeline extracts many documents in parallel and folds their drafts into
// one reconciled series per company.
type Pipeline struct {
	Engine  *Engine
	Workers int
	Logger  *log.Logger
}

// Failure is a document that could not be extracted at all.
type Failure struct {
	Unit   filing.Unit
	Source string
	Err    error
}

func (f Failure) Error() string {
	if f.Source != "" {
		return fmt.Sprintf("%s (%s): %v", f.Unit, f.Source, f.Err)
	}
	return fmt.Sprintf("%s: %v", f.Unit, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Result is the outcome of a run. Drafts holds one entry per input
// document, nil where that document failed.
type Result struct {
	Drafts   []*record.Draft
	Series   []*record.Series
	Failures []Failure
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return &log.DefaultLogger
}

// Run extracts every document, then merges and reconciles. A document that
// fails only costs its own draft; cancelling ctx abandons the documents not
// yet started and fails the run.
func (p *Pipeline) Run(ctx context.Context, docs []filing.Document) (*Result, error) {
	logger := p.logger()
	workers := p.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	drafts := make([]*record.Draft, len(docs))
	errs := make([]error, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			d, err := p.Engine.ExtractUnit(doc)
			if err != nil {
				errs[i] = err
				logger.Warn().Str("unit", doc.Unit.String()).Str("source", doc.Source).Err(err).Msg("document skipped")
				return nil
			}
			drafts[i] = d
			logger.Debug().Str("unit", doc.Unit.String()).Int("fragments", len(d.Fragments)).Dur("took", time.Since(start)).Msg("document extracted")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	res := &Result{Drafts: drafts}
	for i, err := range errs {
		if err != nil {
			res.Failures = append(res.Failures, Failure{Unit: docs[i].Unit, Source: docs[i].Source, Err: err})
		}
	}
	res.Series = Assemble(p.Engine.Registry, drafts)
	for _, s := range res.Series {
		logger.Info().Str("company", s.Company).Int("records", len(s.Records)).Msg("series assembled")
	}
	return res, nil
}

type period struct {
	company string
	filing.Period
}

type fiscalYear struct {
	company string
	fy      int
}

// Assemble merges drafts into records per company period, reconciles each
// fiscal year, computes composites and returns the series sorted by
// company. Nil drafts are skipped. The output depends only on the drafts'
// content and order.
func Assemble(reg *patterns.Registry, drafts []*record.Draft) []*record.Series {
	fragments := map[period][]record.Fragment{}
	notes := map[period][]record.Diagnostic{}
	for _, d := range drafts {
		if d == nil {
			continue
		}
		k := period{company: companyID(reg, d.Unit.Company), Period: d.Unit.Period()}
		fragments[k] = append(fragments[k], d.Fragments...)
		notes[k] = append(notes[k], d.Diagnostics...)
	}

	years := map[fiscalYear]year{}
	for k, fs := range fragments {
		sort.SliceStable(fs, func(i, j int) bool {
			a, b := fs[i], fs[j]
			if a.Concept != b.Concept {
				return a.Concept.Order() < b.Concept.Order()
			}
			return a.Source.Priority() < b.Source.Priority()
		})
		q := record.Merge(k.company, k.FiscalYear, k.Quarter, fs)
		q.Note(notes[k]...)
		fy := fiscalYear{company: k.company, fy: k.FiscalYear}
		if years[fy] == nil {
			years[fy] = year{}
		}
		years[fy][k.Quarter] = q
	}

	byCompany := map[string]*record.Series{}
	for fy, y := range years {
		y.reconcile()
		s := byCompany[fy.company]
		if s == nil {
			s = &record.Series{Company: fy.company}
			if c, err := reg.Company(fy.company); err == nil {
				s.Currency = c.Currency
				s.Scale = c.Scale.String()
			}
			byCompany[fy.company] = s
		}
		for _, q := range y {
			q.Composites()
			q.Finish()
			s.Records = append(s.Records, q)
		}
	}

	series := make([]*record.Series, 0, len(byCompany))
	for _, s := range byCompany {
		s.Sort()
		series = append(series, s)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Company < series[j].Company })
	return series
}

// companyID is the company id as its configuration spells it, so that
// "aapl" and "AAPL" documents land in one series.
func companyID(reg *patterns.Registry, id string) string {
	if c, err := reg.Company(id); err == nil {
		return c.Company
	}
	return id
}
