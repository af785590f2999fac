package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/phuslu/log"
	"github.com/spf13/pflag"
	"golang.org/x/text/message"

	"github.com/saranrapjs/quarterly-statements/pkg/config"
	"github.com/saranrapjs/quarterly-statements/pkg/db"
	"github.com/saranrapjs/quarterly-statements/pkg/extract"
	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
	"github.com/saranrapjs/quarterly-statements/pkg/patterns"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

var printer = message.NewPrinter(message.MatchLanguage("en"))

func main() {
	cfg, err := config.Load("extract", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("extraction failed")
		os.Exit(1)
	}
}

func loadRegistry(cfg *config.Config) (*patterns.Registry, error) {
	if cfg.PatternsDir == "" {
		return patterns.Defaults()
	}
	return patterns.LoadDir(cfg.PatternsDir)
}

// run extracts the manifest's documents, stores their drafts, and
// reassembles the series of every company touched from all of its stored
// drafts, so that documents extracted in earlier runs still count.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer) error {
	if cfg.Manifest == "" {
		return errors.New("a manifest is required (--manifest or STMT_MANIFEST)")
	}
	m, err := loadManifest(cfg.Manifest)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return fmt.Errorf("failed to load pattern sets: %w", err)
	}
	logger.Info().Strs("companies", reg.Companies()).Msg("pattern sets loaded")

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	var docs []filing.Document
	var failures []string
	for _, e := range m.Documents {
		if cfg.MaxAge > 0 {
			stale, err := database.IsDraftStale(e.Unit(), cfg.MaxAge)
			if err != nil {
				logger.Warn().Str("unit", e.Unit().String()).Err(err).Msg("error checking draft staleness")
			} else if !stale {
				logger.Debug().Str("unit", e.Unit().String()).Msg("draft is fresh, skipping")
				continue
			}
		}
		doc, err := e.Document()
		if err != nil {
			logger.Warn().Str("unit", e.Unit().String()).Err(err).Msg("document skipped")
			failures = append(failures, fmt.Sprintf("%s: %v", e.Unit(), err))
			continue
		}
		docs = append(docs, doc)
	}

	r, err := database.StartRun(len(m.Documents))
	if err != nil {
		return err
	}
	logger.Info().Str("run", r.ID).Int("documents", len(docs)).Msg("run started")

	p := &extract.Pipeline{Engine: extract.NewEngine(reg), Workers: cfg.Workers, Logger: logger}
	res, err := p.Run(ctx, docs)
	if err != nil {
		r.Failures = append(failures, err.Error())
		if ferr := database.FinishRun(r); ferr != nil {
			logger.Warn().Err(ferr).Msg("failed to finish run")
		}
		return err
	}
	for _, f := range res.Failures {
		failures = append(failures, f.Error())
	}

	touched := map[string]bool{}
	for i, d := range res.Drafts {
		if d == nil {
			continue
		}
		if err := database.StoreDraft(r.ID, docs[i].Source, d); err != nil {
			return err
		}
		touched[strings.ToUpper(d.Unit.Company)] = true
	}

	var companies []string
	for c := range touched {
		companies = append(companies, c)
	}
	sort.Strings(companies)

	var stored []*record.Series
	for _, company := range companies {
		drafts, err := database.ListDrafts(company)
		if err != nil {
			return err
		}
		for _, s := range extract.Assemble(reg, drafts) {
			if err := database.StoreSeries(r.ID, s); err != nil {
				return err
			}
			stored = append(stored, s)
		}
	}

	r.Failures = failures
	if err := database.FinishRun(r); err != nil {
		return err
	}
	logger.Info().Str("run", r.ID).Int("series", len(stored)).Int("failures", len(failures)).Msg("run finished")

	printSummary(out, stored, failures)
	return nil
}

func amount(v *float64) string {
	if v == nil {
		return "-"
	}
	return printer.Sprintf("%.1f", *v)
}

// printSummary writes one line per record with its headline figures.
func printSummary(w io.Writer, series []*record.Series, failures []string) {
	printer.Fprintf(w, "%-8s %-10s %16s %16s %16s %5s\n", "COMPANY", "PERIOD", "REVENUE", "NET INCOME", "OPERATING CF", "NOTES")
	for _, s := range series {
		for _, q := range s.Records {
			printer.Fprintf(w, "%-8s %-10s %16s %16s %16s %5d\n",
				s.Company,
				q.Period().String(),
				amount(q.Value(metrics.Revenue)),
				amount(q.Value(metrics.NetIncome)),
				amount(q.Value(metrics.OperatingCashFlow)),
				len(q.Diagnostics),
			)
		}
	}
	if len(failures) > 0 {
		printer.Fprintf(w, "\n%d document(s) failed:\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
}
