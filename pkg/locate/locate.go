// Package locate finds the table holding a statement inside a document
// grid, scoring candidate tables by the phrases they contain.
package locate

import (
	"sort"
	"strings"

	"github.com/saranrapjs/quarterly-statements/pkg/grid"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
	"github.com/saranrapjs/quarterly-statements/pkg/textnorm"
)

// Dense tables are preferred on a tied score: a 6 to 20 row statement beats
// a 200 row aggregate that happens to mention the same labels.
const (
	denseMin = 6
	denseMax = 20
)

// Section is a located table together with what was learned about it.
type Section struct {
	Table *grid.Table
	// Index is the table's block position in the grid.
	Index int
	Score int
	// Heading is the text line the table was reached from, if any.
	Heading string
	// Scale the figures are presented in, and whether a presentation note
	// or inline XBRL tag said so.
	Scale      numeric.Scale
	ScaleFound bool
	// Currency is the ISO code named near the table, or "".
	Currency string
}

type candidate struct {
	index   int
	table   *grid.Table
	heading string
	score   int
}

// Locate returns the best table for the strategy, or false when no table
// reaches the minimum score. A returned section may still yield no
// classified rows.
func Locate(g *grid.Grid, s Strategy) (*Section, bool) {
	if s.MaxWalk <= 0 {
		s.MaxWalk = DefaultMaxWalk
	}
	if s.MinScore <= 0 {
		s.MinScore = DefaultMinScore
	}

	headed := headings(g, s)
	var candidates []candidate
	for _, it := range g.Tables() {
		c := candidate{index: it.Index, table: it.Table}
		labels := normalizedLabels(it.Table)
		for _, phrase := range s.Phrases {
			if anyContains(labels, phrase) {
				c.score++
			}
		}
		context := textnorm.Normalize(it.Table.Caption)
		if h, ok := headed[it.Index]; ok {
			c.heading = h
			c.score++
		} else if context != "" && textnorm.ContainsAny(context, s.Headings) {
			c.heading = it.Table.Caption
			c.score++
		}
		for _, phrase := range s.Avoid {
			if anyContains(labels, phrase) || textnorm.Contains(c.heading, phrase) || textnorm.Contains(context, phrase) {
				c.score--
			}
		}
		if c.score >= s.MinScore {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if da, db := dense(a.table), dense(b.table); da != db {
			return da
		}
		if len(a.table.Rows) != len(b.table.Rows) {
			return len(a.table.Rows) < len(b.table.Rows)
		}
		return a.index < b.index
	})
	best := candidates[0]
	sec := &Section{
		Table:   best.table,
		Index:   best.index,
		Score:   best.score,
		Heading: best.heading,
	}
	sec.Scale, sec.ScaleFound, sec.Currency = presentation(g, best.index, s.MaxWalk)
	return sec, true
}

// headings runs the heading strategy: from every text line matching a
// heading phrase, walk forward at most maxWalk blocks to the first table.
// A heading with no table inside the bound is abandoned. The result maps
// table block index to the heading that reached it.
func headings(g *grid.Grid, s Strategy) map[int]string {
	found := map[int]string{}
	if len(s.Headings) == 0 {
		return found
	}
	for i, b := range g.Blocks {
		if b.Kind != grid.TextBlock {
			continue
		}
		norm := textnorm.Normalize(b.Text)
		if !textnorm.ContainsAny(norm, s.Headings) || textnorm.ContainsAny(norm, s.Avoid) {
			continue
		}
		for j := i + 1; j < len(g.Blocks) && j <= i+s.MaxWalk; j++ {
			if g.Blocks[j].Kind == grid.TableBlock {
				if _, ok := found[j]; !ok {
					found[j] = b.Text
				}
				break
			}
		}
	}
	return found
}

func dense(t *grid.Table) bool {
	return len(t.Rows) >= denseMin && len(t.Rows) <= denseMax
}

func normalizedLabels(t *grid.Table) []string {
	var labels []string
	for _, l := range t.Labels() {
		labels = append(labels, textnorm.Normalize(l))
	}
	return labels
}

func anyContains(labels []string, phrase string) bool {
	p := textnorm.Normalize(phrase)
	if p == "" {
		return false
	}
	for _, l := range labels {
		if strings.Contains(l, p) {
			return true
		}
	}
	return false
}

// headerRows is how many leading rows may carry a presentation note.
const headerRows = 3

// presentation reads the scale from the table caption, its first rows and
// the text lines before it (back to the previous table or maxWalk blocks),
// with inline XBRL scale attributes as the fallback. The currency comes from
// presentation notes in the caption or header rows, then from the symbols
// of the value cells, and only then from notes before the table.
func presentation(g *grid.Grid, index, maxWalk int) (scale numeric.Scale, scaleFound bool, currency string) {
	t := g.Blocks[index].Table
	own := []string{t.Caption}
	for i, r := range t.Rows {
		if i == headerRows {
			break
		}
		for _, c := range r.Cells {
			if !c.IsValue() {
				own = append(own, c.Text)
			}
		}
	}
	var before []string
	for j := index - 1; j >= 0 && j >= index-maxWalk; j-- {
		if g.Blocks[j].Kind == grid.TableBlock {
			break
		}
		before = append(before, g.Blocks[j].Text)
	}

	for _, text := range append(own, before...) {
		if scale, scaleFound = numeric.DetectScale(text); scaleFound {
			break
		}
	}
	if !scaleFound {
		scale, scaleFound = taggedScale(t)
	}

	currency = noteCurrency(own)
	if currency == "" {
		currency = cellCurrency(t)
	}
	if currency == "" {
		currency = noteCurrency(before)
	}
	return scale, scaleFound, currency
}

// noteCurrency is the currency named by the first presentation note, such
// as "(In millions of euros)". Prose is skipped: "a stronger euro" says
// nothing about the table's figures.
func noteCurrency(texts []string) string {
	for _, text := range texts {
		if _, ok := numeric.DetectScale(text); !ok {
			continue
		}
		if code, ok := numeric.DetectCurrency(text); ok {
			return code
		}
	}
	return ""
}

// taggedScale is the most common scale attribute among tagged value cells.
func taggedScale(t *grid.Table) (numeric.Scale, bool) {
	counts := map[int]int{}
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			if c.Concept != "" {
				counts[c.Scale]++
			}
		}
	}
	best, bestCount := 0, 0
	for scale, n := range counts {
		if n > bestCount || (n == bestCount && scale > best) {
			best, bestCount = scale, n
		}
	}
	switch s := numeric.Scale(best); s {
	case numeric.Ones, numeric.Thousands, numeric.Millions, numeric.Billions:
		return s, bestCount > 0
	}
	return numeric.Ones, false
}

// cellCurrency is the currency of the first value cell showing a symbol or
// code.
func cellCurrency(t *grid.Table) string {
	for _, r := range t.Rows {
		for _, c := range r.Values() {
			if code, ok := numeric.DetectCurrency(c.Text); ok {
				return code
			}
		}
	}
	return ""
}
