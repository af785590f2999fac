package adapter

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/grid"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
)

var pdfMagic = []byte("%PDF")

func adaptLayout(b []byte) (*grid.Grid, error) {
	var lines []string
	if bytes.HasPrefix(b, pdfMagic) {
		var err error
		if lines, err = pdfLines(b); err != nil {
			return nil, err
		}
	} else {
		lines = strings.Split(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	}
	return FromLines(lines, filing.LayoutText), nil
}

type lineKind int

const (
	textLine lineKind = iota
	rowLine
	valuesLine
)

type line struct {
	kind   lineKind
	label  string
	values []string
}

// splitLine separates a physical line into a leading label and the run of
// number-like tokens that ends it.
func splitLine(s string) line {
	tokens := strings.Fields(s)
	i := len(tokens)
scan:
	for i > 0 {
		tok := tokens[i-1]
		switch {
		case numeric.LooksNumeric(tok) || numeric.HasMagnitude(tok):
			i--
		case numeric.MagnitudeWord(tok) && i >= 2 && numeric.LooksNumeric(tokens[i-2]):
			i -= 2
		default:
			break scan
		}
	}
	// A year closing the label ("Notes due 2030") is not a figure when the
	// figures after it are formatted.
	if i > 0 && len(tokens)-i >= 2 && isYear(tokens[i]) && formatted(tokens[i+1]) {
		i++
	}
	// A bare currency symbol belongs to the value after it.
	var values []string
	var carry string
	for _, tok := range tokens[i:] {
		switch {
		case isCurrencySymbol(tok) || tok == "(":
			carry += tok
		case isClosing(tok) && len(values) > 0:
			values[len(values)-1] += tok
		case numeric.MagnitudeWord(tok) && len(values) > 0:
			values[len(values)-1] += " " + tok
		default:
			values = append(values, carry+tok)
			carry = ""
		}
	}
	label := strings.Join(tokens[:i], " ")
	if carry != "" {
		label = strings.TrimSpace(label + " " + carry)
	}
	if !hasNumber(values) || dateHeader(values) {
		return line{kind: textLine, label: strings.Join(tokens, " ")}
	}
	if label == "" {
		return line{kind: valuesLine, values: values}
	}
	if strings.IndexFunc(label, unicode.IsLetter) < 0 {
		return line{kind: textLine, label: strings.Join(tokens, " ")}
	}
	return line{kind: rowLine, label: label, values: values}
}

func isYear(tok string) bool {
	n, err := strconv.Atoi(tok)
	return err == nil && len(tok) == 4 && n >= 1900 && n <= 2100
}

func formatted(tok string) bool {
	return strings.ContainsAny(tok, ",.()$€£¥")
}

// hasNumber keeps lines of dashes alone (rules drawn in text) from passing
// as values.
func hasNumber(values []string) bool {
	for _, v := range values {
		if strings.IndexFunc(v, unicode.IsDigit) >= 0 {
			return true
		}
	}
	return false
}

// FromLines builds a grid from physical text lines: a label followed by
// numeric tokens is a table row, a label-only line directly followed by a
// values-only line is joined into one row, and runs of rows form a table.
// Label-only lines inside a run are kept as rows without values, since they
// are usually section headings such as "Current assets:"; such a heading
// may also open a run.
func FromLines(raw []string, kind filing.Kind) *grid.Grid {
	var lines []line
	for i := 0; i < len(raw); i++ {
		s := strings.TrimSpace(raw[i])
		if s == "" {
			continue
		}
		l := splitLine(s)
		if l.kind == textLine {
			if next, ok := nextLine(raw, i); ok {
				if nl := splitLine(next.text); nl.kind == valuesLine {
					l = line{kind: rowLine, label: l.label, values: nl.values}
					i = next.index
				}
			}
		}
		lines = append(lines, l)
	}

	g := &grid.Grid{Kind: kind}
	var table *grid.Table
	flush := func() {
		g.AddTable(table)
		table = nil
	}
	for i, l := range lines {
		switch l.kind {
		case rowLine:
			if table == nil {
				table = &grid.Table{}
			}
			table.Rows = append(table.Rows, layoutRow(l.label, l.values))
		case valuesLine:
			if table != nil {
				table.Rows = append(table.Rows, layoutRow("", l.values))
			}
		case textLine:
			nextIsRow := i+1 < len(lines) && lines[i+1].kind == rowLine
			if nextIsRow && (table != nil || strings.HasSuffix(l.label, ":")) {
				if table == nil {
					table = &grid.Table{}
				}
				table.Rows = append(table.Rows, layoutRow(l.label, nil))
				continue
			}
			flush()
			g.AddText(l.label)
		}
	}
	flush()
	return g
}

type indexedLine struct {
	index int
	text  string
}

func nextLine(raw []string, i int) (indexedLine, bool) {
	for j := i + 1; j < len(raw); j++ {
		if s := strings.TrimSpace(raw[j]); s != "" {
			return indexedLine{index: j, text: s}, true
		}
	}
	return indexedLine{}, false
}

// dateHeader spots column headers such as "2024 2023" or the tail of
// "June 29, 2024 July 1, 2023": years, optionally mixed with day numbers.
func dateHeader(values []string) bool {
	years := 0
	for _, v := range values {
		n, err := strconv.Atoi(strings.TrimSuffix(v, ","))
		switch {
		case err != nil:
			return false
		case n >= 1990 && n <= 2100 && !strings.HasSuffix(v, ","):
			years++
		case n < 1 || n > 31:
			return false
		}
	}
	return years > 0
}

func layoutRow(label string, values []string) grid.Row {
	var row grid.Row
	if label != "" {
		row.Cells = append(row.Cells, grid.Cell{Text: label, Align: grid.AlignLeft, Span: 1})
	}
	for _, v := range values {
		row.Cells = append(row.Cells, grid.Cell{Text: v, Align: grid.AlignRight, Span: 1})
	}
	return row
}
