// Package grid is the uniform shape every document kind is adapted into: an
// ordered run of text blocks and tables, where table cells keep just enough
// styling to tell labels from values.
package grid

import (
	"strings"
	"unicode"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/numeric"
)

type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Cell is one table cell with its positional and style hints.
type Cell struct {
	Text   string
	Align  Align
	Top    bool // vertical-align: top
	Indent int
	Span   int

	// Inline XBRL tagging, when the filing carries it.
	Concept string
	Scale   int
	Negated bool
}

// IsValue reports whether the cell reads as a figure: right aligned, holding
// only number-like glyphs, or a number with a magnitude word ("$1.2 billion").
func (c Cell) IsValue() bool {
	if strings.TrimSpace(c.Text) == "" {
		return false
	}
	if c.Concept != "" {
		return true
	}
	if c.Align == AlignRight && !c.hasLetters() {
		return true
	}
	return numeric.LooksNumeric(c.Text) || numeric.HasMagnitude(c.Text)
}

// IsLabel reports whether the cell reads as a row label: left or top aligned,
// spanning columns, or simply carrying words.
func (c Cell) IsLabel() bool {
	if strings.TrimSpace(c.Text) == "" || c.IsValue() {
		return false
	}
	return c.Align == AlignLeft || c.Top || c.Span >= 2 || c.hasLetters()
}

func (c Cell) hasLetters() bool {
	return strings.IndexFunc(c.Text, unicode.IsLetter) >= 0
}

// Row is an ordered run of cells.
type Row struct {
	Cells []Cell
}

// Label joins the label cells of the row.
func (r Row) Label() string {
	var parts []string
	for _, c := range r.Cells {
		if c.IsLabel() {
			parts = append(parts, strings.TrimSpace(c.Text))
		}
	}
	return strings.Join(parts, " ")
}

// Values returns the value cells of the row in column order.
func (r Row) Values() []Cell {
	var values []Cell
	for _, c := range r.Cells {
		if c.IsValue() {
			values = append(values, c)
		}
	}
	return values
}

// Table is a run of rows plus the caption text found inside or just above it.
type Table struct {
	Caption string
	Rows    []Row
}

// Labels returns the non-empty row labels in order.
func (t *Table) Labels() []string {
	var labels []string
	for _, r := range t.Rows {
		if l := r.Label(); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

type BlockKind int

const (
	TextBlock BlockKind = iota
	TableBlock
)

// Block is either a line of text or a table, in document order.
type Block struct {
	Kind  BlockKind
	Text  string
	Table *Table
}

// Grid is the adapted form of one document.
type Grid struct {
	Kind   filing.Kind
	Blocks []Block
}

func (g *Grid) AddText(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	g.Blocks = append(g.Blocks, Block{Kind: TextBlock, Text: text})
}

func (g *Grid) AddTable(t *Table) {
	if t == nil || len(t.Rows) == 0 {
		return
	}
	g.Blocks = append(g.Blocks, Block{Kind: TableBlock, Table: t})
}

// IndexedTable is a table together with its block position.
type IndexedTable struct {
	Index int
	Table *Table
}

// Tables returns every table block in document order.
func (g *Grid) Tables() []IndexedTable {
	var tables []IndexedTable
	for i, b := range g.Blocks {
		if b.Kind == TableBlock {
			tables = append(tables, IndexedTable{Index: i, Table: b.Table})
		}
	}
	return tables
}

// Empty reports a grid with no table at all. Such a document is unusable for
// any concept but is not an error.
func (g *Grid) Empty() bool {
	for _, b := range g.Blocks {
		if b.Kind == TableBlock {
			return false
		}
	}
	return true
}
