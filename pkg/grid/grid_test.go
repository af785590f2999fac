package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCellClassification(t *testing.T) {
	tests := []struct {
		name  string
		cell  Cell
		value bool
		label bool
	}{
		{"plain figure", Cell{Text: "1,234"}, true, false},
		{"parenthesized", Cell{Text: "(56)"}, true, false},
		{"dash", Cell{Text: "—"}, true, false},
		{"right aligned header", Cell{Text: "Three Months Ended", Align: AlignRight}, false, true},
		{"left aligned label", Cell{Text: "Net sales", Align: AlignLeft}, false, true},
		{"spanning figure stays a value", Cell{Text: "2024", Span: 3}, true, false},
		{"spanning caption", Cell{Text: "Americas", Span: 2, Align: AlignCenter}, false, true},
		{"top aligned words", Cell{Text: "Products", Top: true}, false, true},
		{"tagged fact", Cell{Text: "n/a", Concept: "us-gaap:Revenues"}, true, false},
		{"magnitude word", Cell{Text: "$1.2 billion"}, true, false},
		{"right aligned magnitude word", Cell{Text: "$300 million", Align: AlignRight}, true, false},
		{"company name with a digit", Cell{Text: "3M", Align: AlignLeft}, false, true},
		{"empty", Cell{Text: "  "}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, tt.cell.IsValue())
			assert.Equal(t, tt.label, tt.cell.IsLabel())
		})
	}
}

func TestRowLabelAndValues(t *testing.T) {
	r := Row{Cells: []Cell{
		{Text: "Total net sales", Align: AlignLeft},
		{Text: ""},
		{Text: "$94,930"},
		{Text: "$89,498"},
	}}
	assert.Equal(t, "Total net sales", r.Label())
	values := r.Values()
	if assert.Len(t, values, 2) {
		assert.Equal(t, "$94,930", values[0].Text)
	}
}

func TestGridBlocks(t *testing.T) {
	g := &Grid{}
	g.AddText("  ")
	g.AddText("Condensed Consolidated Balance Sheets")
	g.AddTable(&Table{})
	assert.True(t, g.Empty())

	g.AddTable(&Table{Rows: []Row{{Cells: []Cell{{Text: "Total assets"}, {Text: "10"}}}}})
	assert.False(t, g.Empty())
	tables := g.Tables()
	if assert.Len(t, tables, 1) {
		assert.Equal(t, 1, tables[0].Index)
		assert.Equal(t, []string{"Total assets"}, tables[0].Table.Labels())
	}
}
