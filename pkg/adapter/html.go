package adapter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/grid"
	"github.com/saranrapjs/quarterly-statements/pkg/ixbrl"
)

func adaptHTML(b []byte) (*grid.Grid, error) {
	doc, err := html.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	g := &grid.Grid{Kind: filing.TableHTML}
	walkHTML(doc, g)
	return g, nil
}

func walkHTML(n *html.Node, g *grid.Grid) {
	switch n.Type {
	case html.TextNode:
		g.AddText(n.Data)
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "ix:header":
			return
		case "table":
			if !hasNestedTable(n) {
				g.AddTable(buildTable(n))
				return
			}
		}
		if ixbrl.IsBlock(n) && !ixbrl.Contains(n, "table") {
			for _, line := range strings.Split(ixbrl.HTMLText(n), "\n") {
				g.AddText(line)
			}
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, g)
	}
}

func hasNestedTable(table *html.Node) bool {
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if ixbrl.Contains(c, "table") {
			return true
		}
	}
	return false
}

func buildTable(table *html.Node) *grid.Table {
	t := &grid.Table{}
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "caption":
				t.Caption = ixbrl.Line(c)
			case "tr":
				if row := buildRow(c); len(row.Cells) > 0 {
					t.Rows = append(t.Rows, row)
				}
			case "thead", "tbody", "tfoot":
				visit(c)
			}
		}
	}
	visit(table)
	return t
}

func buildRow(tr *html.Node) grid.Row {
	var cells []grid.Cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cell := buildCell(c)
		if cell.Text == "" {
			continue
		}
		cells = append(cells, cell)
	}
	return grid.Row{Cells: joinFragments(cells)}
}

func buildCell(td *html.Node) grid.Cell {
	cell := grid.Cell{
		Text: ixbrl.Line(td),
		Span: 1,
	}
	if span, err := strconv.Atoi(ixbrl.Attr(td, "colspan")); err == nil && span > 0 {
		cell.Span = span
	}
	cell.Align = alignOf(td)
	if strings.EqualFold(ixbrl.Attr(td, "valign"), "top") ||
		strings.EqualFold(styleOf(td)["vertical-align"], "top") {
		cell.Top = true
	}
	cell.Indent = indentOf(td)
	if nf := ixbrl.FactIn(td); nf != nil {
		cell.Concept = nf.Name
		cell.Scale = nf.Exponent()
		cell.Negated = nf.Negative()
	}
	return cell
}

// alignOf reads the align attribute or text-align style of the cell, or of
// the first descendant that declares one.
func alignOf(n *html.Node) grid.Align {
	if n.Type == html.ElementNode {
		value := ixbrl.Attr(n, "align")
		if v, ok := styleOf(n)["text-align"]; ok {
			value = v
		}
		switch strings.ToLower(value) {
		case "left", "start", "justify":
			return grid.AlignLeft
		case "center":
			return grid.AlignCenter
		case "right", "end":
			return grid.AlignRight
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := alignOf(c); a != grid.AlignNone {
			return a
		}
	}
	return grid.AlignNone
}

// indentOf returns the left padding, margin or text indent in points.
func indentOf(n *html.Node) int {
	if n.Type == html.ElementNode {
		style := styleOf(n)
		for _, prop := range []string{"padding-left", "text-indent", "margin-left"} {
			if pt, ok := lengthPt(style[prop]); ok && pt > 0 {
				return int(pt)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if indent := indentOf(c); indent > 0 {
			return indent
		}
	}
	return 0
}

func styleOf(n *html.Node) map[string]string {
	return parseDeclarations(ixbrl.Attr(n, "style"))
}

// joinFragments re-attaches the pieces filings split across cells: a lone
// currency symbol belongs to the following value, a lone ")" or "%" to the
// preceding one.
func joinFragments(cells []grid.Cell) []grid.Cell {
	out := make([]grid.Cell, 0, len(cells))
	var carry string
	for _, c := range cells {
		text := strings.TrimSpace(c.Text)
		switch {
		case isCurrencySymbol(text) || text == "(":
			carry += text
			continue
		case isClosing(text) && len(out) > 0:
			out[len(out)-1].Text += text
			continue
		}
		if carry != "" {
			c.Text = carry + c.Text
			carry = ""
		}
		out = append(out, c)
	}
	return out
}

func isCurrencySymbol(s string) bool {
	switch s {
	case "$", "€", "£", "¥", "₩", "US$":
		return true
	}
	return false
}

func isClosing(s string) bool {
	switch s {
	case ")", "%", ")%", "%)":
		return true
	}
	return false
}
