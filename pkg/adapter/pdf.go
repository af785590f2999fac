package adapter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfLines reads every page of a PDF as physical lines of text. The pdf
// package panics on some corrupt streams (e.g. zlib: invalid header), which
// is reported as ErrUnreadable.
func pdfLines(b []byte) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
			err = fmt.Errorf("%w: pdf: %v", ErrUnreadable, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %w", ErrUnreadable, err)
	}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			if text := rowText(row.Content); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return lines, nil
}

// rowText joins the glyph runs of one row left to right, inserting a space
// wherever the horizontal gap between runs is wider than a fraction of the
// font size.
func rowText(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > prev.FontSize*0.2 && !strings.HasSuffix(b.String(), " ") {
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
