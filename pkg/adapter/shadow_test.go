package adapter

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
)

const deck = `<html><head><style>
/* exported by the slide tool */
.a11y { font-size: 0.5px; }
.slide { background: #FFF url(slide7.png) no-repeat; }
</style></head><body>
<div class="slide">
  <img src="slide7.png" alt="">
  <h1>Record quarter!</h1>
  <p>Revenue grew 40% 2024 2023</p>
  <div class="a11y">
    <p>Revenue by customer type</p>
    <p>Government 408 335</p>
    <p>Commercial 317 198</p>
  </div>
  <span style="color:#ffffff">Total revenue</span>
  <span style="color: rgb(255, 255, 255)">726 533</span>
  <p style="opacity:0">Adjusted operating income 254 134</p>
  <p style="color:transparent">Net income 134 28</p>
  <p style="font-size:14px">Visible footnote 1 2</p>
</div>
</body></html>`

func TestAdaptShadowDeck(t *testing.T) {
	g, err := Adapt([]byte(deck), filing.ShadowDeck)
	require.NoError(t, err)
	assert.Equal(t, filing.ShadowDeck, g.Kind)

	require.Len(t, g.Tables(), 1)
	table := g.Tables()[0].Table
	assert.Equal(t, []string{
		"Government",
		"Commercial",
		"Total revenue",
		"Adjusted operating income",
		"Net income",
	}, table.Labels())

	for _, b := range g.Blocks {
		assert.NotContains(t, b.Text, "Record quarter")
		assert.NotContains(t, b.Text, "Visible footnote")
	}
	assert.Equal(t, "Revenue by customer type", g.Blocks[0].Text)
}

func TestAdaptShadowDeckWithoutHiddenLayer(t *testing.T) {
	g, err := Adapt([]byte(`<html><body><p>Revenue 408 335</p></body></html>`), filing.ShadowDeck)
	require.NoError(t, err)
	assert.True(t, g.Empty())
	assert.Empty(t, g.Blocks)
}

func TestNormColor(t *testing.T) {
	tests := map[string]string{
		"#FFF":                  "#ffffff",
		"white":                 "#ffffff",
		"rgb(255, 255, 255)":    "#ffffff",
		"rgba(0,0,0,0)":         "transparent",
		"rgba(16, 32, 48, 0.5)": "#102030",
		"transparent":           "transparent",
		"url(x.png)":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normColor(in), in)
	}
}

func TestParseStylesheet(t *testing.T) {
	sheet := parseStylesheet(`p.hidden, #layer { font-size: 0 } div > p { color: red }`)
	require.Len(t, sheet, 2)
	assert.Equal(t, rule{tag: "p", class: "hidden", decls: map[string]string{"font-size": "0"}}, sheet[0])
	assert.Equal(t, "layer", sheet[1].id)
}

func TestRowText(t *testing.T) {
	texts := []pdf.Text{
		{S: "1", X: 300, W: 6, FontSize: 10},
		{S: "Tota", X: 72, W: 20, FontSize: 10},
		{S: "l assets", X: 92, W: 36, FontSize: 10},
		{S: "331,6", X: 294, W: 6, FontSize: 10},
		{S: "2", X: 306, W: 6, FontSize: 10},
	}
	// "331,6" ends at 300 where "1" starts: no gap, no space.
	assert.Equal(t, "Total assets 331,612", strings.TrimSpace(rowText(texts)))
}
