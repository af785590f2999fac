package ixbrl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taggedRow = `<table><tr>
<td>Net cash used in investing activities</td>
<td style="text-align:right">(<ix:nonFraction name="us-gaap:NetCashProvidedByUsedInInvestingActivities" contextRef="c-12" unitRef="usd" decimals="-6" scale="6" sign="-" format="ixt:num-dot-decimal">1,445</ix:nonFraction>)</td>
</tr></table>`

func TestFactIn(t *testing.T) {
	doc := parse(t, taggedRow)
	td := find(doc, "tr").FirstChild
	for td != nil && td.Data != "td" {
		td = td.NextSibling
	}
	require.NotNil(t, td)
	assert.Nil(t, FactIn(td), "label cell carries no fact")

	nf := FactIn(doc)
	require.NotNil(t, nf)
	assert.Equal(t, "us-gaap:NetCashProvidedByUsedInInvestingActivities", nf.Name)
	assert.Equal(t, 6, nf.Exponent())
	assert.True(t, nf.Negative())
}

func TestFactWithoutAttributes(t *testing.T) {
	nf := FactIn(parse(t, `<ix:nonFraction name="us-gaap:Revenues">57,006</ix:nonFraction>`))
	require.NotNil(t, nf)
	assert.Equal(t, 0, nf.Exponent())
	assert.False(t, nf.Negative())
}

func TestFromNodeRejectsOtherElements(t *testing.T) {
	doc := parse(t, `<p>text</p>`)
	_, ok := FromNode(find(doc, "p"))
	assert.False(t, ok)
	_, ok = FromNode(nil)
	assert.False(t, ok)
}
