package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
)

func TestVocabulary(t *testing.T) {
	for _, c := range []filing.Concept{filing.Income, filing.Balance, filing.CashFlow} {
		assert.False(t, Open(c), c)
		defs := Vocabulary(c)
		assert.NotEmpty(t, defs)
		seen := map[Key]bool{}
		for _, d := range defs {
			assert.Equal(t, c, d.Concept)
			assert.False(t, seen[d.Key], "duplicate %s", d.Key)
			seen[d.Key] = true
		}
	}
	assert.True(t, Open(filing.SegmentRevenue))
	assert.Nil(t, Vocabulary(filing.Investments))
}

func TestCore(t *testing.T) {
	for _, c := range []filing.Concept{filing.Income, filing.Balance, filing.CashFlow} {
		for _, k := range Core(c) {
			d, ok := Fixed(k)
			assert.True(t, ok, k)
			assert.Equal(t, c, d.Concept, k)
			assert.False(t, d.Composite, k)
		}
	}
	assert.Empty(t, Core(filing.SegmentRevenue))
}

func TestLookup(t *testing.T) {
	assert.True(t, Lookup(filing.Income, Revenue).Derivable())
	assert.False(t, Lookup(filing.Income, EPSDiluted).Derivable())
	assert.Equal(t, Stock, Lookup(filing.Balance, TotalAssets).Nature)
	assert.False(t, Lookup(filing.Balance, TotalAssets).Derivable())

	gov := Lookup(filing.SegmentRevenue, "governmentRevenue")
	assert.True(t, gov.Derivable())
	assert.Equal(t, filing.SegmentRevenue, gov.Concept)

	holding := Lookup(filing.Investments, "marketableSecurities")
	assert.Equal(t, Stock, holding.Nature)

	d, ok := Fixed(FreeCashFlow)
	assert.True(t, ok)
	assert.True(t, d.Composite)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(filing.Income, Revenue))
	assert.NoError(t, Validate(filing.Income, GrossProfit))
	assert.Error(t, Validate(filing.Income, TotalAssets))
	assert.Error(t, Validate(filing.Balance, "cashAndStuff"))

	assert.NoError(t, Validate(filing.SegmentRevenue, "americasRevenue"))
	assert.NoError(t, Validate(filing.SegmentProfit, "dcaiOperatingIncome"))
	assert.Error(t, Validate(filing.SegmentRevenue, "Americas"))
	assert.Error(t, Validate(filing.SegmentRevenue, "americas_revenue"))
	assert.Error(t, Validate(filing.SegmentRevenue, Revenue), "fixed keys are reserved")
}
