package reconcile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
)

func f(v float64) *float64 { return &v }

func TestDeriveQ4(t *testing.T) {
	d := DeriveQ4(
		Values{"totalNetSales": f(100)},
		Values{"totalNetSales": f(20)},
		Values{"totalNetSales": f(30)},
		Values{"totalNetSales": f(25)},
	)
	require.Contains(t, d.Values, metrics.Key("totalNetSales"))
	assert.Equal(t, 25.0, *d.Values["totalNetSales"])
	assert.Empty(t, d.Blocked)
}

func TestDeriveQ4DecimalExact(t *testing.T) {
	d := DeriveQ4(
		Values{metrics.EPSDiluted: f(0.3)},
		Values{metrics.EPSDiluted: f(0.1)},
		Values{metrics.EPSDiluted: f(0.1)},
		Values{metrics.EPSDiluted: f(0.05)},
	)
	assert.Equal(t, 0.05, *d.Values[metrics.EPSDiluted])
}

func TestDeriveQ4Blocked(t *testing.T) {
	d := DeriveQ4(
		Values{metrics.Revenue: f(100), metrics.NetIncome: f(10), metrics.OperatingIncome: nil},
		Values{metrics.Revenue: f(20), metrics.NetIncome: f(2), metrics.OperatingIncome: f(1)},
		Values{metrics.Revenue: f(30), metrics.OperatingIncome: f(1)},
		Values{metrics.Revenue: f(25), metrics.NetIncome: nil, metrics.OperatingIncome: f(1)},
	)
	assert.Len(t, d.Values, 1)
	assert.Equal(t, 25.0, *d.Values[metrics.Revenue])
	assert.Equal(t, []Blocked{
		{Key: metrics.NetIncome, Missing: []string{"Q2", "Q3"}},
		{Key: metrics.OperatingIncome, Missing: []string{"annual"}},
	}, d.Blocked)
	assert.Equal(t, "netIncome: missing Q2, Q3", d.Blocked[0].String())
}

// A value is derived for a key if and only if all four inputs carry it, and
// then equals annual − q1 − q2 − q3.
func TestDerivationCompletenessLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	keys := []metrics.Key{"a", "b", "c", "d", "e", "f", "g", "h"}
	for round := 0; round < 200; round++ {
		in := [4]Values{{}, {}, {}, {}}
		for _, k := range keys {
			for i := range in {
				switch rng.Intn(5) {
				case 0:
				case 1:
					in[i][k] = nil
				default:
					in[i][k] = f(float64(rng.Intn(20000) - 5000))
				}
			}
		}
		d := DeriveQ4(in[0], in[1], in[2], in[3])
		for _, k := range keys {
			complete := in[0][k] != nil && in[1][k] != nil && in[2][k] != nil && in[3][k] != nil
			got, ok := d.Values[k]
			assert.Equal(t, complete, ok, "key %s round %d", k, round)
			if complete {
				assert.Equal(t, *in[0][k]-*in[1][k]-*in[2][k]-*in[3][k], *got)
			}
		}
	}
}

func TestDecumulate(t *testing.T) {
	ytd6 := Values{metrics.OperatingCashFlow: f(62585), metrics.CapitalExpenditure: f(-4388), metrics.DividendsPaid: nil}
	ytd3 := Values{metrics.OperatingCashFlow: f(39895), metrics.CapitalExpenditure: f(-2392), metrics.DividendsPaid: f(-3825)}
	d := Decumulate(2, ytd6, ytd3)
	assert.Equal(t, 22690.0, *d.Values[metrics.OperatingCashFlow])
	assert.Equal(t, -1996.0, *d.Values[metrics.CapitalExpenditure])
	require.Len(t, d.Blocked, 1)
	assert.Equal(t, []string{"Q2 year-to-date"}, d.Blocked[0].Missing)
}

func TestOnly(t *testing.T) {
	v := Values{metrics.Revenue: f(1), metrics.EPSBasic: f(2)}
	got := v.Only(func(k metrics.Key) bool { return k != metrics.EPSBasic })
	assert.Equal(t, Values{metrics.Revenue: v[metrics.Revenue]}, got)
}
