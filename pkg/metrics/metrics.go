// Package metrics is the canonical vocabulary of line items. Income, balance
// sheet and cash flow statements have a fixed set of keys; segment and
// investment statements name their own keys in company configuration.
package metrics

import (
	"fmt"
	"regexp"

	"github.com/saranrapjs/quarterly-statements/pkg/filing"
)

// Key is a canonical line item name such as "operatingIncome".
type Key string

// Nature says how a key behaves across periods.
type Nature int

const (
	// Flow values accumulate over the period (revenue, cash from operations).
	Flow Nature = iota
	// Stock values are measured at the period end (total assets).
	Stock
)

func (n Nature) String() string {
	if n == Stock {
		return "stock"
	}
	return "flow"
}

// Def describes one key.
type Def struct {
	Key     Key
	Concept filing.Concept
	Nature  Nature
	// Additive flows can be summed across quarters. Per-share figures and
	// share counts cannot, so no quarter is ever derived for them.
	Additive bool
	// Unscaled values are per-share amounts, presented in currency units
	// whatever scale the rest of the statement uses.
	Unscaled bool
	// Count values are share counts, not currency amounts.
	Count bool
	// Composite keys are computed from other keys when not reported.
	// A reported value always takes precedence.
	Composite bool
}

// Derivable reports whether an unreported quarter may be computed from the
// annual figure and the other quarters.
func (d Def) Derivable() bool {
	return d.Nature == Flow && d.Additive
}

func flow(k Key) Def      { return Def{Key: k, Nature: Flow, Additive: true} }
func stock(k Key) Def     { return Def{Key: k, Nature: Stock} }
func perShare(k Key) Def  { return Def{Key: k, Nature: Flow, Unscaled: true} }
func count(k Key) Def     { return Def{Key: k, Nature: Flow, Count: true} }
func composite(k Key) Def { return Def{Key: k, Nature: Flow, Additive: true, Composite: true} }

const (
	Revenue                  Key = "revenue"
	CostOfRevenue            Key = "costOfRevenue"
	GrossProfit              Key = "grossProfit"
	ResearchAndDevelopment   Key = "researchAndDevelopment"
	SalesAndMarketing        Key = "salesAndMarketing"
	GeneralAndAdministrative Key = "generalAndAdministrative"
	SGA                      Key = "sga"
	OperatingExpenses        Key = "operatingExpenses"
	OperatingIncome          Key = "operatingIncome"
	InterestIncome           Key = "interestIncome"
	InterestExpense          Key = "interestExpense"
	OtherIncomeNet           Key = "otherIncomeNet"
	NonOperatingIncome       Key = "nonOperatingIncome"
	IncomeBeforeTax          Key = "incomeBeforeTax"
	IncomeTax                Key = "incomeTax"
	NetIncome                Key = "netIncome"
	EPSBasic                 Key = "epsBasic"
	EPSDiluted               Key = "epsDiluted"
	SharesBasic              Key = "sharesBasic"
	SharesDiluted            Key = "sharesDiluted"

	CashAndEquivalents        Key = "cashAndEquivalents"
	ShortTermInvestments      Key = "shortTermInvestments"
	AccountsReceivable        Key = "accountsReceivable"
	Inventories               Key = "inventories"
	TotalCurrentAssets        Key = "totalCurrentAssets"
	PropertyPlantEquipment    Key = "propertyPlantEquipment"
	Goodwill                  Key = "goodwill"
	IntangibleAssets          Key = "intangibleAssets"
	TotalAssets               Key = "totalAssets"
	AccountsPayable           Key = "accountsPayable"
	ShortTermDebt             Key = "shortTermDebt"
	TotalCurrentLiabilities   Key = "totalCurrentLiabilities"
	LongTermDebt              Key = "longTermDebt"
	TotalLiabilities          Key = "totalLiabilities"
	TotalEquity               Key = "totalEquity"
	TotalLiabilitiesAndEquity Key = "totalLiabilitiesAndEquity"

	NetIncomeCashFlow           Key = "netIncomeCashFlow"
	DepreciationAndAmortization Key = "depreciationAndAmortization"
	StockBasedCompensation      Key = "stockBasedCompensation"
	OperatingCashFlow           Key = "operatingCashFlow"
	CapitalExpenditure          Key = "capitalExpenditure"
	InvestingCashFlow           Key = "investingCashFlow"
	ShareRepurchases            Key = "shareRepurchases"
	DividendsPaid               Key = "dividendsPaid"
	FinancingCashFlow           Key = "financingCashFlow"
	FreeCashFlow                Key = "freeCashFlow"
)

var fixed = map[filing.Concept][]Def{
	filing.Income: {
		flow(Revenue),
		flow(CostOfRevenue),
		composite(GrossProfit),
		flow(ResearchAndDevelopment),
		flow(SalesAndMarketing),
		flow(GeneralAndAdministrative),
		composite(SGA),
		flow(OperatingExpenses),
		flow(OperatingIncome),
		flow(InterestIncome),
		flow(InterestExpense),
		flow(OtherIncomeNet),
		composite(NonOperatingIncome),
		flow(IncomeBeforeTax),
		flow(IncomeTax),
		flow(NetIncome),
		perShare(EPSBasic),
		perShare(EPSDiluted),
		count(SharesBasic),
		count(SharesDiluted),
	},
	filing.Balance: {
		stock(CashAndEquivalents),
		stock(ShortTermInvestments),
		stock(AccountsReceivable),
		stock(Inventories),
		stock(TotalCurrentAssets),
		stock(PropertyPlantEquipment),
		stock(Goodwill),
		stock(IntangibleAssets),
		stock(TotalAssets),
		stock(AccountsPayable),
		stock(ShortTermDebt),
		stock(TotalCurrentLiabilities),
		stock(LongTermDebt),
		stock(TotalLiabilities),
		stock(TotalEquity),
		stock(TotalLiabilitiesAndEquity),
	},
	filing.CashFlow: {
		flow(NetIncomeCashFlow),
		flow(DepreciationAndAmortization),
		flow(StockBasedCompensation),
		flow(OperatingCashFlow),
		flow(CapitalExpenditure),
		flow(InvestingCashFlow),
		flow(ShareRepurchases),
		flow(DividendsPaid),
		flow(FinancingCashFlow),
		composite(FreeCashFlow),
	},
}

var byKey = map[Key]Def{}

func init() {
	for concept, defs := range fixed {
		for i := range defs {
			defs[i].Concept = concept
			byKey[defs[i].Key] = defs[i]
		}
	}
}

// Open reports whether a concept's keys come from configuration.
func Open(c filing.Concept) bool {
	_, ok := fixed[c]
	return !ok
}

// Vocabulary returns the fixed keys of a concept in statement order, or nil
// for open concepts.
func Vocabulary(c filing.Concept) []Def {
	return fixed[c]
}

var core = map[filing.Concept][]Key{
	filing.Income:   {Revenue, OperatingIncome, NetIncome},
	filing.Balance:  {TotalAssets, TotalEquity},
	filing.CashFlow: {OperatingCashFlow},
}

// Core returns the keys every statement of a fixed concept shows. A located
// table missing one of them is reported as a label miss; the rest of the
// vocabulary is optional.
func Core(c filing.Concept) []Key {
	return core[c]
}

// Fixed returns the definition of a fixed-vocabulary key.
func Fixed(k Key) (Def, bool) {
	d, ok := byKey[k]
	return d, ok
}

// Lookup returns the definition of k as used under concept c. Keys of open
// concepts are additive flows, except investment holdings which are stocks.
func Lookup(c filing.Concept, k Key) Def {
	if d, ok := byKey[k]; ok && d.Concept == c {
		return d
	}
	if c == filing.Investments {
		return Def{Key: k, Concept: c, Nature: Stock}
	}
	return Def{Key: k, Concept: c, Nature: Flow, Additive: true}
}

var ident = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)

// Validate checks that k may be emitted for concept c: a member of the fixed
// vocabulary, or for open concepts a lowerCamelCase identifier that does not
// shadow a fixed key.
func Validate(c filing.Concept, k Key) error {
	if !Open(c) {
		d, ok := byKey[k]
		if !ok || d.Concept != c {
			return fmt.Errorf("%q is not a %s key", k, c)
		}
		return nil
	}
	if !ident.MatchString(string(k)) {
		return fmt.Errorf("%q is not a lowerCamelCase key", k)
	}
	if d, ok := byKey[k]; ok {
		return fmt.Errorf("%q is reserved by the %s statement", k, d.Concept)
	}
	return nil
}
