package patterns

import (
	"github.com/saranrapjs/quarterly-statements/pkg/filing"
	"github.com/saranrapjs/quarterly-statements/pkg/metrics"
)

// Generic rules and sections are tried after a company's own, so a company
// file only needs to spell out where its labels depart from common usage.
// The shares section is listed first: its headings often mention "per share"
// too.
var genericSections = map[filing.Concept][]Section{
	filing.Income: {
		{Name: "shares", Start: []string{"contains:shares used in computing", "contains:weighted average shares", "contains:weighted-average shares", "contains:shares outstanding"}},
		{Name: "perShare", Start: []string{"contains:per share", "contains:per common share"}},
	},
	filing.Balance: {
		{Name: "currentLiabilities", Start: []string{"current liabilities"}, End: []string{"total current liabilities"}},
	},
}

var genericRules = map[filing.Concept][]Rule{
	filing.Income: {
		{Key: metrics.EPSBasic, Section: "perShare", Match: []string{"basic", "prefix:basic"}},
		{Key: metrics.EPSDiluted, Section: "perShare", Match: []string{"diluted", "prefix:diluted"}},
		{Key: metrics.SharesBasic, Section: "shares", Match: []string{"basic", "prefix:basic"}},
		{Key: metrics.SharesDiluted, Section: "shares", Match: []string{"diluted", "prefix:diluted"}},
		{Key: metrics.Revenue, Match: []string{"total net sales", "total revenues", "total revenue", "total net revenue", "net sales", "net revenue", "net revenues", "revenue", "revenues"}},
		{Key: metrics.CostOfRevenue, Match: []string{"total cost of sales", "total cost of revenue", "total cost of revenues", "cost of sales", "cost of revenue", "cost of revenues"}},
		{Key: metrics.GrossProfit, Match: []string{"gross margin", "gross profit"}},
		{Key: metrics.ResearchAndDevelopment, Match: []string{"prefix:research and development", "prefix:research, development"}},
		{Key: metrics.SGA, Match: []string{"prefix:selling, general and administrative", "prefix:marketing, general and administrative"}},
		{Key: metrics.SalesAndMarketing, Match: []string{"prefix:sales and marketing", "prefix:selling and marketing"}},
		{Key: metrics.GeneralAndAdministrative, Match: []string{"prefix:general and administrative"}},
		{Key: metrics.OperatingExpenses, Match: []string{"total operating expenses", "total costs and expenses"}},
		{Key: metrics.OperatingIncome, Match: []string{"operating income", "operating income (loss)", "operating loss", "income from operations", "income (loss) from operations", "loss from operations"}},
		{Key: metrics.InterestIncome, Match: []string{"interest income", "interest and other income"}},
		{Key: metrics.InterestExpense, Match: []string{"interest expense"}},
		{Key: metrics.OtherIncomeNet, Match: []string{"re:^other income.*net$", "other, net", "other income"}},
		{Key: metrics.IncomeBeforeTax, Match: []string{`re:^(net )?(income|loss|income \(loss\)|\(loss\) income) before (provision for )?income tax`}},
		{Key: metrics.IncomeTax, Match: []string{"prefix:provision for income taxes", "prefix:provision for (benefit from) income taxes", "prefix:income tax expense", "prefix:income tax provision", "prefix:(provision for) benefit from income taxes"}},
		{Key: metrics.NetIncome, Match: []string{"net income", "net income (loss)", "net loss", "net (loss) income"}},
	},
	filing.Balance: {
		{Key: metrics.ShortTermDebt, Section: "currentLiabilities", Match: []string{"term debt", "current portion of long-term debt", "short-term debt", "commercial paper", "short-term borrowings"}},
		{Key: metrics.CashAndEquivalents, Match: []string{"cash and cash equivalents"}},
		{Key: metrics.ShortTermInvestments, Match: []string{"short-term investments", "marketable securities", "prefix:short-term investments"}},
		{Key: metrics.AccountsReceivable, Match: []string{"prefix:accounts receivable"}},
		{Key: metrics.Inventories, Match: []string{"inventories", "inventory"}},
		{Key: metrics.TotalCurrentAssets, Match: []string{"total current assets"}},
		{Key: metrics.PropertyPlantEquipment, Match: []string{"prefix:property, plant and equipment", "prefix:property and equipment"}},
		{Key: metrics.Goodwill, Match: []string{"goodwill"}},
		{Key: metrics.IntangibleAssets, Match: []string{"prefix:intangible assets", "prefix:identified intangible assets", "prefix:acquired intangible assets"}},
		{Key: metrics.TotalAssets, Match: []string{"total assets"}},
		{Key: metrics.AccountsPayable, Match: []string{"accounts payable"}},
		{Key: metrics.TotalCurrentLiabilities, Match: []string{"total current liabilities"}},
		{Key: metrics.LongTermDebt, Match: []string{"term debt", "long-term debt", "prefix:long-term debt"}},
		{Key: metrics.TotalLiabilities, Match: []string{"total liabilities"}},
		{Key: metrics.TotalLiabilitiesAndEquity, Match: []string{"prefix:total liabilities and", "prefix:total liabilities, "}},
		{Key: metrics.TotalEquity, Match: []string{"prefix:total shareholders' equity", "prefix:total stockholders' equity", "total equity"}},
	},
	filing.CashFlow: {
		{Key: metrics.NetIncomeCashFlow, Match: []string{"net income", "net income (loss)", "net loss"}},
		{Key: metrics.DepreciationAndAmortization, Match: []string{"prefix:depreciation and amortization", "prefix:depreciation, amortization"}},
		{Key: metrics.StockBasedCompensation, Match: []string{"prefix:share-based compensation", "prefix:stock-based compensation"}},
		{Key: metrics.OperatingCashFlow, Match: []string{`re:(provided|used|generated).* operating activities$`}},
		{Key: metrics.CapitalExpenditure, Match: []string{"prefix:payments for acquisition of property", "prefix:purchases of property", "prefix:additions to property", "prefix:capital expenditures"}},
		{Key: metrics.InvestingCashFlow, Match: []string{`re:(provided|used|generated).* investing activities$`}},
		{Key: metrics.ShareRepurchases, Match: []string{"prefix:repurchases of common stock", "prefix:repurchase of common stock", "prefix:repurchases of class a common stock"}},
		{Key: metrics.DividendsPaid, Match: []string{"prefix:payments for dividends", "prefix:dividends paid", "prefix:payment of dividends"}},
		{Key: metrics.FinancingCashFlow, Match: []string{`re:(provided|used|generated).* financing activities$`}},
	},
}
