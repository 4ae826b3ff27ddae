package ratios

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "ratiocli/internal/errors"
	"ratiocli/pkg/contracts/domain"
)

func item(label string, values map[domain.Period]float64) domain.LineItem {
	return domain.LineItem{
		Label:  label,
		Key:    domain.NormalizeLabel(label),
		Values: values,
	}
}

// fixture holds per-statement line items for building merged test data
type fixture struct {
	periods  []domain.Period
	income   []domain.LineItem
	balance  []domain.LineItem
	equity   []domain.LineItem
	cashflow []domain.LineItem
}

func (f fixture) merged() *domain.MergedStatements {
	return &domain.MergedStatements{
		Periods: f.periods,
		Datasets: []*domain.StatementDataset{
			domain.NewStatementDataset(domain.StatementIncome, "INCOME_STATEMENT", f.periods, f.income),
			domain.NewStatementDataset(domain.StatementBalance, "BALANCE_SHEET", f.periods, f.balance),
			domain.NewStatementDataset(domain.StatementEquity, "STOCKHOLDERS_EQUITY", f.periods, f.equity),
			domain.NewStatementDataset(domain.StatementCashFlow, "CASH_FLOW", f.periods, f.cashflow),
		},
	}
}

// standardFixture is a two-period statement set where every catalog
// ratio resolves.
func standardFixture() fixture {
	p23, p24 := domain.Period("2023"), domain.Period("2024")
	return fixture{
		periods: []domain.Period{p23, p24},
		income: []domain.LineItem{
			item("Revenue", map[domain.Period]float64{p23: 2000, p24: 3000}),
			item("Cost of revenue", map[domain.Period]float64{p23: 800, p24: 1000}),
			item("Net income (loss)", map[domain.Period]float64{p23: 400, p24: 500}),
		},
		balance: []domain.LineItem{
			item("Accounts receivable, net", map[domain.Period]float64{p23: 100, p24: 200}),
			item("Inventory", map[domain.Period]float64{p23: 50, p24: 70}),
			item("Accounts payable", map[domain.Period]float64{p23: 80, p24: 120}),
			item("Property and equipment, net", map[domain.Period]float64{p23: 300, p24: 500}),
			item("Total assets", map[domain.Period]float64{p23: 1000, p24: 1500}),
			item("Total stockholders' equity", map[domain.Period]float64{p23: 600, p24: 900}),
		},
	}
}

func computeTable(t *testing.T, f fixture, opts Options) domain.ResultTable {
	t.Helper()
	engine := NewEngine(Catalog(opts), nil)
	results, err := engine.Compute(context.Background(), f.merged())
	require.NoError(t, err)
	return domain.NewResultTable(results)
}

func TestCatalogOrder(t *testing.T) {
	engine := NewEngine(Catalog(DefaultOptions()), nil)
	assert.Equal(t, []string{
		RatioARTurnover,
		RatioInventoryTurnover,
		RatioAPTurnover,
		RatioPPETurnover,
		RatioAssetTurnover,
		RatioReturnOnAssets,
		RatioCashConversion,
		RatioReturnOnEquity,
		RatioReturnOnCommon,
		RatioNetProfitMargin,
		RatioLeverage,
	}, engine.CatalogOrder())
}

func TestComputeResultShape(t *testing.T) {
	f := standardFixture()
	engine := NewEngine(Catalog(DefaultOptions()), nil)
	results, err := engine.Compute(context.Background(), f.merged())
	require.NoError(t, err)

	require.Len(t, results, 11*2)
	// Catalog order crossed with chronological period order.
	assert.Equal(t, RatioARTurnover, results[0].Ratio)
	assert.Equal(t, domain.Period("2023"), results[0].Period)
	assert.Equal(t, RatioARTurnover, results[1].Ratio)
	assert.Equal(t, domain.Period("2024"), results[1].Period)
	assert.Equal(t, RatioLeverage, results[21].Ratio)
}

func TestARTurnover(t *testing.T) {
	table := computeTable(t, standardFixture(), DefaultOptions())

	// Beginning AR 100, ending 200, sales 3000: average 150, turnover 20.
	v := table.Get(RatioARTurnover, "2024")
	require.True(t, v.Valid)
	assert.InDelta(t, 20.0, v.Float, 1e-9)

	// Earliest period has no prior: average equals the single value.
	v = table.Get(RatioARTurnover, "2023")
	require.True(t, v.Valid)
	assert.InDelta(t, 20.0, v.Float, 1e-9)
}

func TestNetProfitMargin(t *testing.T) {
	f := standardFixture()
	p24 := domain.Period("2024")
	f.income = []domain.LineItem{
		item("Revenue", map[domain.Period]float64{p24: 2500}),
		item("Net income (loss)", map[domain.Period]float64{p24: 500}),
	}
	f.periods = []domain.Period{p24}
	for i := range f.balance {
		vals := map[domain.Period]float64{}
		for p, v := range f.balance[i].Values {
			if p == p24 {
				vals[p] = v
			}
		}
		f.balance[i].Values = vals
	}

	table := computeTable(t, f, DefaultOptions())
	v := table.Get(RatioNetProfitMargin, p24)
	require.True(t, v.Valid)
	assert.InDelta(t, 0.20, v.Float, 1e-9)
}

func TestInventoryAbsent(t *testing.T) {
	f := standardFixture()
	var balance []domain.LineItem
	for _, li := range f.balance {
		if li.Key != "inventory" {
			balance = append(balance, li)
		}
	}
	f.balance = balance

	table := computeTable(t, f, DefaultOptions())

	for _, period := range f.periods {
		assert.False(t, table.Get(RatioInventoryTurnover, period).Valid,
			"inventory turnover must be not applicable for %s", period)
		assert.False(t, table.Get(RatioCashConversion, period).Valid,
			"cash conversion cycle must be not applicable for %s", period)

		// Every other ratio still computes.
		for _, name := range []string{
			RatioARTurnover, RatioAPTurnover, RatioPPETurnover,
			RatioAssetTurnover, RatioReturnOnAssets, RatioReturnOnEquity,
			RatioNetProfitMargin, RatioLeverage,
		} {
			assert.True(t, table.Get(name, period).Valid, "%s should compute for %s", name, period)
		}
	}
}

func TestZeroEquityIsNotApplicable(t *testing.T) {
	f := standardFixture()
	p23, p24 := domain.Period("2023"), domain.Period("2024")
	for i := range f.balance {
		if f.balance[i].Key == domain.NormalizeLabel("Total stockholders' equity") {
			f.balance[i].Values = map[domain.Period]float64{p23: 0, p24: 0}
		}
	}

	table := computeTable(t, f, DefaultOptions())

	assert.False(t, table.Get(RatioReturnOnEquity, p24).Valid)
	assert.False(t, table.Get(RatioLeverage, p24).Valid)
	// Net income is still there, so margin is unaffected.
	assert.True(t, table.Get(RatioNetProfitMargin, p24).Valid)
}

func TestNoResultIsInfOrNaN(t *testing.T) {
	f := standardFixture()
	p23, p24 := domain.Period("2023"), domain.Period("2024")
	// Zero every balance so all averaged divisors are zero.
	for i := range f.balance {
		f.balance[i].Values = map[domain.Period]float64{p23: 0, p24: 0}
	}

	engine := NewEngine(Catalog(DefaultOptions()), nil)
	results, err := engine.Compute(context.Background(), f.merged())
	require.NoError(t, err)

	for _, r := range results {
		if r.Value.Valid {
			assert.False(t, math.IsInf(r.Value.Float, 0), "%s %s is Inf", r.Ratio, r.Period)
			assert.False(t, math.IsNaN(r.Value.Float), "%s %s is NaN", r.Ratio, r.Period)
		}
	}
}

func TestSinglePeriodAveragingFallback(t *testing.T) {
	f := standardFixture()
	p24 := domain.Period("2024")
	for i := range f.balance {
		if f.balance[i].Key == "total assets" {
			// Only one period of data despite two periods existing.
			f.balance[i].Values = map[domain.Period]float64{p24: 1500}
		}
	}

	table := computeTable(t, f, DefaultOptions())

	// Average equals the single value: 3000 / 1500 = 2.
	v := table.Get(RatioAssetTurnover, p24)
	require.True(t, v.Valid)
	assert.InDelta(t, 2.0, v.Float, 1e-9)

	// The period with no data at all stays not applicable.
	assert.False(t, table.Get(RatioAssetTurnover, "2023").Valid)
}

func TestRequiredInputAbsentForAllPeriods(t *testing.T) {
	f := standardFixture()
	var balance []domain.LineItem
	for _, li := range f.balance {
		if li.Key != "accounts payable" {
			balance = append(balance, li)
		}
	}
	f.balance = balance

	table := computeTable(t, f, DefaultOptions())

	for _, period := range f.periods {
		assert.False(t, table.Get(RatioAPTurnover, period).Valid)
		assert.False(t, table.Get(RatioCashConversion, period).Valid)
	}
}

func TestCashConversionCycle(t *testing.T) {
	table := computeTable(t, standardFixture(), DefaultOptions())

	// 2024: DSO = 365/20, DIO = 365/(1000/60), DPO = 365/(1000/100).
	dso := 365.0 / 20.0
	dio := 365.0 / (1000.0 / 60.0)
	dpo := 365.0 / (1000.0 / 100.0)

	v := table.Get(RatioCashConversion, "2024")
	require.True(t, v.Valid)
	assert.InDelta(t, dio+dso-dpo, v.Float, 1e-9)
}

func TestReturnOnCommonEquitySubstringFallback(t *testing.T) {
	// No exact common-equity line: the substring fallback resolves the
	// total stockholders' equity line, and with no preferred dividends
	// line the numerator stays plain net income.
	table := computeTable(t, standardFixture(), DefaultOptions())

	roce := table.Get(RatioReturnOnCommon, "2024")
	roe := table.Get(RatioReturnOnEquity, "2024")
	require.True(t, roce.Valid)
	require.True(t, roe.Valid)
	assert.InDelta(t, roe.Float, roce.Float, 1e-9)
}

func TestPreferredDividendsReduceCommonReturn(t *testing.T) {
	f := standardFixture()
	p23, p24 := domain.Period("2023"), domain.Period("2024")
	f.income = append(f.income,
		item("Preferred dividends", map[domain.Period]float64{p23: 50, p24: 50}))

	table := computeTable(t, f, DefaultOptions())

	// (500 - 50) / ((600 + 900) / 2) = 450 / 750 = 0.6
	v := table.Get(RatioReturnOnCommon, p24)
	require.True(t, v.Valid)
	assert.InDelta(t, 0.6, v.Float, 1e-9)
}

func TestPurchasesPolicy(t *testing.T) {
	t.Run("cogs proxy", func(t *testing.T) {
		table := computeTable(t, standardFixture(), Options{Purchases: PurchasesCOGS})
		v := table.Get(RatioAPTurnover, "2024")
		require.True(t, v.Valid)
		assert.InDelta(t, 1000.0/100.0, v.Float, 1e-9)
	})

	t.Run("cogs plus inventory change", func(t *testing.T) {
		table := computeTable(t, standardFixture(), Options{Purchases: PurchasesCOGSPlusInventoryChange})

		// 2024: purchases = 1000 + (70 - 50) = 1020, avg AP = 100.
		v := table.Get(RatioAPTurnover, "2024")
		require.True(t, v.Valid)
		assert.InDelta(t, 10.2, v.Float, 1e-9)

		// 2023: no prior period, inventory change resolves to zero.
		v = table.Get(RatioAPTurnover, "2023")
		require.True(t, v.Valid)
		assert.InDelta(t, 800.0/80.0, v.Float, 1e-9)
	})
}

func TestAmbiguousLabelIsConfigError(t *testing.T) {
	f := standardFixture()
	// The same exact label in two statements makes resolution ambiguous.
	f.equity = []domain.LineItem{
		item("Total assets", map[domain.Period]float64{"2024": 999}),
	}

	engine := NewEngine(Catalog(DefaultOptions()), nil)
	_, err := engine.Compute(context.Background(), f.merged())
	require.Error(t, err)
	assert.True(t, ferrors.IsType(err, ferrors.TypeConfig))
	assert.Contains(t, err.Error(), "Total assets")
}

func TestStatementSearchOrder(t *testing.T) {
	f := standardFixture()
	// A cash-flow line matching a sales variant must lose to the income
	// statement's exact match on an earlier variant.
	f.cashflow = []domain.LineItem{
		item("Net sales", map[domain.Period]float64{"2023": 1, "2024": 1}),
	}

	table := computeTable(t, f, DefaultOptions())

	// "Net sales" is an earlier variant than "Revenue", so the cash-flow
	// line wins resolution and drives the margin.
	v := table.Get(RatioNetProfitMargin, "2024")
	require.True(t, v.Valid)
	assert.InDelta(t, 500.0, v.Float, 1e-9)
}

func TestComputeIdempotent(t *testing.T) {
	f := standardFixture()
	engine := NewEngine(Catalog(DefaultOptions()), nil)

	first, err := engine.Compute(context.Background(), f.merged())
	require.NoError(t, err)
	second, err := engine.Compute(context.Background(), f.merged())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
