package ratios

import (
	"ratiocli/pkg/contracts/domain"
)

// Ratio names, in catalog (output) order.
const (
	RatioARTurnover        = "A/R Turnover"
	RatioInventoryTurnover = "Inventory Turnover"
	RatioAPTurnover        = "A/P Turnover"
	RatioPPETurnover       = "PPE Turnover"
	RatioAssetTurnover     = "Asset Turnover"
	RatioReturnOnAssets    = "Return on Assets"
	RatioCashConversion    = "Cash Conversion Cycle"
	RatioReturnOnEquity    = "Return on Equity"
	RatioReturnOnCommon    = "Return on Common Equity"
	RatioNetProfitMargin   = "Net Profit Margin"
	RatioLeverage          = "Leverage"
)

// Operand names shared between input declarations and formulas.
const (
	inSales         = "net_sales"
	inCOGS          = "cogs"
	inNetIncome     = "net_income"
	inPreferredDivs = "preferred_dividends"
	inAR            = "avg_accounts_receivable"
	inInventory     = "avg_inventory"
	inInvChange     = "inventory_change"
	inAP            = "avg_accounts_payable"
	inPPE           = "avg_ppe"
	inAssets        = "avg_total_assets"
	inEquity        = "avg_total_equity"
	inCommonEquity  = "avg_common_equity"
)

// PurchasesPolicy selects the A/P Turnover numerator when the workbook
// has no explicit purchases line.
type PurchasesPolicy string

const (
	// PurchasesCOGS uses cost of goods sold as the purchases proxy.
	PurchasesCOGS PurchasesPolicy = "cogs"
	// PurchasesCOGSPlusInventoryChange adds the period's inventory
	// change to cost of goods sold.
	PurchasesCOGSPlusInventoryChange PurchasesPolicy = "cogs_plus_inventory_change"
)

// Options configures catalog construction.
type Options struct {
	Purchases PurchasesPolicy
}

// DefaultOptions returns the standard catalog options
func DefaultOptions() Options {
	return Options{Purchases: PurchasesCOGS}
}

// Input label variants. Lookup is exact-first then substring, across
// statements in income, balance, equity, cash-flow order.
var (
	salesInput = Input{
		Name:      inSales,
		Labels:    []string{"Net credit sales", "Net sales", "Revenue", "Total revenue"},
		Averaging: PointInTime,
	}
	cogsInput = Input{
		Name:      inCOGS,
		Labels:    []string{"Cost of goods sold", "Cost of revenue", "Cost of sales"},
		Averaging: PointInTime,
	}
	netIncomeInput = Input{
		Name:      inNetIncome,
		Labels:    []string{"Net income (loss)", "Net income", "Net loss"},
		Averaging: PointInTime,
	}
	preferredDivsInput = Input{
		Name:          inPreferredDivs,
		Labels:        []string{"Preferred dividends", "Preferred stock dividends", "Dividends on preferred stock"},
		Averaging:     PointInTime,
		ZeroIfMissing: true,
	}
	arInput = Input{
		Name:      inAR,
		Labels:    []string{"Accounts receivable, net", "Accounts receivable"},
		Averaging: TwoPeriodAverage,
	}
	inventoryInput = Input{
		Name:      inInventory,
		Labels:    []string{"Inventory", "Inventories"},
		Averaging: TwoPeriodAverage,
		Optional:  true,
	}
	apInput = Input{
		Name:      inAP,
		Labels:    []string{"Accounts payable"},
		Averaging: TwoPeriodAverage,
	}
	ppeInput = Input{
		Name:      inPPE,
		Labels:    []string{"Property and equipment, net", "Property, plant and equipment, net"},
		Averaging: TwoPeriodAverage,
	}
	assetsInput = Input{
		Name:      inAssets,
		Labels:    []string{"Total assets"},
		Averaging: TwoPeriodAverage,
	}
	equityInput = Input{
		Name:      inEquity,
		Labels:    []string{"Total stockholders' equity", "Total equity"},
		Averaging: TwoPeriodAverage,
	}
	commonEquityInput = Input{
		Name:      inCommonEquity,
		Labels:    []string{"Total common stockholders' equity", "Common stockholders' equity", "stockholders' equity"},
		Averaging: TwoPeriodAverage,
	}
)

// Catalog builds the closed ratio catalog in output order. Formulas
// live here and nowhere else; the engine's resolution loop is generic.
func Catalog(opts Options) []Definition {
	return []Definition{
		{
			Name:   RatioARTurnover,
			Inputs: []Input{salesInput, arInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inSales), in.Get(inAR))
			},
		},
		{
			Name:   RatioInventoryTurnover,
			Inputs: []Input{cogsInput, inventoryInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inCOGS), in.Get(inInventory))
			},
		},
		apTurnover(opts.Purchases),
		{
			Name:   RatioPPETurnover,
			Inputs: []Input{salesInput, ppeInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inSales), in.Get(inPPE))
			},
		},
		{
			Name:   RatioAssetTurnover,
			Inputs: []Input{salesInput, assetsInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inSales), in.Get(inAssets))
			},
		},
		{
			Name:   RatioReturnOnAssets,
			Inputs: []Input{netIncomeInput, assetsInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inNetIncome), in.Get(inAssets))
			},
		},
		{
			Name:      RatioCashConversion,
			DependsOn: []string{RatioInventoryTurnover, RatioARTurnover, RatioAPTurnover},
			Derive: func(components map[string]domain.Value) domain.Value {
				dio := safeDivide(domain.Some(daysIn), components[RatioInventoryTurnover])
				dso := safeDivide(domain.Some(daysIn), components[RatioARTurnover])
				dpo := safeDivide(domain.Some(daysIn), components[RatioAPTurnover])
				if !dio.Valid || !dso.Valid || !dpo.Valid {
					return domain.None()
				}
				return domain.Some(dio.Float + dso.Float - dpo.Float)
			},
		},
		{
			Name:   RatioReturnOnEquity,
			Inputs: []Input{netIncomeInput, equityInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inNetIncome), in.Get(inEquity))
			},
		},
		{
			Name:   RatioReturnOnCommon,
			Inputs: []Input{netIncomeInput, preferredDivsInput, commonEquityInput},
			Formula: func(in Inputs) domain.Value {
				ni, pd := in.Get(inNetIncome), in.Get(inPreferredDivs)
				if !ni.Valid || !pd.Valid {
					return domain.None()
				}
				return safeDivide(domain.Some(ni.Float-pd.Float), in.Get(inCommonEquity))
			},
		},
		{
			Name:   RatioNetProfitMargin,
			Inputs: []Input{netIncomeInput, salesInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inNetIncome), in.Get(inSales))
			},
		},
		{
			Name:   RatioLeverage,
			Inputs: []Input{assetsInput, equityInput},
			Formula: func(in Inputs) domain.Value {
				return safeDivide(in.Get(inAssets), in.Get(inEquity))
			},
		},
	}
}

// apTurnover builds the A/P Turnover definition for the configured
// purchases proxy.
func apTurnover(policy PurchasesPolicy) Definition {
	if policy == PurchasesCOGSPlusInventoryChange {
		invChange := Input{
			Name:          inInvChange,
			Labels:        inventoryInput.Labels,
			Averaging:     PeriodDelta,
			ZeroIfMissing: true,
		}
		return Definition{
			Name:   RatioAPTurnover,
			Inputs: []Input{cogsInput, invChange, apInput},
			Formula: func(in Inputs) domain.Value {
				cogs, change := in.Get(inCOGS), in.Get(inInvChange)
				if !cogs.Valid || !change.Valid {
					return domain.None()
				}
				return safeDivide(domain.Some(cogs.Float+change.Float), in.Get(inAP))
			},
		}
	}
	return Definition{
		Name:   RatioAPTurnover,
		Inputs: []Input{cogsInput, apInput},
		Formula: func(in Inputs) domain.Value {
			return safeDivide(in.Get(inCOGS), in.Get(inAP))
		},
	}
}
