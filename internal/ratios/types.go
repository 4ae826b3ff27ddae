package ratios

import (
	"ratiocli/pkg/contracts/domain"
)

// Averaging selects how an input's per-period value is resolved.
type Averaging int

const (
	// PointInTime uses the period's own value directly (income-statement
	// and cash-flow items).
	PointInTime Averaging = iota
	// TwoPeriodAverage uses the mean of the beginning and ending values,
	// where beginning is the prior period's ending value. When no
	// beginning value is available the ending value stands alone.
	TwoPeriodAverage
	// PeriodDelta uses the change from the prior period (ending minus
	// beginning). With no beginning value the change resolves to zero.
	PeriodDelta
)

// Input declares one named operand of a ratio formula: the label
// variants to look up across the merged statements and how the value is
// resolved per period.
type Input struct {
	Name      string
	Labels    []string
	Averaging Averaging
	// Optional marks inventory-class inputs: a missing line or value
	// makes the ratio not applicable instead of failing resolution.
	Optional bool
	// ZeroIfMissing resolves an absent line or value as zero, for
	// operands whose absence means "none" (e.g. preferred dividends).
	ZeroIfMissing bool
}

// Inputs carries the resolved operand values for one period, keyed by
// Input.Name. Missing operands are explicit (Valid false), never zero.
type Inputs map[string]domain.Value

// Get returns the resolved value for the named operand
func (in Inputs) Get(name string) domain.Value {
	if v, ok := in[name]; ok {
		return v
	}
	return domain.None()
}

// Formula evaluates a ratio from resolved inputs. A not-applicable
// result (missing operand, zero divisor) is an invalid Value, never an
// error.
type Formula func(in Inputs) domain.Value

// Derive evaluates a derived ratio from already-computed component
// ratio values, keyed by ratio name.
type Derive func(components map[string]domain.Value) domain.Value

// Definition is one entry of the closed ratio catalog: either a formula
// ratio over statement inputs, or a derived ratio over the values of
// earlier catalog entries.
type Definition struct {
	Name    string
	Inputs  []Input
	Formula Formula

	// Derived ratios reference earlier catalog entries by name.
	DependsOn []string
	Derive    Derive
}

// IsDerived reports whether the definition computes from other ratios
func (d Definition) IsDerived() bool {
	return d.Derive != nil
}

// safeDivide divides two resolved values, yielding not-applicable when
// either operand is missing or the divisor is zero. It never produces
// Inf or NaN.
func safeDivide(num, den domain.Value) domain.Value {
	if !num.Valid || !den.Valid || den.Float == 0 {
		return domain.None()
	}
	return domain.Some(num.Float / den.Float)
}

// daysIn is the day-count convention for the days-outstanding ratios
const daysIn = 365.0
