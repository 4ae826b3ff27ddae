// Package ratios implements the financial-ratio computation engine.
//
// The catalog is the only place formulas live: a closed, ordered list
// of definitions, each declaring its operands (label variants,
// averaging policy, optionality) and a pure formula over the resolved
// values. Derived ratios (Cash Conversion Cycle) reference earlier
// catalog entries instead of statement inputs.
//
// The engine's resolution loop is generic. For each ratio and period it
// looks operands up across the merged statements (income statement
// first, then balance sheet, equity, cash flow; exact label match
// before substring fallback), applies the per-input averaging policy
// (balance-sheet items average beginning and ending values, with a
// single-period fallback), evaluates the formula, and records the
// result. Missing operands and zero divisors yield explicit
// not-applicable results; they are never errors and never Inf/NaN.
package ratios
