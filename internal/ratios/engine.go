package ratios

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ferrors "ratiocli/internal/errors"
	"ratiocli/pkg/contracts/domain"
)

// Engine computes every catalog ratio for every period of a merged
// statement set. Each (ratio, period) cell is computed independently
// from resolved inputs, so evaluation order never affects results.
type Engine struct {
	catalog []Definition
	logger  *slog.Logger
}

// NewEngine creates a ratio engine over the given catalog
func NewEngine(catalog []Definition, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{catalog: catalog, logger: logger}
}

// CatalogOrder returns the ratio names in output order
func (e *Engine) CatalogOrder() []string {
	names := make([]string, len(e.catalog))
	for i, def := range e.catalog {
		names[i] = def.Name
	}
	return names
}

// resolvedInput binds a declared input to the line item it resolved to,
// if any.
type resolvedInput struct {
	input Input
	item  domain.LineItem
	found bool
}

// Compute produces one RatioResult per (ratio, period), in catalog
// order crossed with chronological period order. Missing inputs and
// zero divisors surface as not-applicable results; only ambiguous input
// labels are an error.
func (e *Engine) Compute(ctx context.Context, merged *domain.MergedStatements) ([]domain.RatioResult, error) {
	start := time.Now()

	resolved, err := e.resolveInputs(merged)
	if err != nil {
		return nil, err
	}

	table := make(domain.ResultTable, len(e.catalog))
	results := make([]domain.RatioResult, 0, len(e.catalog)*len(merged.Periods))

	for _, def := range e.catalog {
		row := make(map[domain.Period]domain.Value, len(merged.Periods))
		for _, period := range merged.Periods {
			var v domain.Value
			if def.IsDerived() {
				v = e.deriveValue(def, period, table)
			} else {
				v = def.Formula(e.formulaInputs(def, resolved, merged, period))
			}
			row[period] = v
			results = append(results, domain.RatioResult{Ratio: def.Name, Period: period, Value: v})
		}
		table[def.Name] = row
	}

	applicable := 0
	for _, r := range results {
		if r.Applicable() {
			applicable++
		}
	}
	e.logger.InfoContext(ctx, "ratio computation completed",
		slog.Int("ratios", len(e.catalog)),
		slog.Int("periods", len(merged.Periods)),
		slog.Int("applicable_cells", applicable),
		slog.Int("blank_cells", len(results)-applicable),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}

// resolveInputs binds every catalog input to a line item once, before
// any computation, so ambiguous labels abort the run up front.
func (e *Engine) resolveInputs(merged *domain.MergedStatements) (map[string]resolvedInput, error) {
	resolved := make(map[string]resolvedInput)
	for _, def := range e.catalog {
		for _, input := range def.Inputs {
			if _, done := resolved[input.Name]; done {
				continue
			}
			item, found, err := resolveItem(merged, input)
			if err != nil {
				return nil, err
			}
			resolved[input.Name] = resolvedInput{input: input, item: item, found: found}
			if !found && !input.Optional && !input.ZeroIfMissing {
				e.logger.Warn("required ratio input not found in any statement",
					slog.String("input", input.Name),
					slog.String("labels", fmt.Sprintf("%v", input.Labels)))
			}
		}
	}
	return resolved, nil
}

// resolveItem looks an input up across the merged statements: exact
// label match first (income statement, balance sheet, equity, cash
// flow), then substring fallback in the same order. An exact label
// matching in more than one statement is a configuration error.
func resolveItem(merged *domain.MergedStatements, input Input) (domain.LineItem, bool, error) {
	for _, label := range input.Labels {
		var (
			hit      domain.LineItem
			hitSheet string
			matches  int
		)
		for _, ds := range merged.Datasets {
			if item, ok := ds.Lookup(label); ok {
				if matches == 0 {
					hit, hitSheet = item, ds.Sheet
				}
				matches++
			}
		}
		if matches > 1 {
			return domain.LineItem{}, false, ferrors.NewAmbiguousLabelError(label,
				fmt.Sprintf("matches %d statements (first: %s)", matches, hitSheet))
		}
		if matches == 1 {
			return hit, true, nil
		}
	}

	for _, ds := range merged.Datasets {
		for _, label := range input.Labels {
			if item, ok := ds.LookupSubstring(label); ok {
				return item, true, nil
			}
		}
	}

	return domain.LineItem{}, false, nil
}

// formulaInputs resolves every declared operand of a formula ratio for
// one period, applying the input's averaging policy.
func (e *Engine) formulaInputs(def Definition, resolved map[string]resolvedInput, merged *domain.MergedStatements, period domain.Period) Inputs {
	in := make(Inputs, len(def.Inputs))
	for _, input := range def.Inputs {
		in[input.Name] = resolveValue(resolved[input.Name], merged, period)
	}
	return in
}

// resolveValue applies the averaging policy for one (input, period)
// pair. Missing stays missing unless the input resolves absence to
// zero by declaration.
func resolveValue(r resolvedInput, merged *domain.MergedStatements, period domain.Period) domain.Value {
	if !r.found {
		return missingValue(r.input)
	}

	end := r.item.Value(period)

	switch r.input.Averaging {
	case TwoPeriodAverage:
		if !end.Valid {
			return missingValue(r.input)
		}
		if begin, ok := beginningValue(r.item, merged, period); ok {
			return domain.Some((begin + end.Float) / 2)
		}
		// Single-period fallback: with no beginning value the ending
		// value stands alone, never a synthetic prior.
		return end
	case PeriodDelta:
		if !end.Valid {
			return missingValue(r.input)
		}
		if begin, ok := beginningValue(r.item, merged, period); ok {
			return domain.Some(end.Float - begin)
		}
		return domain.Some(0)
	default:
		if !end.Valid {
			return missingValue(r.input)
		}
		return end
	}
}

// beginningValue returns the prior period's ending value, if both the
// prior period and its value exist.
func beginningValue(item domain.LineItem, merged *domain.MergedStatements, period domain.Period) (float64, bool) {
	prior, ok := merged.PriorPeriod(period)
	if !ok {
		return 0, false
	}
	begin := item.Value(prior)
	if !begin.Valid {
		return 0, false
	}
	return begin.Float, true
}

func missingValue(input Input) domain.Value {
	if input.ZeroIfMissing {
		return domain.Some(0)
	}
	return domain.None()
}

// deriveValue evaluates a derived ratio from the already-computed
// component values for the same period.
func (e *Engine) deriveValue(def Definition, period domain.Period, table domain.ResultTable) domain.Value {
	components := make(map[string]domain.Value, len(def.DependsOn))
	for _, name := range def.DependsOn {
		components[name] = table.Get(name, period)
	}
	return def.Derive(components)
}
