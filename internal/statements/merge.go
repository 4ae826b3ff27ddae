package statements

import (
	"fmt"

	ferrors "ratiocli/internal/errors"
	"ratiocli/pkg/contracts/domain"
)

// PeriodPolicy controls how merge reconciles the period sequences of
// the four statements.
type PeriodPolicy string

const (
	// PeriodIdentity requires all statements to carry the same period
	// sequence, set and order. This is the default consistency check.
	PeriodIdentity PeriodPolicy = "identity"
	// PeriodIntersection keeps the chronologically ordered common
	// subset of the income-statement and balance-sheet periods, for
	// workbooks whose statements carry different column counts.
	PeriodIntersection PeriodPolicy = "intersection"
)

// ParsePeriodPolicy converts a config string to a PeriodPolicy
func ParsePeriodPolicy(s string) (PeriodPolicy, error) {
	switch PeriodPolicy(s) {
	case PeriodIdentity, PeriodIntersection:
		return PeriodPolicy(s), nil
	default:
		return "", ferrors.NewConfigErrorf("unknown period policy %q", s)
	}
}

// Merge combines the four extracted statements into one immutable view,
// enforcing the period consistency invariant. Exactly one dataset per
// statement kind must be present.
func Merge(datasets []*domain.StatementDataset, policy PeriodPolicy) (*domain.MergedStatements, error) {
	byKind := make(map[domain.StatementKind]*domain.StatementDataset, len(datasets))
	for _, ds := range datasets {
		if _, dup := byKind[ds.Kind]; dup {
			return nil, ferrors.NewConfigErrorf("statement kind %q extracted twice", ds.Kind)
		}
		byKind[ds.Kind] = ds
	}

	ordered := make([]*domain.StatementDataset, 0, len(domain.AllStatementKinds()))
	for _, kind := range domain.AllStatementKinds() {
		ds, ok := byKind[kind]
		if !ok {
			return nil, ferrors.NewConfigErrorf("statement kind %q missing from merge", kind)
		}
		ordered = append(ordered, ds)
	}

	periods, err := mergePeriods(ordered, policy)
	if err != nil {
		return nil, err
	}

	return &domain.MergedStatements{Periods: periods, Datasets: ordered}, nil
}

// mergePeriods applies the configured period policy
func mergePeriods(ordered []*domain.StatementDataset, policy PeriodPolicy) ([]domain.Period, error) {
	switch policy {
	case PeriodIntersection:
		return intersectPeriods(ordered)
	case PeriodIdentity, "":
		return identicalPeriods(ordered)
	default:
		return nil, ferrors.NewConfigErrorf("unknown period policy %q", policy)
	}
}

// identicalPeriods verifies that every statement carries the same
// period sequence and returns it.
func identicalPeriods(ordered []*domain.StatementDataset) ([]domain.Period, error) {
	reference := ordered[0]
	for _, ds := range ordered[1:] {
		if !samePeriods(reference.Periods, ds.Periods) {
			return nil, ferrors.NewPeriodMismatchError(ds.Sheet,
				fmt.Sprintf("periods %v disagree with %s periods %v",
					ds.Periods, reference.Sheet, reference.Periods))
		}
	}
	return reference.Periods, nil
}

// intersectPeriods keeps the income-statement periods that the balance
// sheet also carries, preserving income-statement order.
func intersectPeriods(ordered []*domain.StatementDataset) ([]domain.Period, error) {
	income, _ := pickKind(ordered, domain.StatementIncome)
	balance, _ := pickKind(ordered, domain.StatementBalance)

	inBalance := make(map[domain.Period]bool, len(balance.Periods))
	for _, p := range balance.Periods {
		inBalance[p] = true
	}

	var common []domain.Period
	for _, p := range income.Periods {
		if inBalance[p] {
			common = append(common, p)
		}
	}
	if len(common) == 0 {
		return nil, ferrors.NewPeriodMismatchError(balance.Sheet,
			fmt.Sprintf("no common periods between %s %v and %s %v",
				income.Sheet, income.Periods, balance.Sheet, balance.Periods))
	}
	return common, nil
}

func pickKind(ordered []*domain.StatementDataset, kind domain.StatementKind) (*domain.StatementDataset, bool) {
	for _, ds := range ordered {
		if ds.Kind == kind {
			return ds, true
		}
	}
	return nil, false
}

func samePeriods(a, b []domain.Period) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
