package domain

import (
	"strings"
)

// StatementKind identifies one of the four financial statements the
// pipeline understands. The set is closed; geometry and ratio resolution
// are both keyed by it.
type StatementKind string

const (
	StatementIncome   StatementKind = "income_statement"
	StatementBalance  StatementKind = "balance_sheet"
	StatementEquity   StatementKind = "stockholders_equity"
	StatementCashFlow StatementKind = "cash_flow"
)

// AllStatementKinds returns the statement kinds in input-resolution order:
// income statement first, then balance sheet, equity, and cash flow.
// Ratio input lookup walks statements in exactly this order.
func AllStatementKinds() []StatementKind {
	return []StatementKind{
		StatementIncome,
		StatementBalance,
		StatementEquity,
		StatementCashFlow,
	}
}

// String returns the string representation of the statement kind
func (k StatementKind) String() string {
	return string(k)
}

// IsValid checks whether the kind is one of the four known statements
func (k StatementKind) IsValid() bool {
	switch k {
	case StatementIncome, StatementBalance, StatementEquity, StatementCashFlow:
		return true
	}
	return false
}

// Period identifies one reporting period (a fiscal-year header label).
// Chronological order is the left-to-right column order of the source
// sheet and is carried separately as a []Period slice.
type Period string

// String returns the period label
func (p Period) String() string {
	return string(p)
}

// Value is an explicit optional numeric. A blank or non-numeric source
// cell produces an invalid Value; downstream logic must never collapse
// "missing" into zero.
type Value struct {
	Float float64 `json:"float"`
	Valid bool    `json:"valid"`
}

// Some returns a present Value
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// None returns a missing Value
func None() Value {
	return Value{}
}

// LineItem is one labeled row of a statement with its per-period values.
// Periods with blank or non-numeric source cells are absent from Values.
type LineItem struct {
	Label  string             `json:"label"`
	Key    string             `json:"key"` // normalized form of Label
	Values map[Period]float64 `json:"values"`
}

// Value returns the line item's value for the period, if present.
func (li LineItem) Value(p Period) Value {
	if v, ok := li.Values[p]; ok {
		return Some(v)
	}
	return None()
}

// NormalizeLabel canonicalizes a line-item label for lookup: lower-cased
// with runs of whitespace collapsed to single spaces.
func NormalizeLabel(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), " ")
}

// StatementDataset is the extracted table of one statement: an ordered
// sequence of line items plus the periods read from the header row.
// Datasets are built once per run and never mutated afterwards.
type StatementDataset struct {
	Kind    StatementKind `json:"kind"`
	Sheet   string        `json:"sheet"`
	Periods []Period      `json:"periods"`
	Items   []LineItem    `json:"items"`

	byKey map[string]int
}

// NewStatementDataset builds a dataset and its label index.
func NewStatementDataset(kind StatementKind, sheet string, periods []Period, items []LineItem) *StatementDataset {
	ds := &StatementDataset{
		Kind:    kind,
		Sheet:   sheet,
		Periods: periods,
		Items:   items,
		byKey:   make(map[string]int, len(items)),
	}
	for i, item := range items {
		if _, exists := ds.byKey[item.Key]; !exists {
			ds.byKey[item.Key] = i
		}
	}
	return ds
}

// Lookup returns the line item whose normalized label matches exactly.
func (ds *StatementDataset) Lookup(label string) (LineItem, bool) {
	if i, ok := ds.byKey[NormalizeLabel(label)]; ok {
		return ds.Items[i], true
	}
	return LineItem{}, false
}

// LookupSubstring returns the first line item whose normalized label
// contains the normalized needle. Exact lookup should be tried first.
func (ds *StatementDataset) LookupSubstring(label string) (LineItem, bool) {
	needle := NormalizeLabel(label)
	for _, item := range ds.Items {
		if strings.Contains(item.Key, needle) {
			return item, true
		}
	}
	return LineItem{}, false
}

// HasLabel reports whether any line item matches the label exactly.
func (ds *StatementDataset) HasLabel(label string) bool {
	_, ok := ds.Lookup(label)
	return ok
}

// MergedStatements holds the four extracted datasets in resolution order
// together with the agreed period sequence. It is produced only by the
// merge step, after the period consistency check.
type MergedStatements struct {
	Periods  []Period            `json:"periods"`
	Datasets []*StatementDataset `json:"datasets"` // in AllStatementKinds order
}

// Dataset returns the dataset for the given kind, if present.
func (m *MergedStatements) Dataset(kind StatementKind) (*StatementDataset, bool) {
	for _, ds := range m.Datasets {
		if ds.Kind == kind {
			return ds, true
		}
	}
	return nil, false
}

// PriorPeriod returns the period immediately before p in chronological
// order, or false for the earliest period.
func (m *MergedStatements) PriorPeriod(p Period) (Period, bool) {
	for i, q := range m.Periods {
		if q == p {
			if i == 0 {
				return "", false
			}
			return m.Periods[i-1], true
		}
	}
	return "", false
}
