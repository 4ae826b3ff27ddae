package domain

// RatioResult is one computed ratio cell: a ratio name, a period, and
// either a numeric value or an explicit "not applicable" (Value.Valid
// false). Not-applicable results are written as blank cells, never zero.
type RatioResult struct {
	Ratio  string `json:"ratio"`
	Period Period `json:"period"`
	Value  Value  `json:"value"`
}

// Applicable reports whether the ratio produced a numeric value.
func (r RatioResult) Applicable() bool {
	return r.Value.Valid
}

// ResultTable indexes ratio results by ratio name and period for
// tabular layout. Row and column order are supplied by the caller
// (catalog order and chronological period order).
type ResultTable map[string]map[Period]Value

// NewResultTable builds the index from a flat result sequence.
func NewResultTable(results []RatioResult) ResultTable {
	t := make(ResultTable)
	for _, r := range results {
		row, ok := t[r.Ratio]
		if !ok {
			row = make(map[Period]Value)
			t[r.Ratio] = row
		}
		row[r.Period] = r.Value
	}
	return t
}

// Get returns the value for (ratio, period); missing cells are None.
func (t ResultTable) Get(ratio string, period Period) Value {
	if row, ok := t[ratio]; ok {
		if v, ok := row[period]; ok {
			return v
		}
	}
	return None()
}
