// Package statements extracts financial-statement line items from
// fixed-layout spreadsheet sheets and merges the four statements into a
// single period-consistent view.
//
// Extraction is driven entirely by a validated StatementGeometry: the
// header row supplies the period labels, the label column supplies the
// line-item names, and the configured row/column spans bound the scan.
// Rows with blank labels are skipped; blank or non-numeric value cells
// surface as missing values, never as zero, so downstream ratio logic
// can distinguish the two.
//
// Merge enforces the consistency invariant that all four statements
// agree on the period sequence (PeriodIdentity), or optionally narrows
// to the common income-statement/balance-sheet periods
// (PeriodIntersection) for workbooks with uneven column counts.
package statements
