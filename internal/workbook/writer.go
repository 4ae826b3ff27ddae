package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	ferrors "ratiocli/internal/errors"
	"ratiocli/pkg/contracts/domain"
)

// WriteRatios lays the results out on the named sheet: ratio names down
// column A in catalog order, one column per period in chronological
// order. Not-applicable cells stay blank; blank is the documented
// signal that a ratio does not apply to that period. An existing sheet
// of the same name is replaced.
func WriteRatios(f *excelize.File, sheet string, order []string, periods []domain.Period, results []domain.RatioResult) error {
	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return ferrors.WrapIO(err, fmt.Sprintf("failed to replace sheet %s", sheet))
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return ferrors.WrapIO(err, fmt.Sprintf("failed to create sheet %s", sheet))
	}

	if err := setCell(f, sheet, 1, 1, "Ratio"); err != nil {
		return err
	}
	for i, p := range periods {
		if err := setCell(f, sheet, i+2, 1, p.String()); err != nil {
			return err
		}
	}

	table := domain.NewResultTable(results)
	for rowIdx, name := range order {
		if err := setCell(f, sheet, 1, rowIdx+2, name); err != nil {
			return err
		}
		for colIdx, p := range periods {
			v := table.Get(name, p)
			if !v.Valid {
				continue
			}
			if err := setCell(f, sheet, colIdx+2, rowIdx+2, v.Float); err != nil {
				return err
			}
		}
	}

	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ferrors.WrapIO(err, fmt.Sprintf("invalid cell coordinates (%d,%d)", col, row))
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return ferrors.WrapIO(err, fmt.Sprintf("failed to write cell %s!%s", sheet, cell))
	}
	return nil
}
