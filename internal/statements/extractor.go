package statements

import (
	"log/slog"
	"strconv"
	"strings"

	"ratiocli/internal/config"
	ferrors "ratiocli/internal/errors"
	"ratiocli/pkg/contracts/domain"
)

// CellGrid is the narrow capability the extractor needs from a
// spreadsheet backend: the populated extent of one sheet and 1-based
// cell access. Cells outside the populated extent read as empty.
type CellGrid interface {
	Sheet() string
	Rows() int
	MaxCols() int
	Cell(row, col int) string
}

// Extractor turns one configured statement sheet into a StatementDataset
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor with the given logger
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract reads the configured label and value ranges from the grid and
// produces the statement's ordered line-item table. Rows with blank
// labels are skipped; blank or non-numeric value cells are recorded as
// missing, never as zero.
func (e *Extractor) Extract(kind domain.StatementKind, geom config.StatementGeometry, grid CellGrid) (*domain.StatementDataset, error) {
	if err := checkExtent(geom, grid); err != nil {
		return nil, err
	}

	periods, err := readPeriods(geom, grid)
	if err != nil {
		return nil, err
	}

	valueCols := geom.ValueColumns()
	var items []domain.LineItem

	lastRow := geom.LastDataRow
	if lastRow > grid.Rows() {
		// Trailing rows beyond the populated extent behave like blank
		// rows: grid providers trim them, so they cannot be fatal.
		lastRow = grid.Rows()
	}

	for row := geom.FirstDataRow; row <= lastRow; row++ {
		label := strings.TrimSpace(grid.Cell(row, int(geom.LabelColumn)))
		if label == "" {
			continue
		}

		values := make(map[domain.Period]float64, len(valueCols))
		for i, col := range valueCols {
			raw := grid.Cell(row, int(col))
			if v, ok := parseNumeric(raw); ok {
				values[periods[i]] = v
			}
		}

		items = append(items, domain.LineItem{
			Label:  label,
			Key:    domain.NormalizeLabel(label),
			Values: values,
		})
	}

	e.logger.Debug("statement extracted",
		slog.String("kind", kind.String()),
		slog.String("sheet", grid.Sheet()),
		slog.Int("line_items", len(items)),
		slog.Int("periods", len(periods)))

	return domain.NewStatementDataset(kind, grid.Sheet(), periods, items), nil
}

// checkExtent verifies that the configured ranges intersect the sheet's
// populated area. A range that starts beyond it can never produce data
// and indicates a miswired geometry.
func checkExtent(geom config.StatementGeometry, grid CellGrid) error {
	rows, cols := grid.Rows(), grid.MaxCols()
	switch {
	case geom.HeaderRow > rows:
		return ferrors.NewRangeErrorf(grid.Sheet(), "header row %d exceeds populated rows (%d)", geom.HeaderRow, rows)
	case geom.FirstDataRow > rows:
		return ferrors.NewRangeErrorf(grid.Sheet(), "data rows %d-%d exceed populated rows (%d)", geom.FirstDataRow, geom.LastDataRow, rows)
	case int(geom.LabelColumn) > cols:
		return ferrors.NewRangeErrorf(grid.Sheet(), "label column %s exceeds populated columns (%d)", geom.LabelColumn.Letter(), cols)
	case int(geom.FirstValueColumn) > cols:
		return ferrors.NewRangeErrorf(grid.Sheet(), "value columns %s-%s exceed populated columns (%d)",
			geom.FirstValueColumn.Letter(), geom.LastValueColumn.Letter(), cols)
	}
	return nil
}

// readPeriods derives the period sequence from the header row, one
// period per value column, in left-to-right (chronological) order.
func readPeriods(geom config.StatementGeometry, grid CellGrid) ([]domain.Period, error) {
	cols := geom.ValueColumns()
	periods := make([]domain.Period, 0, len(cols))
	seen := make(map[domain.Period]bool, len(cols))
	for _, col := range cols {
		label := strings.TrimSpace(grid.Cell(geom.HeaderRow, int(col)))
		if label == "" {
			return nil, ferrors.NewRangeErrorf(grid.Sheet(), "header row %d has no period label in column %s",
				geom.HeaderRow, col.Letter())
		}
		p := domain.Period(label)
		if seen[p] {
			return nil, ferrors.NewRangeErrorf(grid.Sheet(), "duplicate period label %q in header row %d", label, geom.HeaderRow)
		}
		seen[p] = true
		periods = append(periods, p)
	}
	return periods, nil
}

// parseNumeric parses a cell into a float, tolerating thousands
// separators. Blank and non-numeric cells report ok=false; callers must
// treat that as missing, not zero.
func parseNumeric(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
