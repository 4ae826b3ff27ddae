package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	ferrors "ratiocli/internal/errors"
)

// Reader wraps an open excelize workbook behind the grid capability the
// extractor consumes.
type Reader struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, ferrors.WrapIO(err, fmt.Sprintf("failed to open workbook %s", path))
	}
	return &Reader{file: f, path: path}, nil
}

// File exposes the underlying workbook for the writer
func (r *Reader) File() *excelize.File {
	return r.file
}

// Close releases the workbook
func (r *Reader) Close() error {
	return r.file.Close()
}

// Grid materializes the populated cells of one sheet. The whole sheet
// is read once; extraction then works off the in-memory copy.
func (r *Reader) Grid(sheet string) (*SheetGrid, error) {
	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return nil, ferrors.WrapIO(err, fmt.Sprintf("failed to read sheet %s", sheet))
	}
	return NewSheetGrid(sheet, rows), nil
}

// SaveAs persists the workbook to path
func (r *Reader) SaveAs(path string) error {
	if path == r.path {
		if err := r.file.Save(); err != nil {
			return ferrors.WrapIO(err, fmt.Sprintf("failed to save workbook %s", path))
		}
		return nil
	}
	if err := r.file.SaveAs(path); err != nil {
		return ferrors.WrapIO(err, fmt.Sprintf("failed to save workbook %s", path))
	}
	return nil
}

// SheetGrid is an immutable snapshot of a sheet's populated cells.
// Rows are ragged the way excelize returns them: trailing blank cells
// and rows are trimmed.
type SheetGrid struct {
	sheet   string
	cells   [][]string
	maxCols int
}

// NewSheetGrid builds a grid from row-major cell text
func NewSheetGrid(sheet string, cells [][]string) *SheetGrid {
	maxCols := 0
	for _, row := range cells {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	return &SheetGrid{sheet: sheet, cells: cells, maxCols: maxCols}
}

// Sheet returns the sheet name
func (g *SheetGrid) Sheet() string {
	return g.sheet
}

// Rows returns the populated row count
func (g *SheetGrid) Rows() int {
	return len(g.cells)
}

// MaxCols returns the widest populated column count
func (g *SheetGrid) MaxCols() int {
	return g.maxCols
}

// Cell returns the text of the 1-based (row, col) cell; cells outside
// the populated extent read as empty.
func (g *SheetGrid) Cell(row, col int) string {
	if row < 1 || row > len(g.cells) {
		return ""
	}
	r := g.cells[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}
