package config

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	ferrors "ratiocli/internal/errors"
	"ratiocli/pkg/contracts/domain"
)

// Column is a 1-based spreadsheet column index. In YAML it may be given
// either as a column letter ("B") or as a number.
type Column int

// UnmarshalYAML accepts "B" / "AA" style letters or plain integers
func (c *Column) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var n int
	if err := unmarshal(&n); err == nil {
		*c = Column(n)
		return nil
	}
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	n, err := excelize.ColumnNameToNumber(s)
	if err != nil {
		return fmt.Errorf("invalid column %q: %w", s, err)
	}
	*c = Column(n)
	return nil
}

// Letter returns the spreadsheet letter form of the column
func (c Column) Letter() string {
	name, err := excelize.ColumnNumberToName(int(c))
	if err != nil {
		return "?"
	}
	return name
}

// StatementGeometry declares the fixed layout of one statement sheet:
// where the period header row sits, which column carries line-item
// labels, and the row/column spans holding data. Pure data.
type StatementGeometry struct {
	Sheet            string `yaml:"sheet" validate:"required"`
	HeaderRow        int    `yaml:"header_row" validate:"gt=0"`
	LabelColumn      Column `yaml:"label_column" validate:"gt=0"`
	FirstDataRow     int    `yaml:"first_data_row" validate:"gt=0"`
	LastDataRow      int    `yaml:"last_data_row" validate:"gt=0"`
	FirstValueColumn Column `yaml:"first_value_column" validate:"gt=0"`
	LastValueColumn  Column `yaml:"last_value_column" validate:"gt=0"`
}

// Validate enforces the geometry invariants: the data row range must sit
// below the header row and the value column range must be non-empty.
// (The column range is contiguous by construction: first..last.)
func (g StatementGeometry) Validate() error {
	if err := validate.Struct(g); err != nil {
		return ferrors.NewConfigErrorf("sheet %s: %v", g.Sheet, err)
	}
	if g.FirstDataRow <= g.HeaderRow {
		return ferrors.NewConfigErrorf("sheet %s: data rows %d-%d must start below header row %d",
			g.Sheet, g.FirstDataRow, g.LastDataRow, g.HeaderRow)
	}
	if g.LastDataRow < g.FirstDataRow {
		return ferrors.NewConfigErrorf("sheet %s: last data row %d precedes first data row %d",
			g.Sheet, g.LastDataRow, g.FirstDataRow)
	}
	if g.LastValueColumn < g.FirstValueColumn {
		return ferrors.NewConfigErrorf("sheet %s: value column range %s-%s is empty",
			g.Sheet, g.FirstValueColumn.Letter(), g.LastValueColumn.Letter())
	}
	return nil
}

// ValueColumns returns the configured value columns left to right
func (g StatementGeometry) ValueColumns() []Column {
	cols := make([]Column, 0, int(g.LastValueColumn-g.FirstValueColumn)+1)
	for c := g.FirstValueColumn; c <= g.LastValueColumn; c++ {
		cols = append(cols, c)
	}
	return cols
}

// GeometrySet is the validated, immutable registry of statement
// geometries keyed by statement kind. Callers pass a set explicitly
// into extraction; there is no mutable process-wide default.
type GeometrySet struct {
	byKind map[domain.StatementKind]StatementGeometry
}

// NewGeometrySet validates every geometry and builds the registry
func NewGeometrySet(geoms map[domain.StatementKind]StatementGeometry) (*GeometrySet, error) {
	byKind := make(map[domain.StatementKind]StatementGeometry, len(geoms))
	for kind, g := range geoms {
		if !kind.IsValid() {
			return nil, ferrors.NewConfigErrorf("unknown statement kind %q", kind)
		}
		if err := g.Validate(); err != nil {
			return nil, err
		}
		byKind[kind] = g
	}
	return &GeometrySet{byKind: byKind}, nil
}

// Get returns the geometry registered for the kind
func (s *GeometrySet) Get(kind domain.StatementKind) (StatementGeometry, error) {
	g, ok := s.byKind[kind]
	if !ok {
		return StatementGeometry{}, ferrors.NewConfigErrorf("no geometry registered for statement kind %q", kind)
	}
	return g, nil
}

// Kinds returns the registered kinds in resolution order
func (s *GeometrySet) Kinds() []domain.StatementKind {
	var kinds []domain.StatementKind
	for _, kind := range domain.AllStatementKinds() {
		if _, ok := s.byKind[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// DefaultGeometries returns the registry for the standard workbook
// layout: INCOME_STATEMENT, BALANCE_SHEET, STOCKHOLDERS_EQUITY and
// CASH_FLOW sheets with their fixed header/label/data spans.
func DefaultGeometries() *GeometrySet {
	set, err := NewGeometrySet(map[domain.StatementKind]StatementGeometry{
		domain.StatementIncome: {
			Sheet:            "INCOME_STATEMENT",
			HeaderRow:        15,
			LabelColumn:      2,
			FirstDataRow:     16,
			LastDataRow:      42,
			FirstValueColumn: 3,
			LastValueColumn:  5,
		},
		domain.StatementBalance: {
			Sheet:            "BALANCE_SHEET",
			HeaderRow:        14,
			LabelColumn:      2,
			FirstDataRow:     17,
			LastDataRow:      55,
			FirstValueColumn: 3,
			LastValueColumn:  4,
		},
		domain.StatementEquity: {
			Sheet:            "STOCKHOLDERS_EQUITY",
			HeaderRow:        17,
			LabelColumn:      2,
			FirstDataRow:     18,
			LastDataRow:      62,
			FirstValueColumn: 3,
			LastValueColumn:  10,
		},
		domain.StatementCashFlow: {
			Sheet:            "CASH_FLOW",
			HeaderRow:        15,
			LabelColumn:      2,
			FirstDataRow:     17,
			LastDataRow:      68,
			FirstValueColumn: 3,
			LastValueColumn:  5,
		},
	})
	if err != nil {
		// The defaults are fixed at compile time; a validation failure
		// here is a programming error.
		panic(err)
	}
	return set
}

// LoadGeometries reads a YAML geometry file keyed by statement kind and
// returns a validated registry. Reconfiguring for a different workbook
// layout means loading a different file, not mutating the defaults.
func LoadGeometries(path string) (*GeometrySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry file: %w", err)
	}
	var raw map[string]StatementGeometry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse geometry file: %w", err)
	}
	geoms := make(map[domain.StatementKind]StatementGeometry, len(raw))
	for key, g := range raw {
		geoms[domain.StatementKind(key)] = g
	}
	return NewGeometrySet(geoms)
}
