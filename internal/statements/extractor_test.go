package statements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ratiocli/internal/config"
	ferrors "ratiocli/internal/errors"
	"ratiocli/internal/workbook"
	"ratiocli/pkg/contracts/domain"
)

// testGeometry is a compact layout for fixtures: header on row 2,
// labels in column A, data rows 3-6, values in columns B-C.
func testGeometry() config.StatementGeometry {
	return config.StatementGeometry{
		Sheet:            "INCOME_STATEMENT",
		HeaderRow:        2,
		LabelColumn:      1,
		FirstDataRow:     3,
		LastDataRow:      6,
		FirstValueColumn: 2,
		LastValueColumn:  3,
	}
}

func TestExtract(t *testing.T) {
	grid := workbook.NewSheetGrid("INCOME_STATEMENT", [][]string{
		{"Income Statement"},
		{"", "2023", "2024"},
		{"Revenue", "1,500", "3,000"},
		{"Cost of revenue", "900", "1200"},
		{"Net income (loss)", "", "500"},
		{"Margin note", "n/a", "see notes"},
	})

	ds, err := NewExtractor(nil).Extract(domain.StatementIncome, testGeometry(), grid)
	require.NoError(t, err)

	assert.Equal(t, domain.StatementIncome, ds.Kind)
	assert.Equal(t, "INCOME_STATEMENT", ds.Sheet)
	assert.Equal(t, []domain.Period{"2023", "2024"}, ds.Periods)
	require.Len(t, ds.Items, 4)

	t.Run("values parsed with thousands separators", func(t *testing.T) {
		rev, ok := ds.Lookup("Revenue")
		require.True(t, ok)
		assert.Equal(t, domain.Some(1500), rev.Value("2023"))
		assert.Equal(t, domain.Some(3000), rev.Value("2024"))
	})

	t.Run("blank cell is missing, not zero", func(t *testing.T) {
		ni, ok := ds.Lookup("Net income (loss)")
		require.True(t, ok)
		assert.False(t, ni.Value("2023").Valid)
		assert.Equal(t, domain.Some(500), ni.Value("2024"))
	})

	t.Run("non-numeric cells are missing", func(t *testing.T) {
		note, ok := ds.Lookup("Margin note")
		require.True(t, ok)
		assert.False(t, note.Value("2023").Valid)
		assert.False(t, note.Value("2024").Valid)
	})

	t.Run("labels normalized for lookup", func(t *testing.T) {
		_, ok := ds.Lookup("  NET INCOME (LOSS) ")
		assert.True(t, ok)
	})
}

func TestExtractSkipsBlankLabelRows(t *testing.T) {
	grid := workbook.NewSheetGrid("INCOME_STATEMENT", [][]string{
		{},
		{"", "2023", "2024"},
		{"Revenue", "100", "200"},
		{"", "999", "999"}, // values without a label are not line items
		{"Net income (loss)", "10", "20"},
		{""}, // trailing blank row
	})

	ds, err := NewExtractor(nil).Extract(domain.StatementIncome, testGeometry(), grid)
	require.NoError(t, err)

	require.Len(t, ds.Items, 2)
	assert.Equal(t, "Revenue", ds.Items[0].Label)
	assert.Equal(t, "Net income (loss)", ds.Items[1].Label)
}

func TestExtractRowsOutsideRangeNotScanned(t *testing.T) {
	grid := workbook.NewSheetGrid("INCOME_STATEMENT", [][]string{
		{"Stray above", "1", "2"},
		{"", "2023", "2024"},
		{"Revenue", "100", "200"},
		{"Cost of revenue", "60", "120"},
		{"Net income (loss)", "10", "20"},
		{"Gross margin", "40", "80"},
		{"Stray below", "7", "8"}, // row 7, past LastDataRow
	})

	ds, err := NewExtractor(nil).Extract(domain.StatementIncome, testGeometry(), grid)
	require.NoError(t, err)

	assert.False(t, ds.HasLabel("Stray above"))
	assert.False(t, ds.HasLabel("Stray below"))
	assert.True(t, ds.HasLabel("Gross margin"))
}

func TestExtractRangeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.StatementGeometry)
		cells  [][]string
	}{
		{
			name:   "header row beyond populated rows",
			mutate: func(g *config.StatementGeometry) { g.HeaderRow = 40; g.FirstDataRow = 41; g.LastDataRow = 45 },
			cells: [][]string{
				{"", "2023", "2024"},
				{"Revenue", "1", "2"},
			},
		},
		{
			name:   "data rows beyond populated rows",
			mutate: func(g *config.StatementGeometry) { g.FirstDataRow = 30; g.LastDataRow = 40 },
			cells: [][]string{
				{""},
				{"", "2023", "2024"},
				{"Revenue", "1", "2"},
			},
		},
		{
			name:   "value columns beyond populated columns",
			mutate: func(g *config.StatementGeometry) { g.FirstValueColumn = 9; g.LastValueColumn = 10 },
			cells: [][]string{
				{""},
				{"", "2023", "2024"},
				{"Revenue", "1", "2"},
			},
		},
		{
			name: "blank period header cell",
			cells: [][]string{
				{""},
				{"", "2023", ""},
				{"Revenue", "1", "2"},
			},
		},
		{
			name: "duplicate period header labels",
			cells: [][]string{
				{""},
				{"", "2023", "2023"},
				{"Revenue", "1", "2"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geom := testGeometry()
			if tt.mutate != nil {
				tt.mutate(&geom)
			}
			grid := workbook.NewSheetGrid("INCOME_STATEMENT", tt.cells)

			_, err := NewExtractor(nil).Extract(domain.StatementIncome, geom, grid)
			require.Error(t, err)
			assert.True(t, ferrors.IsType(err, ferrors.TypeRange), "expected range error, got %v", err)
		})
	}
}

func TestExtractTailOverhangTolerated(t *testing.T) {
	// The configured data range runs past the populated extent; grid
	// providers trim trailing blank rows, so the overhang must behave
	// like blank rows rather than failing.
	grid := workbook.NewSheetGrid("INCOME_STATEMENT", [][]string{
		{""},
		{"", "2023", "2024"},
		{"Revenue", "100", "200"},
	})
	geom := testGeometry() // data rows 3-6, only row 3 populated

	ds, err := NewExtractor(nil).Extract(domain.StatementIncome, geom, grid)
	require.NoError(t, err)
	require.Len(t, ds.Items, 1)
	assert.Equal(t, "Revenue", ds.Items[0].Label)
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		raw      string
		expected float64
		ok       bool
	}{
		{"1234", 1234, true},
		{"1,234,567", 1234567, true},
		{"-42.5", -42.5, true},
		{" 17 ", 17, true},
		{"", 0, false},
		{"   ", 0, false},
		{"n/a", 0, false},
		{"12a", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := parseNumeric(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, v)
			}
		})
	}
}
