package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"ratiocli/pkg/contracts/domain"
)

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // add UTF-8 BOM for Excel compatibility
}

// WriteRatiosCSV writes the ratio table as a CSV artifact with the same
// layout as the RATIOS sheet: a header of period labels and one row per
// ratio in catalog order. Not-applicable cells are empty fields.
func WriteRatiosCSV(path string, order []string, periods []domain.Period, results []domain.RatioResult) error {
	headers := make([]string, 0, len(periods)+1)
	headers = append(headers, "Ratio")
	for _, p := range periods {
		headers = append(headers, p.String())
	}

	table := domain.NewResultTable(results)
	records := make([][]string, 0, len(order))
	for _, name := range order {
		record := make([]string, 0, len(periods)+1)
		record = append(record, name)
		for _, p := range periods {
			record = append(record, formatValue(table.Get(name, p)))
		}
		records = append(records, record)
	}

	return writeCSV(path, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

// writeCSV writes data to a CSV file with the given options
func writeCSV(path string, options WriteOptions) error {
	slog.Info("writing CSV file",
		slog.String("path", path),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// formatValue renders a ratio cell; not-applicable is an empty field,
// never zero.
func formatValue(v domain.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}
