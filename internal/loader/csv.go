package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"banketl/internal/model"
)

// WriteCSV writes ds to path, replacing any existing file. The first column is
// an unnamed 0-based row index.
func WriteCSV(ds *model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	w := csv.NewWriter(f)
	header := append([]string{""}, ds.Columns()...)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, rec := range ds.Records {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(i), rec.Name, formatFloat(rec.MCUSDBillion))
		for _, v := range rec.Converted {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	return f.Close()
}

// ReadCSV loads a file produced by WriteCSV. The index column is dropped.
func ReadCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse csv: empty file")
	}

	header := rows[0]
	if len(header) < 3 || header[1] != model.ColumnName || header[2] != model.ColumnMCUSD {
		return nil, fmt.Errorf("%w: csv header %v", model.ErrSchema, header)
	}
	ds := &model.Dataset{}
	for _, col := range header[3:] {
		code, ok := currencyFromColumn(col)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected column %q", model.ErrSchema, col)
		}
		ds.Currencies = append(ds.Currencies, code)
	}

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("%w: csv row %d has %d fields", model.ErrSchema, i, len(row))
		}
		usd, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i, err)
		}
		rec := model.Record{Name: row[1], MCUSDBillion: usd, Converted: make([]float64, 0, len(ds.Currencies))}
		for _, s := range row[3:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("csv row %d: %w", i, err)
			}
			rec.Converted = append(rec.Converted, v)
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

func currencyFromColumn(col string) (string, bool) {
	if !strings.HasPrefix(col, "MC_") || !strings.HasSuffix(col, "_Billion") {
		return "", false
	}
	code := strings.TrimSuffix(strings.TrimPrefix(col, "MC_"), "_Billion")
	return code, code != ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
