package model

import (
	"fmt"
	"math"
	"slices"
)

const (
	ColumnName   = "Name"
	ColumnMCUSD  = "MC_USD_Billion"
	baseCurrency = "USD"
)

// BaseColumns are the columns produced by extraction, before any conversion.
var BaseColumns = []string{ColumnName, ColumnMCUSD}

// CurrencyColumn returns the column name holding market cap in the given currency.
func CurrencyColumn(code string) string {
	return fmt.Sprintf("MC_%s_Billion", code)
}

// Record is one bank row.
type Record struct {
	Name         string
	MCUSDBillion float64
	Converted    []float64 // aligned with Dataset.Currencies
}

// Dataset is an ordered sequence of records sharing one schema.
type Dataset struct {
	Currencies []string
	Records    []Record
}

// Columns returns the ordered column list of the dataset.
func (d *Dataset) Columns() []string {
	cols := make([]string, 0, len(BaseColumns)+len(d.Currencies))
	cols = append(cols, BaseColumns...)
	for _, c := range d.Currencies {
		cols = append(cols, CurrencyColumn(c))
	}
	return cols
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// Validate checks that the dataset carries exactly the expected columns and
// that every record is uniform with them.
func (d *Dataset) Validate(expected []string) error {
	if got := d.Columns(); !slices.Equal(got, expected) {
		return fmt.Errorf("%w: columns %v, expected %v", ErrSchema, got, expected)
	}
	for i, r := range d.Records {
		if len(r.Converted) != len(d.Currencies) {
			return fmt.Errorf("%w: row %d has %d converted values, expected %d",
				ErrSchema, i, len(r.Converted), len(d.Currencies))
		}
		if math.IsNaN(r.MCUSDBillion) || math.IsInf(r.MCUSDBillion, 0) {
			return fmt.Errorf("%w: row %d (%s) has non-finite market cap %v",
				ErrSchema, i, r.Name, r.MCUSDBillion)
		}
		if r.MCUSDBillion < 0 {
			return fmt.Errorf("%w: row %d (%s) has negative market cap %v",
				ErrSchema, i, r.Name, r.MCUSDBillion)
		}
	}
	return nil
}
