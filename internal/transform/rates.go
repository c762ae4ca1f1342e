package transform

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"banketl/internal/model"
)

const (
	currencyHeader = "Currency"
	rateHeader     = "Rate"
)

// FileReader opens named files for reading.
type FileReader interface {
	Open(name string) (io.ReadCloser, error)
}

// OSFiles reads from the local filesystem.
type OSFiles struct{}

func (OSFiles) Open(name string) (io.ReadCloser, error) { return os.Open(name) }

// LoadRates reads a Currency,Rate table. Codes keep their file order.
func LoadRates(files FileReader, path string) (*model.RateTable, error) {
	f, err := files.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate file: %w", err)
	}
	defer f.Close()
	return ParseRates(f)
}

// ParseRates parses a CSV rate table with a header row naming the Currency
// and Rate columns. Other columns are ignored.
func ParseRates(r io.Reader) (*model.RateTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rates: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("parse rates: %w", err)
	}
	curIdx, rateIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case currencyHeader:
			curIdx = i
		case rateHeader:
			rateIdx = i
		}
	}
	if curIdx < 0 || rateIdx < 0 {
		return nil, fmt.Errorf("parse rates: header %v must contain %s and %s", header, currencyHeader, rateHeader)
	}

	table := model.NewRateTable()
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse rates: %w", err)
		}
		if len(rec) <= curIdx || len(rec) <= rateIdx {
			return nil, fmt.Errorf("parse rates: line %d: too few fields", line)
		}
		code := strings.TrimSpace(rec[curIdx])
		rate, err := strconv.ParseFloat(strings.TrimSpace(rec[rateIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse rates: line %d: rate %q: %w", line, rec[rateIdx], err)
		}
		if err := table.Add(code, rate); err != nil {
			return nil, fmt.Errorf("parse rates: line %d: %w", line, err)
		}
	}
	return table, nil
}
