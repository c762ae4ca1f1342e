package transform

import (
	"fmt"

	"github.com/shopspring/decimal"

	"banketl/internal/model"
)

// Transform loads the rate table at path and converts ds with it.
func Transform(ds *model.Dataset, files FileReader, path string, required []string) (*model.Dataset, *model.RateTable, error) {
	rates, err := LoadRates(files, path)
	if err != nil {
		return nil, nil, err
	}
	out, err := Convert(ds, rates, required)
	if err != nil {
		return nil, nil, err
	}
	return out, rates, nil
}

// Convert returns a copy of ds with one market-cap column per currency in
// rates, in rate-table order. Every code in required must be present.
// ds and rates are left untouched.
func Convert(ds *model.Dataset, rates *model.RateTable, required []string) (*model.Dataset, error) {
	for _, code := range required {
		if _, ok := rates.Rate(code); !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrMissingCurrency, code)
		}
	}

	codes := rates.Codes()
	out := &model.Dataset{
		Currencies: append(append([]string(nil), ds.Currencies...), codes...),
		Records:    make([]model.Record, len(ds.Records)),
	}
	for i, rec := range ds.Records {
		converted := make([]float64, 0, len(out.Currencies))
		converted = append(converted, rec.Converted...)
		for _, code := range codes {
			rate, _ := rates.Rate(code)
			converted = append(converted, ConvertAmount(rec.MCUSDBillion, rate))
		}
		out.Records[i] = model.Record{
			Name:         rec.Name,
			MCUSDBillion: rec.MCUSDBillion,
			Converted:    converted,
		}
	}

	if err := out.Validate(out.Columns()); err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return out, nil
}

// ConvertAmount multiplies usd by rate and rounds half away from zero to two
// decimal places.
func ConvertAmount(usd, rate float64) float64 {
	v, _ := decimal.NewFromFloat(usd).Mul(decimal.NewFromFloat(rate)).Round(2).Float64()
	return v
}
