package model

import "fmt"

// RateTable maps currency codes to USD conversion factors. Codes keep the
// order in which they were added.
type RateTable struct {
	codes []string
	rates map[string]float64
}

// NewRateTable returns an empty rate table.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[string]float64)}
}

// Add registers a currency. Codes must be unique and rates positive.
func (t *RateTable) Add(code string, rate float64) error {
	if code == "" {
		return fmt.Errorf("empty currency code")
	}
	if code == baseCurrency {
		return fmt.Errorf("currency %s is the base currency", code)
	}
	if rate <= 0 {
		return fmt.Errorf("currency %s: rate must be positive, got %v", code, rate)
	}
	if _, ok := t.rates[code]; ok {
		return fmt.Errorf("currency %s: duplicate entry", code)
	}
	t.codes = append(t.codes, code)
	t.rates[code] = rate
	return nil
}

// Rate looks up the factor for code.
func (t *RateTable) Rate(code string) (float64, bool) {
	r, ok := t.rates[code]
	return r, ok
}

// Codes returns the currency codes in insertion order.
func (t *RateTable) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Len returns the number of currencies.
func (t *RateTable) Len() int { return len(t.codes) }
