package model

import "errors"

var (
	ErrNoTable         = errors.New("no table found in page")
	ErrRowShape        = errors.New("unexpected row shape")
	ErrMarketCap       = errors.New("invalid market cap")
	ErrMissingCurrency = errors.New("currency missing from rate table")
	ErrSchema          = errors.New("schema mismatch")
)
