package models

import "github.com/shopspring/decimal"

// Money is a currency amount. It scans and binds like decimal.Decimal but
// always renders in JSON with two decimal places, e.g. "100.00".
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON renders the amount as a quoted fixed-scale string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
