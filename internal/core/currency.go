package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency every stored amount is normalised to.
const BaseCurrency = "KES"

// Rate is the value of one unit of the base currency in Code.
type Rate struct {
	Code string
	Rate decimal.Decimal
}

// DefaultRates is the static conversion table, base first.
var DefaultRates = []Rate{
	{Code: "KES", Rate: decimal.NewFromInt(1)},
	{Code: "USD", Rate: decimal.RequireFromString("0.0078")},
	{Code: "EUR", Rate: decimal.RequireFromString("0.0072")},
	{Code: "GBP", Rate: decimal.RequireFromString("0.0062")},
}

// Converter converts amounts between currencies through a fixed rate table.
type Converter struct {
	codes []string
	rates map[string]decimal.Decimal
}

// NewConverter builds a converter from rates. The first entry with rate 1
// becomes the base; the table order is kept for Currencies.
func NewConverter(rates []Rate) *Converter {
	c := &Converter{rates: make(map[string]decimal.Decimal, len(rates))}
	for _, r := range rates {
		if _, dup := c.rates[r.Code]; dup {
			continue
		}
		c.codes = append(c.codes, r.Code)
		c.rates[r.Code] = r.Rate
	}
	return c
}

// DefaultConverter returns a converter over DefaultRates.
func DefaultConverter() *Converter {
	return NewConverter(DefaultRates)
}

// Currencies returns the supported codes in table order.
func (c *Converter) Currencies() []string {
	return append([]string(nil), c.codes...)
}

// Convert returns amount * rate[to] / rate[from]. No rounding is applied
// beyond the decimal division precision.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	fromRate, ok := c.rates[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}
	toRate, ok := c.rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}
	if from == to {
		return amount, nil
	}
	return amount.Mul(toRate).Div(fromRate), nil
}

// ToBase converts amount from the given currency to BaseCurrency.
func (c *Converter) ToBase(amount decimal.Decimal, from string) (decimal.Decimal, error) {
	return c.Convert(amount, from, BaseCurrency)
}
