package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrenciesOrder(t *testing.T) {
	got := DefaultConverter().Currencies()
	want := []string{"KES", "USD", "EUR", "GBP"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if got[0] != BaseCurrency {
		t.Fatalf("base currency should come first, got %s", got[0])
	}
}

func TestConvertIdentity(t *testing.T) {
	c := DefaultConverter()
	x := decimal.RequireFromString("1234.56")
	for _, code := range c.Currencies() {
		got, err := c.Convert(x, code, code)
		if err != nil {
			t.Fatalf("%s: %v", code, err)
		}
		if !got.Equal(x) {
			t.Fatalf("%s: convert(x, C, C) = %s, want %s", code, got, x)
		}
	}
}

func TestConvertInverse(t *testing.T) {
	c := DefaultConverter()
	x := decimal.RequireFromString("250")
	tolerance := decimal.RequireFromString("0.000001")

	for _, a := range c.Currencies() {
		for _, b := range c.Currencies() {
			ab, err := c.Convert(x, a, b)
			if err != nil {
				t.Fatalf("%s->%s: %v", a, b, err)
			}
			oneBA, err := c.Convert(decimal.NewFromInt(1), b, a)
			if err != nil {
				t.Fatalf("%s->%s: %v", b, a, err)
			}
			want := x.Div(oneBA)
			if ab.Sub(want).Abs().GreaterThan(tolerance) {
				t.Fatalf("%s->%s: got %s, want %s", a, b, ab, want)
			}
		}
	}
}

func TestConvertToBase(t *testing.T) {
	c := DefaultConverter()
	got, err := c.ToBase(decimal.RequireFromString("7.8"), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("7.8 USD = %s KES, want 1000", got)
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	c := DefaultConverter()
	if _, err := c.Convert(decimal.NewFromInt(1), "JPY", BaseCurrency); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
	if _, err := c.Convert(decimal.NewFromInt(1), BaseCurrency, "jpy"); !errors.Is(err, ErrUnknownCurrency) {
		t.Fatalf("expected ErrUnknownCurrency, got %v", err)
	}
}
