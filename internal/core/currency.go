package core

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code for the currencies the tracker supports.
type Currency string

const (
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	USD Currency = "USD"
	AUD Currency = "AUD"
	PLN Currency = "PLN"
	UAH Currency = "UAH"
)

// currencyGlyphs maps each currency to the symbol used in persisted cells.
// The mapping must stay injective: parsing resolves the currency from the
// glyph alone, so no two currencies may share a serialized prefix.
var currencyGlyphs = map[Currency]string{
	EUR: "€",
	GBP: "£",
	USD: "$",
	AUD: "A$",
	PLN: "zł",
	UAH: "₴",
}

// glyphMatchOrder lists currencies longest-glyph-first so that prefix
// matching is unambiguous ("A$" must win over "$").
var glyphMatchOrder = []Currency{AUD, PLN, EUR, GBP, UAH, USD}

// Currencies returns the supported currencies in display order.
func Currencies() []Currency {
	return []Currency{EUR, GBP, USD, AUD, PLN, UAH}
}

// Glyph returns the display symbol for the currency.
func (c Currency) Glyph() string {
	return currencyGlyphs[c]
}

func (c Currency) Valid() bool {
	_, ok := currencyGlyphs[c]
	return ok
}

// ParseCurrency resolves a currency from its ISO code, case-insensitively.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return c, nil
}

// currencyFromGlyph matches the leading glyph of s against the glyph table,
// longest glyph first, and returns the currency together with the remaining
// text.
func currencyFromGlyph(s string) (Currency, string, bool) {
	for _, c := range glyphMatchOrder {
		if g := currencyGlyphs[c]; strings.HasPrefix(s, g) {
			return c, s[len(g):], true
		}
	}
	return "", s, false
}
