package core

import (
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in       string
		amount   string
		currency Currency
		ok       bool
	}{
		{"€25.00", "25", EUR, true},
		{"€1,234.50", "1234.5", EUR, true},
		{"£10.00", "10", GBP, true},
		{"$99.99", "99.99", USD, true},
		{"A$12.00", "12", AUD, true},
		{"zł250", "250", PLN, true},
		{"₴1,000.00", "1000", UAH, true},
		{"-€40.00", "-40", EUR, true},
		{" €7.5 ", "7.5", EUR, true},
		{"25.00", "", "", false},
		{"€", "", "", false},
		{"€abc", "", "", false},
		{"", "", "", false},
		{"€1.2.3", "", "", false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error, got %v", tc.in, got)
			}
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("%q expected ErrFormat, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if got.Currency != tc.currency {
			t.Fatalf("%q expected currency %s, got %s", tc.in, tc.currency, got.Currency)
		}
		if got.Amount.String() != tc.amount {
			t.Fatalf("%q expected amount %s, got %s", tc.in, tc.amount, got.Amount)
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		in   Money
		want string
	}{
		{MoneyFromFloat(25, EUR), "€25.00"},
		{MoneyFromFloat(1234.5, EUR), "€1,234.50"},
		{MoneyFromFloat(1234567.89, USD), "$1,234,567.89"},
		{MoneyFromFloat(-40, GBP), "-£40.00"},
		{MoneyFromFloat(12, AUD), "A$12.00"},
		{MoneyFromFloat(0.05, PLN), "zł0.05"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

// The round-trip law: parse(format(m)) == m for any valid Money.
func TestMoneyRoundTrip(t *testing.T) {
	values := []float64{0, 0.01, 0.99, 1, 40, 999.99, 1000, 1234.56, 999999.95, -30.25}
	for _, c := range Currencies() {
		for _, v := range values {
			m := MoneyFromFloat(v, c)
			back, err := ParseMoney(m.String())
			if err != nil {
				t.Fatalf("%s: parse(%q): %v", c, m.String(), err)
			}
			if !back.Equal(m) {
				t.Fatalf("%s: round-trip %q -> %v, want %v", c, m.String(), back, m)
			}
		}
	}
}

// "$" must resolve to exactly one currency even though AUD also serializes
// with a dollar sign; the longer glyph wins.
func TestGlyphMappingInjective(t *testing.T) {
	seen := map[string]Currency{}
	for _, c := range Currencies() {
		g := c.Glyph()
		if prev, dup := seen[g]; dup {
			t.Fatalf("glyph %q shared by %s and %s", g, prev, c)
		}
		seen[g] = c
	}

	usd, err := ParseMoney("$5.00")
	if err != nil || usd.Currency != USD {
		t.Fatalf("$5.00 should parse as USD, got %v (err=%v)", usd.Currency, err)
	}
	aud, err := ParseMoney("A$5.00")
	if err != nil || aud.Currency != AUD {
		t.Fatalf("A$5.00 should parse as AUD, got %v (err=%v)", aud.Currency, err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	sum, err := MoneyFromFloat(10, EUR).Add(MoneyFromFloat(2.5, EUR))
	if err != nil || !sum.Equal(MoneyFromFloat(12.5, EUR)) {
		t.Fatalf("add: got %v (err=%v)", sum, err)
	}
	diff, err := MoneyFromFloat(10, EUR).Sub(MoneyFromFloat(12.5, EUR))
	if err != nil || !diff.Equal(MoneyFromFloat(-2.5, EUR)) {
		t.Fatalf("sub: got %v (err=%v)", diff, err)
	}
	if !diff.IsNegative() {
		t.Fatal("expected negative difference")
	}
	if _, err := MoneyFromFloat(1, EUR).Add(MoneyFromFloat(1, USD)); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected ErrCurrencyMismatch, got %v", err)
	}
}
