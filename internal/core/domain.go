package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Category is one of the fixed expense categories tracked in the Overview
// sheet. The string value is the column header label.
type Category string

const (
	Rent           Category = "Rent"
	Groceries      Category = "Groceries"
	Vehicle        Category = "Vehicle"
	CafeRestaurant Category = "Cafe/Restaurant"
	OnlineShopping Category = "Online Shopping"
	Other          Category = "Other"
)

// Categories returns the tracked categories in Overview column order.
func Categories() []Category {
	return []Category{Rent, Groceries, Vehicle, CafeRestaurant, OnlineShopping, Other}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category from its header label, ignoring case.
func ParseCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	for _, known := range Categories() {
		if strings.EqualFold(string(known), label) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, label)
}

// ExpenseEntry is one confirmed expense prompt. It lives only until the
// ledger merges it into the session totals.
type ExpenseEntry struct {
	Category Category
	Amount   Money
}

func (e ExpenseEntry) Validate() error {
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Amount.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// BudgetState mirrors the designated budget and remainder cells of one month
// sheet for the duration of a session. The store owns it between sessions.
type BudgetState struct {
	Month     time.Month
	Currency  Currency
	Budget    Money
	Remainder Money
}

// MonthName returns the sheet name for a month.
func MonthName(m time.Month) string {
	return m.String()
}

// ValidMonth reports whether m is in 1..12.
func ValidMonth(m time.Month) bool {
	return m >= time.January && m <= time.December
}

// Error taxonomy. Everything the core returns wraps one of these sentinels so
// the dialogue layer can decide between reprompt, retry and abort with
// errors.Is.
var (
	ErrFormat                = errors.New("unparsable monetary text")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnknownCurrency       = errors.New("unknown currency")
	ErrCurrencyMismatch      = errors.New("currency mismatch")
	ErrUnknownCategory       = errors.New("unknown category")
	ErrInvalidMonth          = errors.New("invalid month")
	ErrConversionUnavailable = errors.New("exchange rate unavailable")
	ErrCategoryNotFound      = errors.New("category column not found in overview sheet")
	ErrStoreUnavailable      = errors.New("spreadsheet store unavailable")
)
