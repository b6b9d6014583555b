package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Fixed display rates. The marketplace prices everything in EUR; the secondary
// currency is informational only and never sent to the payment backend.
var (
	eurToUSD = decimal.NewFromFloat(1.08)
	usdToEUR = decimal.NewFromFloat(0.93)
)

var symbols = map[string]string{
	"EUR": "€",
	"USD": "$",
}

// MinorUnits converts a decimal amount to the integer minor units (cents)
// the payment backend expects: round(amount * 100).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Convert translates an amount between EUR and USD. Unknown pairs pass through
// unchanged, matching the storefront's display behavior.
func Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return amount
	}
	switch {
	case from == "EUR" && to == "USD":
		return amount.Mul(eurToUSD)
	case from == "USD" && to == "EUR":
		return amount.Mul(usdToEUR)
	}
	return amount
}

// Format renders an amount with its currency symbol, two decimal places.
func Format(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(currency)
	if sym, ok := symbols[currency]; ok {
		return sym + amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}

type DualPrice struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// FormatDual renders a price in the selected primary currency with the other
// supported currency alongside it.
func FormatDual(amount decimal.Decimal, primary string) DualPrice {
	primary = strings.ToUpper(primary)
	secondary := "USD"
	if primary == "USD" {
		secondary = "EUR"
	} else {
		primary = "EUR"
	}
	return DualPrice{
		Primary:   Format(amount, primary),
		Secondary: Format(Convert(amount, primary, secondary), secondary),
	}
}

// Supported reports whether the storefront can use currency as a primary
// display and charge currency.
func Supported(currency string) bool {
	_, ok := symbols[strings.ToUpper(currency)]
	return ok
}
