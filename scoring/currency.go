package scoring

import (
	"regexp"
	"strconv"
)

// DefaultCurrencySymbol is used for display whenever a budget string carries
// no recognizable leading symbol.
const DefaultCurrencySymbol = "₹"

var (
	currencySymbolPattern = regexp.MustCompile(`^([^\d]+)`)
	nonNumericPattern     = regexp.MustCompile(`[^\d.]`)
)

// ParseBudget splits a stored budget string such as "₹50000" or "$12000.50"
// into its display symbol and numeric magnitude. The symbol is the leading
// non-digit prefix, taken verbatim. Malformed or empty input never fails:
// the symbol falls back to DefaultCurrencySymbol and the amount comes back
// nil, which downstream scoring treats as "factor not applicable".
func ParseBudget(budget string) (string, *float64) {
	symbol := DefaultCurrencySymbol
	if m := currencySymbolPattern.FindStringSubmatch(budget); m != nil {
		symbol = m[1]
	}

	digits := nonNumericPattern.ReplaceAllString(budget, "")
	amount, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return symbol, nil
	}
	return symbol, &amount
}
