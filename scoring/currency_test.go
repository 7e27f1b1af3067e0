package scoring

import "testing"

func TestParseBudget_SymbolAndAmount(t *testing.T) {
	symbol, amount := ParseBudget("₹50000")
	if symbol != "₹" {
		t.Errorf("expected symbol %q, got %q", "₹", symbol)
	}
	if amount == nil || *amount != 50000 {
		t.Errorf("expected amount 50000, got %v", amount)
	}
}

func TestParseBudget_DollarWithDecimals(t *testing.T) {
	symbol, amount := ParseBudget("$12000.50")
	if symbol != "$" {
		t.Errorf("expected symbol %q, got %q", "$", symbol)
	}
	if amount == nil || *amount != 12000.50 {
		t.Errorf("expected amount 12000.50, got %v", amount)
	}
}

func TestParseBudget_NoSymbolFallsBack(t *testing.T) {
	symbol, amount := ParseBudget("50000")
	if symbol != DefaultCurrencySymbol {
		t.Errorf("expected fallback symbol %q, got %q", DefaultCurrencySymbol, symbol)
	}
	if amount == nil || *amount != 50000 {
		t.Errorf("expected amount 50000, got %v", amount)
	}
}

func TestParseBudget_MultiCharPrefix(t *testing.T) {
	symbol, amount := ParseBudget("EUR 4500")
	if symbol != "EUR " {
		t.Errorf("expected symbol %q, got %q", "EUR ", symbol)
	}
	if amount == nil || *amount != 4500 {
		t.Errorf("expected amount 4500, got %v", amount)
	}
}

func TestParseBudget_EmptyAndMalformed(t *testing.T) {
	if _, amount := ParseBudget(""); amount != nil {
		t.Errorf("empty budget: expected nil amount, got %v", *amount)
	}
	if _, amount := ParseBudget("₹"); amount != nil {
		t.Errorf("symbol-only budget: expected nil amount, got %v", *amount)
	}
	if _, amount := ParseBudget("to be discussed"); amount != nil {
		t.Errorf("prose budget: expected nil amount, got %v", *amount)
	}
}
