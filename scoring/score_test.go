package scoring

import (
	"math"
	"testing"
	"time"
)

// Reference date 2025-03-10 12:00 UTC; request deadline exactly 30 days out.
var (
	scoreNow      = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	scoreDeadline = time.Date(2025, time.April, 9, 12, 0, 0, 0, time.UTC)
)

func floatPtr(f float64) *float64 { return &f }

func testRequest() Request {
	return Request{
		Budget:       "₹50000",
		Deadline:     &scoreDeadline,
		PaymentTerms: strPtr("net 30"),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScore_PriceFactor(t *testing.T) {
	req := testRequest()

	// At budget: full 40
	_, factors := Score(Response{TotalPrice: floatPtr(50000)}, req, scoreNow)
	if !approx(factors["price"], 40) {
		t.Errorf("at budget: expected 40, got %v", factors["price"])
	}

	// 1.5x budget: linear penalty to 20
	_, factors = Score(Response{TotalPrice: floatPtr(75000)}, req, scoreNow)
	if !approx(factors["price"], 20) {
		t.Errorf("1.5x budget: expected 20, got %v", factors["price"])
	}

	// 2x budget: zero
	_, factors = Score(Response{TotalPrice: floatPtr(100000)}, req, scoreNow)
	if !approx(factors["price"], 0) {
		t.Errorf("2x budget: expected 0, got %v", factors["price"])
	}

	// 3x budget: floored at zero, not negative
	_, factors = Score(Response{TotalPrice: floatPtr(150000)}, req, scoreNow)
	if !approx(factors["price"], 0) {
		t.Errorf("3x budget: expected floor 0, got %v", factors["price"])
	}
}

func TestScore_PriceOmittedWhenBudgetUnparseable(t *testing.T) {
	req := testRequest()
	req.Budget = "to be discussed"

	_, factors := Score(Response{TotalPrice: floatPtr(50000)}, req, scoreNow)
	if _, ok := factors["price"]; ok {
		t.Errorf("expected price factor omitted, got %v", factors["price"])
	}
}

func TestScore_DeliveryFactor(t *testing.T) {
	req := testRequest()

	// Exactly at the deadline: base 20
	_, factors := Score(Response{DeliveryTime: strPtr("30 days")}, req, scoreNow)
	if !approx(factors["delivery"], 20) {
		t.Errorf("at deadline: expected 20, got %v", factors["delivery"])
	}

	// Immediate delivery: full 25
	_, factors = Score(Response{DeliveryTime: strPtr("0 days")}, req, scoreNow)
	if !approx(factors["delivery"], 25) {
		t.Errorf("immediate: expected 25, got %v", factors["delivery"])
	}

	// Halfway early: 22.5
	_, factors = Score(Response{DeliveryTime: strPtr("15 days")}, req, scoreNow)
	if !approx(factors["delivery"], 22.5) {
		t.Errorf("half early: expected 22.5, got %v", factors["delivery"])
	}

	// 100% over the deadline: zero
	_, factors = Score(Response{DeliveryTime: strPtr("60 days")}, req, scoreNow)
	if !approx(factors["delivery"], 0) {
		t.Errorf("100%% late: expected 0, got %v", factors["delivery"])
	}

	// 50% late: 10
	_, factors = Score(Response{DeliveryTime: strPtr("45 days")}, req, scoreNow)
	if !approx(factors["delivery"], 10) {
		t.Errorf("50%% late: expected 10, got %v", factors["delivery"])
	}
}

func TestScore_DeliveryOmittedOnPastDeadline(t *testing.T) {
	past := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	req := testRequest()
	req.Deadline = &past

	_, factors := Score(Response{DeliveryTime: strPtr("10 days")}, req, scoreNow)
	if _, ok := factors["delivery"]; ok {
		t.Errorf("expected delivery factor omitted for past deadline, got %v", factors["delivery"])
	}
}

func TestScore_Completeness(t *testing.T) {
	req := testRequest()

	_, factors := Score(Response{
		TotalPrice:   floatPtr(50000),
		DeliveryTime: strPtr("10 days"),
		Terms:        strPtr("30"),
	}, req, scoreNow)
	if !approx(factors["completeness"], 20) {
		t.Errorf("all present: expected 20, got %v", factors["completeness"])
	}

	_, factors = Score(Response{TotalPrice: floatPtr(50000)}, req, scoreNow)
	if !approx(factors["completeness"], 20.0/3) {
		t.Errorf("one of three: expected %v, got %v", 20.0/3, factors["completeness"])
	}

	_, factors = Score(Response{}, req, scoreNow)
	if !approx(factors["completeness"], 0) {
		t.Errorf("empty: expected 0, got %v", factors["completeness"])
	}
}

func TestScore_EmptyResponseNeverErrors(t *testing.T) {
	total, factors := Score(Response{}, Request{}, scoreNow)
	if total != 0 {
		t.Errorf("expected total 0, got %v", total)
	}
	if len(factors) != 1 {
		// Only completeness applies, at 0
		t.Errorf("expected only the completeness factor, got %v", factors)
	}
}

func TestScore_NoRequestTermsBranch(t *testing.T) {
	req := testRequest()
	req.PaymentTerms = nil

	// Price and delivery maxed, terms present: 40 + 25 + 15 + 20 = 100.
	// The no-terms branch tops out at exactly 100.
	total, factors := Score(Response{
		TotalPrice:   floatPtr(40000),
		DeliveryTime: strPtr("0 days"),
		Terms:        strPtr("net 60"),
	}, req, scoreNow)
	if !approx(factors["terms"], 15) {
		t.Errorf("expected terms 15, got %v", factors["terms"])
	}
	if total != 100 {
		t.Errorf("expected total 100, got %v", total)
	}
}

func TestScore_TotalRoundedToTwoDecimals(t *testing.T) {
	req := testRequest()

	// delivery "20 days": 20 + (1/3)*5 = 21.666..., plus 40 + 20 + 20
	total, _ := Score(Response{
		TotalPrice:   floatPtr(45000),
		DeliveryTime: strPtr("20 days"),
		Terms:        strPtr("30"),
	}, req, scoreNow)
	if total != 101.67 {
		t.Errorf("expected 101.67, got %v", total)
	}
}
