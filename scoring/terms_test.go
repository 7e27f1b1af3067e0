package scoring

import "testing"

func strPtr(s string) *string { return &s }

func TestTermsScore_NumericAtOrBetter(t *testing.T) {
	got := termsScore(strPtr("30"), strPtr("net 30"))
	if got == nil || *got != 20 {
		t.Fatalf("expected 20, got %v", got)
	}
	got = termsScore(strPtr("15 days"), strPtr("net 30"))
	if got == nil || *got != 20 {
		t.Fatalf("expected 20 for better terms, got %v", got)
	}
}

func TestTermsScore_NumericWorse(t *testing.T) {
	// (45-30)/30 = 0.5 late ratio -> 20 - 10
	got := termsScore(strPtr("45"), strPtr("net 30"))
	if got == nil || *got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
	// Twice as long: floored at 0
	got = termsScore(strPtr("60"), strPtr("net 30"))
	if got == nil || *got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	// Worse than twice as long stays at 0
	got = termsScore(strPtr("90"), strPtr("net 30"))
	if got == nil || *got != 0 {
		t.Fatalf("expected floor 0, got %v", got)
	}
}

func TestTermsScore_RequestWithoutNumberDefaultsToNet30(t *testing.T) {
	got := termsScore(strPtr("30"), strPtr("standard terms"))
	if got == nil || *got != 20 {
		t.Fatalf("expected 20 against the default 30, got %v", got)
	}
}

func TestTermsScore_TextualMatch(t *testing.T) {
	got := termsScore(strPtr("We offer Net 30 with milestones"), strPtr("net 30"))
	if got == nil || *got != 20 {
		t.Fatalf("expected 20 for substring match, got %v", got)
	}
}

func TestTermsScore_PartialCredit(t *testing.T) {
	got := termsScore(strPtr("cash on delivery"), strPtr("net 30"))
	if got == nil || *got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestTermsScore_NoRequestTerms(t *testing.T) {
	got := termsScore(strPtr("net 60"), nil)
	if got == nil || *got != 15 {
		t.Fatalf("expected flat 15, got %v", got)
	}
}

func TestTermsScore_AbsentResponseTerms(t *testing.T) {
	if got := termsScore(nil, strPtr("net 30")); got != nil {
		t.Errorf("expected nil for absent terms, got %v", *got)
	}
	if got := termsScore(strPtr(""), nil); got != nil {
		t.Errorf("expected nil for empty terms, got %v", *got)
	}
}
