package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingIntPattern = regexp.MustCompile(`^[+-]?\d+`)
	firstIntPattern   = regexp.MustCompile(`\d+`)
)

// defaultNetDays is assumed when a request's payment-terms text carries no
// number at all ("on delivery", "standard terms").
const defaultNetDays = 30

// termsScore awards the payment-terms factor. With request terms present the
// two sides are compared as net-day counts when the response side leads with
// a number; otherwise a case-insensitive substring match counts as exact and
// any remaining non-empty terms text earns partial credit. Without request
// terms, the mere presence of response terms earns a flat credit. A nil
// return means the factor does not apply.
func termsScore(responseTerms, requestTerms *string) *float64 {
	if !hasText(responseTerms) {
		return nil
	}

	if hasText(requestTerms) {
		respNum, respOK := parseLeadingInt(*responseTerms)
		reqNum := parseFirstInt(*requestTerms, defaultNetDays)

		switch {
		case respOK && respNum <= reqNum:
			return ptr(20.0)
		case respOK:
			lateRatio := float64(respNum-reqNum) / float64(reqNum)
			return ptr(clampMin(20-lateRatio*20, 0))
		case strings.Contains(strings.ToLower(*responseTerms), strings.ToLower(*requestTerms)):
			// Exact textual match
			return ptr(20.0)
		default:
			// Terms exist but don't line up with the request
			return ptr(10.0)
		}
	}

	// Request never specified terms; credit the response for having any.
	return ptr(15.0)
}

// parseLeadingInt reads an integer from the start of s ("30 days net" -> 30).
func parseLeadingInt(s string) (int, bool) {
	m := leadingIntPattern.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseFirstInt reads the first integer found anywhere in s ("net 30" -> 30).
func parseFirstInt(s string, def int) int {
	m := firstIntPattern.FindString(s)
	if m == "" {
		return def
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return def
	}
	return n
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}

func ptr(f float64) *float64 { return &f }

func clampMin(x, min float64) float64 {
	if x < min {
		return min
	}
	return x
}
