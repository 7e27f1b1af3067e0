package scoring

import (
	"time"

	"rfp-backend/utils"
)

// Factor weights. Price dominates, then delivery, then terms and
// completeness. The nominal ceiling across all four is 105, not 100: the
// no-request-terms branch caps terms at 15, which is the only way a
// real-world response reaches 100. The weights are deliberately left
// unnormalized so the breakdown stays auditable against the award rules.
const (
	priceWeight        = 40.0
	deliveryWeight     = 25.0
	deliveryOnTimeBase = 20.0
	termsWeight        = 20.0
	completenessWeight = 20.0
)

// Request carries the RFP-side inputs a response is scored against.
type Request struct {
	Budget       string
	Deadline     *time.Time
	PaymentTerms *string
}

// Response carries one vendor's extracted commercial terms. Nil means the
// extraction collaborator could not locate the field.
type Response struct {
	TotalPrice   *float64
	DeliveryTime *string
	Terms        *string
}

// Factors is the per-factor score breakdown. Only awarded factors appear;
// an omitted key means the factor was not applicable, not that it scored 0.
type Factors map[string]float64

// Score computes the composite score for one response against its request,
// evaluated at the reference time now. Every factor degrades to "omitted"
// on missing or unparseable input; nothing here returns an error. The total
// is rounded to two decimals, the breakdown values are kept raw.
func Score(resp Response, req Request, now time.Time) (float64, Factors) {
	factors := Factors{}
	total := 0.0

	// Price: full points at or under budget, linear penalty above it,
	// reaching zero at twice the budget.
	_, budget := ParseBudget(req.Budget)
	if resp.TotalPrice != nil && budget != nil {
		ratio := *resp.TotalPrice / *budget
		points := priceWeight
		if ratio > 1 {
			points = clampMin(priceWeight*(2-ratio), 0)
		}
		factors["price"] = points
		total += points
	}

	// Delivery: on-time responses score between 20 (exactly at the
	// deadline) and 25 (immediate); late ones lose a point per percent
	// late, down to zero at 100% overrun.
	if hasText(resp.DeliveryTime) && req.Deadline != nil {
		daysUntilDeadline := DaysUntil(*req.Deadline, now)
		offset := DeliveryDays(*resp.DeliveryTime, now)
		if offset != nil && daysUntilDeadline > 0 {
			var points float64
			if *offset <= daysUntilDeadline {
				earlyRatio := 1 - float64(*offset)/float64(daysUntilDeadline)
				points = deliveryOnTimeBase + earlyRatio*(deliveryWeight-deliveryOnTimeBase)
			} else {
				lateRatio := float64(*offset-daysUntilDeadline) / float64(daysUntilDeadline)
				points = clampMin(deliveryOnTimeBase-lateRatio*deliveryOnTimeBase, 0)
			}
			factors["delivery"] = points
			total += points
		}
	}

	// Payment terms
	if points := termsScore(resp.Terms, req.PaymentTerms); points != nil {
		factors["terms"] = *points
		total += *points
	}

	// Completeness: how many of the three commercial fields the response
	// actually answered. Warranty is not counted.
	present := 0
	if resp.TotalPrice != nil {
		present++
	}
	if hasText(resp.DeliveryTime) {
		present++
	}
	if hasText(resp.Terms) {
		present++
	}
	points := completenessWeight * float64(present) / 3
	factors["completeness"] = points
	total += points

	return utils.Round2(total), factors
}
