package scoring

import (
	"sort"
	"time"
)

// Scored ties a computed score back to the response it was computed for.
// Index is the response's position in the slice given to RankResponses.
type Scored struct {
	Index   int
	Total   float64
	Factors Factors
}

// RankResponses scores every response against the request and returns the
// results ordered by descending total. The sort is stable: equal scores keep
// the order the responses were given in, which callers control (most recently
// received first). An empty input yields an empty, non-nil slice so callers
// can treat "no responses yet" as a plain empty result.
func RankResponses(resps []Response, req Request, now time.Time) []Scored {
	ranked := make([]Scored, 0, len(resps))
	for i, resp := range resps {
		total, factors := Score(resp, req, now)
		ranked = append(ranked, Scored{Index: i, Total: total, Factors: factors})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Total > ranked[b].Total
	})
	return ranked
}
