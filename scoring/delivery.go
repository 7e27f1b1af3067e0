package scoring

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Delivery expressions arrive as free text ("30 days", "2 weeks", "20 jan",
// "45"). The count patterns are tried before the calendar pattern so that
// "30 days" is never read as the 30th of some month.
var (
	dayCountPattern   = regexp.MustCompile(`(?i)(\d+)\s*(day|days)`)
	weekCountPattern  = regexp.MustCompile(`(?i)(\d+)\s*(week|weeks)`)
	monthCountPattern = regexp.MustCompile(`(?i)(\d+)\s*(month|months)`)
	calendarPattern   = regexp.MustCompile(`(?i)(\d+)\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
)

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// DeliveryDays normalizes a free-text delivery description into an estimated
// day offset from now. Months count as a flat 30 days. A "<day> <month>"
// mention is resolved against the current year, rolling into the next year
// when the named month already passed; the resulting offset may be negative,
// so lateness stays visible to the scorer. Unparseable text yields nil.
func DeliveryDays(text string, now time.Time) *int {
	if m := dayCountPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return &n
	}
	if m := weekCountPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		n *= 7
		return &n
	}
	if m := monthCountPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		n *= 30
		return &n
	}
	if m := calendarPattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthAbbrevs[strings.ToLower(m[2])]
		year := now.Year()
		if month < now.Month() {
			year++
		}
		date := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
		n := ceilDays(date.Sub(now))
		return &n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		return &n
	}
	return nil
}

// DaysUntil returns the number of whole days from now until deadline,
// rounded up. Negative when the deadline already passed.
func DaysUntil(deadline, now time.Time) int {
	return ceilDays(deadline.Sub(now))
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}
