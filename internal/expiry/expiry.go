// Package expiry parses stock expiry strings and classifies them against a horizon.
//
// Two input formats are accepted: ISO dates (YYYY-MM-DD) and the short month form
// (M/YYYY or M/YY, meaning the first day of that month). All comparisons are made on
// calendar dates in the location of the supplied "now"; time of day is ignored.
// Malformed input never fails: it yields an invalid Result that is neither expired
// nor expiring soon.
package expiry

import (
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// Status is the display classification of a stock item.
type Status string

const (
	StatusExpired      Status = "expired"
	StatusExpiringSoon Status = "expiring_soon"
	StatusLowStock     Status = "low_stock"
	StatusOK           Status = "ok"
)

// Horizon is the forward window used to flag items as expiring soon.
type Horizon struct {
	Months int
	Days   int
}

// Months returns a calendar-month horizon.
func Months(n int) Horizon { return Horizon{Months: n} }

// Days returns a day-count horizon.
func Days(n int) Horizon { return Horizon{Days: n} }

// Deadline is the last calendar date still inside the horizon starting at today.
func (h Horizon) Deadline(today time.Time) time.Time {
	return today.AddDate(0, h.Months, h.Days)
}

// Result is the outcome of evaluating one expiry string.
type Result struct {
	Parsed         time.Time `json:"parsed,omitzero"`
	Valid          bool      `json:"valid"`
	IsExpired      bool      `json:"is_expired"`
	IsExpiringSoon bool      `json:"is_expiring_soon"`
}

// Evaluate parses raw and classifies it against now and a calendar-month horizon.
func Evaluate(raw string, now time.Time, horizonMonths int) Result {
	return EvaluateWithin(raw, now, Months(horizonMonths))
}

// EvaluateWithin is Evaluate with an arbitrary horizon.
func EvaluateWithin(raw string, now time.Time, h Horizon) Result {
	parsed, ok := Parse(raw, now.Location())
	if !ok {
		return Result{}
	}
	today := Today(now)
	res := Result{Parsed: parsed, Valid: true}
	res.IsExpired = parsed.Before(today)
	res.IsExpiringSoon = !res.IsExpired && !parsed.After(h.Deadline(today))
	return res
}

// Parse converts raw into local midnight of the expiry date. The format is picked by
// the presence of '-'.
func Parse(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if strings.Contains(raw, "-") {
		t, err := time.ParseInLocation(isoLayout, raw, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return parseShort(raw, loc)
}

func parseShort(raw string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(raw, "/")
	if len(parts) != 2 {
		return time.Time{}, false
	}
	m, y := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if !digits(m) || !digits(y) || (len(y) != 2 && len(y) != 4) {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m)
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(y)
	if len(y) == 2 {
		year += 2000
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), true
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Today truncates now to local midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// DaysUntil counts whole calendar days from today to the expiry date. Negative once expired.
func DaysUntil(parsed, now time.Time) int {
	// Day numbers are taken in UTC so a DST shift cannot lose an hour.
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// Classify picks one status for an item. Expiry outranks stock level; with
// lowStockAt <= 0 only empty stock is flagged.
func Classify(r Result, quantity, lowStockAt int) Status {
	switch {
	case r.IsExpired:
		return StatusExpired
	case r.IsExpiringSoon:
		return StatusExpiringSoon
	case quantity <= max(lowStockAt, 0):
		return StatusLowStock
	default:
		return StatusOK
	}
}
