package expiry

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	cases := []struct {
		raw   string
		want  time.Time
		valid bool
	}{
		{"2024-01-15", date(2024, time.January, 15), true},
		{"12/24", date(2024, time.December, 1), true},
		{"3/2026", date(2026, time.March, 1), true},
		{"03/2026", date(2026, time.March, 1), true},
		{" 7/25 ", date(2025, time.July, 1), true},
		{"", time.Time{}, false},
		{"   ", time.Time{}, false},
		{"12", time.Time{}, false},
		{"1/2/2025", time.Time{}, false},
		{"ab/2025", time.Time{}, false},
		{"12/xx", time.Time{}, false},
		{"13/2025", time.Time{}, false},
		{"0/2025", time.Time{}, false},
		{"12/5", time.Time{}, false},
		{"12/024", time.Time{}, false},
		{"12/20245", time.Time{}, false},
		{"12/+5", time.Time{}, false},
		{"+1/2025", time.Time{}, false},
		{"12/0024", date(24, time.December, 1), true},
		{"2024-13-01", time.Time{}, false},
		{"2024-02-30", time.Time{}, false},
		{"2024/01/15", time.Time{}, false},
		{"soon", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := Parse(tc.raw, time.UTC)
		if ok != tc.valid {
			t.Errorf("Parse(%q) valid = %v, want %v", tc.raw, ok, tc.valid)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("Parse(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseUsesLocation(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	got, ok := Parse("2025-06-01", loc)
	if !ok {
		t.Fatal("Parse failed")
	}
	if got.Location() != loc || got.Hour() != 0 {
		t.Errorf("Parse = %v, want local midnight in %v", got, loc)
	}
}

func TestEvaluateScenarioExpired(t *testing.T) {
	now := time.Date(2024, time.January, 20, 15, 30, 0, 0, time.UTC)
	r := Evaluate("2024-01-15", now, 3)
	if !r.Valid || !r.IsExpired {
		t.Fatalf("Evaluate = %+v, want expired", r)
	}
	if r.IsExpiringSoon {
		t.Error("expired item must not be expiring soon")
	}
}

func TestEvaluateScenarioShortFormWithinHorizon(t *testing.T) {
	now := date(2024, time.October, 1)
	r := Evaluate("12/24", now, 3)
	if !r.Valid || !r.Parsed.Equal(date(2024, time.December, 1)) {
		t.Fatalf("parsed = %v valid=%v, want 2024-12-01", r.Parsed, r.Valid)
	}
	if r.IsExpired || !r.IsExpiringSoon {
		t.Errorf("Evaluate = %+v, want expiring soon", r)
	}
}

func TestEvaluateHorizonBoundary(t *testing.T) {
	now := date(2024, time.October, 1)
	if r := Evaluate("2025-01-01", now, 3); !r.IsExpiringSoon {
		t.Errorf("item on the horizon should be expiring soon: %+v", r)
	}
	if r := Evaluate("2025-01-02", now, 3); r.IsExpiringSoon {
		t.Errorf("item one day past the horizon should not be expiring soon: %+v", r)
	}
}

func TestEvaluateIgnoresTimeOfDay(t *testing.T) {
	late := time.Date(2024, time.May, 10, 23, 59, 0, 0, time.UTC)
	r := Evaluate("2024-05-10", late, 1)
	if r.IsExpired {
		t.Error("item expiring today must not be expired")
	}
	if !r.IsExpiringSoon {
		t.Error("item expiring today should be expiring soon")
	}
}

func TestEvaluateFailOpen(t *testing.T) {
	now := date(2024, time.October, 1)
	for _, raw := range []string{"", "n/a", "1/2/3", "2024-99-99", "x/24"} {
		r := Evaluate(raw, now, 3)
		if r.Valid || r.IsExpired || r.IsExpiringSoon {
			t.Errorf("Evaluate(%q) = %+v, want zero result", raw, r)
		}
	}
}

func TestEvaluateFlagsAreExclusive(t *testing.T) {
	now := date(2024, time.June, 15)
	inputs := []string{"2020-01-01", "2024-06-14", "2024-06-15", "2024-07-01", "6/24", "7/24", "12/2030", "bad"}
	for _, raw := range inputs {
		r := Evaluate(raw, now, 2)
		if r.IsExpired && r.IsExpiringSoon {
			t.Errorf("Evaluate(%q) has both flags set", raw)
		}
		if !r.Valid && (r.IsExpired || r.IsExpiringSoon) {
			t.Errorf("Evaluate(%q) flagged an unparsed date", raw)
		}
	}
}

func TestEvaluateWithinDays(t *testing.T) {
	now := date(2024, time.March, 1)
	if r := EvaluateWithin("2024-03-31", now, Days(30)); !r.IsExpiringSoon {
		t.Errorf("30 days out should be inside a 30-day horizon: %+v", r)
	}
	if r := EvaluateWithin("2024-04-01", now, Days(30)); r.IsExpiringSoon {
		t.Errorf("31 days out should be outside a 30-day horizon: %+v", r)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC)
	cases := map[string]int{
		"2024-03-01": 0,
		"2024-03-02": 1,
		"2024-02-28": -2,
		"2024-03-31": 30,
	}
	for raw, want := range cases {
		p, ok := Parse(raw, time.UTC)
		if !ok {
			t.Fatalf("Parse(%q) failed", raw)
		}
		if got := DaysUntil(p, now); got != want {
			t.Errorf("DaysUntil(%s) = %d, want %d", raw, got, want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		r          Result
		qty, lowAt int
		want       Status
	}{
		{"expired wins", Result{Valid: true, IsExpired: true}, 0, 5, StatusExpired},
		{"expiring soon", Result{Valid: true, IsExpiringSoon: true}, 1, 5, StatusExpiringSoon},
		{"low stock", Result{Valid: true}, 3, 5, StatusLowStock},
		{"empty stock with no threshold", Result{}, 0, 0, StatusLowStock},
		{"ok", Result{Valid: true}, 10, 5, StatusOK},
		{"unknown expiry ok", Result{}, 2, 0, StatusOK},
	}
	for _, tc := range cases {
		if got := Classify(tc.r, tc.qty, tc.lowAt); got != tc.want {
			t.Errorf("%s: Classify = %q, want %q", tc.name, got, tc.want)
		}
	}
}
