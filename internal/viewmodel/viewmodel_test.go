package viewmodel

import (
	"reflect"
	"testing"
	"time"

	"pharmstock/m/domain"
	"pharmstock/m/internal/expiry"
)

var now = time.Date(2024, time.October, 1, 10, 0, 0, 0, time.UTC)

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func sampleItems() []domain.Item {
	return []domain.Item{
		{ID: "a", Name: "Panadol Extra", Quantity: 4, Expiry: "2024-09-01"},
		{ID: "b", Name: "Amoxil", Quantity: 10, Expiry: "12/24"},
		{ID: "c", Name: "PANTOPRAZOLE", Quantity: 0, Expiry: ""},
		{ID: "d", Name: "Brufen", Quantity: 7, Expiry: "2026-05-01"},
	}
}

func TestBuildSearchKeepsTotals(t *testing.T) {
	v := Build(sampleItems(), "pan", now, DefaultOptions())

	if got, want := names(v.Visible), []string{"Panadol Extra", "PANTOPRAZOLE"}; !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
	if v.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", v.TotalCount)
	}
	if v.TotalQuantity != 21 {
		t.Errorf("TotalQuantity = %d, want 21", v.TotalQuantity)
	}
	if v.ExpiringSoonCount != 1 {
		t.Errorf("ExpiringSoonCount = %d, want 1", v.ExpiringSoonCount)
	}
	if v.ExpiredCount != 1 {
		t.Errorf("ExpiredCount = %d, want 1", v.ExpiredCount)
	}
	if v.MergedAlertCount() != 2 {
		t.Errorf("MergedAlertCount = %d, want 2", v.MergedAlertCount())
	}
}

func TestBuildEmptySearchMatchesAllInStoreOrder(t *testing.T) {
	v := Build(sampleItems(), "", now, DefaultOptions())
	want := []string{"Panadol Extra", "Amoxil", "PANTOPRAZOLE", "Brufen"}
	if got := names(v.Visible); !reflect.DeepEqual(got, want) {
		t.Errorf("visible = %v, want %v", got, want)
	}
}

func TestBuildSearchMatchesNameOnly(t *testing.T) {
	items := []domain.Item{{ID: "x", Name: "Zinc", Notes: "panadol shelf"}}
	v := Build(items, "panadol", now, DefaultOptions())
	if len(v.Visible) != 0 {
		t.Errorf("notes must not be searched, got %v", names(v.Visible))
	}
}

func TestBuildStatuses(t *testing.T) {
	v := Build(sampleItems(), "", now, Options{Horizon: expiry.Months(3), LowStockAt: 5})
	want := map[string]expiry.Status{
		"Panadol Extra": expiry.StatusExpired,
		"Amoxil":        expiry.StatusExpiringSoon,
		"PANTOPRAZOLE":  expiry.StatusLowStock,
		"Brufen":        expiry.StatusOK,
	}
	for _, r := range v.Visible {
		if r.Status != want[r.Name] {
			t.Errorf("%s status = %q, want %q", r.Name, r.Status, want[r.Name])
		}
	}
}

func TestBuildSortByExpiry(t *testing.T) {
	items := []domain.Item{
		{ID: "1", Name: "no date"},
		{ID: "2", Name: "late", Expiry: "2027-01-01"},
		{ID: "3", Name: "garbage", Expiry: "later"},
		{ID: "4", Name: "early", Expiry: "2025-02-01"},
		{ID: "5", Name: "middle", Expiry: "6/26"},
	}
	v := Build(items, "", now, Options{Horizon: expiry.Months(3), SortByExpiry: true})
	want := []string{"early", "middle", "late", "no date", "garbage"}
	if got := names(v.Visible); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	items := sampleItems()
	first := Build(items, "a", now, DefaultOptions())
	second := Build(items, "a", now, DefaultOptions())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Build is not idempotent:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(items, sampleItems()) {
		t.Error("Build mutated its input")
	}
}

func TestBuildEmpty(t *testing.T) {
	v := Build(nil, "x", now, DefaultOptions())
	if v.Visible == nil || len(v.Visible) != 0 || v.TotalCount != 0 {
		t.Errorf("empty build = %+v", v)
	}
}

func TestStateTransitions(t *testing.T) {
	s := NewState(domain.EmployeeScope("سارة"))
	s2 := s.WithItems(sampleItems()).WithSearch("amox")
	if len(s.Items) != 0 || s.Search != "" {
		t.Error("WithItems/WithSearch must not modify the receiver")
	}
	v := s2.View(now, DefaultOptions())
	if got := names(v.Visible); !reflect.DeepEqual(got, []string{"Amoxil"}) {
		t.Errorf("visible = %v", got)
	}
	if v.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", v.TotalCount)
	}
}
