// Package viewmodel projects a scope's items into the filtered, ordered and
// aggregated view shown on the dashboard. Build is a pure function of its inputs.
package viewmodel

import (
	"slices"
	"strings"
	"time"

	"pharmstock/m/domain"
	"pharmstock/m/internal/expiry"
)

// Options tune a projection.
type Options struct {
	Horizon      expiry.Horizon
	SortByExpiry bool
	LowStockAt   int
}

// DefaultOptions flags items expiring within three calendar months.
func DefaultOptions() Options {
	return Options{Horizon: expiry.Months(3)}
}

// Row is one visible item with its derived expiry state.
type Row struct {
	domain.Item
	Eval   expiry.Result `json:"expiry_state"`
	Status expiry.Status `json:"status"`
}

// View is the dashboard projection. Counts always cover the whole scope, not just
// the visible rows.
type View struct {
	Visible           []Row `json:"items"`
	TotalCount        int   `json:"total_count"`
	TotalQuantity     int   `json:"total_quantity"`
	ExpiringSoonCount int   `json:"expiring_soon_count"`
	ExpiredCount      int   `json:"expired_count"`
}

// Build filters items by a case-insensitive name search, orders them and aggregates
// stats over the full set.
func Build(items []domain.Item, search string, now time.Time, opts Options) View {
	needle := strings.ToLower(search)
	view := View{Visible: make([]Row, 0, len(items))}

	for _, item := range items {
		res := expiry.EvaluateWithin(item.Expiry, now, opts.Horizon)

		view.TotalCount++
		view.TotalQuantity += item.Quantity
		if res.IsExpired {
			view.ExpiredCount++
		}
		if res.IsExpiringSoon {
			view.ExpiringSoonCount++
		}

		if needle != "" && !strings.Contains(strings.ToLower(item.Name), needle) {
			continue
		}
		view.Visible = append(view.Visible, Row{
			Item:   item,
			Eval:   res,
			Status: expiry.Classify(res, item.Quantity, opts.LowStockAt),
		})
	}

	if opts.SortByExpiry {
		SortByExpiry(view.Visible)
	}
	return view
}

// SortByExpiry orders rows by parsed expiry ascending. Rows without a usable expiry
// go last and keep their relative order.
func SortByExpiry(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		switch {
		case a.Eval.Valid && b.Eval.Valid:
			return a.Eval.Parsed.Compare(b.Eval.Parsed)
		case a.Eval.Valid:
			return -1
		case b.Eval.Valid:
			return 1
		default:
			return 0
		}
	})
}

// MergedAlertCount is the single "needs attention" figure shown by dashboards that
// do not separate expired from expiring-soon stock.
func (v View) MergedAlertCount() int {
	return v.ExpiringSoonCount + v.ExpiredCount
}
