package domain

import "time"

// Period is an inclusive date window. A nil bound is open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether the period is unbounded on both ends.
func (p Period) IsZero() bool {
	return p.Start == nil && p.End == nil
}

// Validate rejects inverted windows.
func (p Period) Validate() error {
	if p.Start != nil && p.End != nil && p.Start.After(*p.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// Contains reports whether date falls within the window.
func (p Period) Contains(date time.Time) bool {
	d := NormalizeDate(date)
	if p.Start != nil && d.Before(NormalizeDate(*p.Start)) {
		return false
	}
	if p.End != nil && d.After(NormalizeDate(*p.End)) {
		return false
	}
	return true
}

// Before returns the window of everything strictly before p.Start. ok is
// false when p has no start.
func (p Period) Before() (before Period, ok bool) {
	if p.Start == nil {
		return Period{}, false
	}
	end := NormalizeDate(*p.Start).AddDate(0, 0, -1)
	return Period{End: &end}, true
}

// CategoryFlow is the raw aggregate of active transactions touching one
// category within a period.
type CategoryFlow struct {
	CategoryID string
	// Budgeted sums assignments from Income into the category.
	Budgeted int64
	// Inflow sums credits to the category whose other leg is an asset or
	// liability account.
	Inflow int64
	// Outflow sums debits to the category whose other leg is an asset or
	// liability account.
	Outflow int64
}

// Activity is the net cash flow of the category.
func (f CategoryFlow) Activity() int64 {
	return f.Inflow - f.Outflow
}

// IncomeFlow is the raw aggregate of active transactions touching the Income
// account within a period.
type IncomeFlow struct {
	Credits  int64
	Debits   int64
	Assigned int64
}

// Income is money that reached Income, net of everything except category
// assignments.
func (f IncomeFlow) Income() int64 {
	return f.Credits - (f.Debits - f.Assigned)
}

// CategoryStatus is one row of the budget view.
type CategoryStatus struct {
	CategoryID   string
	CategoryName string
	Budgeted     int64
	Activity     int64
	Balance      int64
}

// BudgetTotals summarizes a ledger's budget.
type BudgetTotals struct {
	Income                       int64
	IncomeRemainingFromLastMonth int64
	Budgeted                     int64
	LeftToBudget                 int64
}
