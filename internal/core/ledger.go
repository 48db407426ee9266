package core

import "time"

// Summary is the derived state of a user's month ledger. It is computed per
// request and never persisted.
type Summary struct {
	TotalBudget   Money
	TotalExpenses Money
	Remaining     Money // may be negative; overspend is representable
	ExpensesToday Money
	DaysLeft      int
	DailyBudget   Money // Remaining spread over DaysLeft, rounded to cents
}

// Summarize aggregates a month budget and a set of expense rows into the
// dashboard summary for the month containing now.
//
// Expenses outside now's year-month are ignored, so callers may pass either
// a pre-filtered set or everything they have. A missing budget is passed as
// zero. DaysLeft counts today, and DailyBudget is defined as 0 whenever no
// days remain.
func Summarize(budget Money, expenses []Expense, now time.Time) Summary {
	s := Summary{TotalBudget: budget}

	year, month, _ := now.Date()
	for _, e := range expenses {
		ey, em, _ := e.Date.Date()
		if ey != year || em != month {
			continue
		}
		s.TotalExpenses.Cents += e.Amount.Cents
		if SameDay(e.Date, now) {
			s.ExpensesToday.Cents += e.Amount.Cents
		}
	}

	s.Remaining.Cents = s.TotalBudget.Cents - s.TotalExpenses.Cents
	s.DaysLeft = DaysInMonth(now) - now.Day() + 1
	if s.DaysLeft > 0 {
		s.DailyBudget.Cents = divideRound(s.Remaining.Cents, int64(s.DaysLeft))
	}
	return s
}

// DaysInMonth returns the number of days in the month containing t.
func DaysInMonth(t time.Time) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
