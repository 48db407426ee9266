package core

import (
	"testing"
	"time"
)

func expense(userID int64, cents int64, date time.Time) Expense {
	return Expense{UserID: userID, Amount: Money{Cents: cents}, Description: "test", Date: date}
}

func TestSummarize(t *testing.T) {
	june10 := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		budget   Money
		expenses []Expense
		now      time.Time
		want     Summary
	}{
		{
			name:   "budget 1000 with 250 spent on june 10",
			budget: Money{Cents: 100000},
			expenses: []Expense{
				expense(1, 10000, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)),
				expense(1, 12500, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)),
				expense(1, 2500, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)),
			},
			now: june10,
			want: Summary{
				TotalBudget:   Money{Cents: 100000},
				TotalExpenses: Money{Cents: 25000},
				Remaining:     Money{Cents: 75000},
				ExpensesToday: Money{Cents: 2500},
				DaysLeft:      21,
				DailyBudget:   Money{Cents: 3571}, // 750.00 / 21 = 35.71
			},
		},
		{
			name:   "expenses from other months are ignored",
			budget: Money{Cents: 50000},
			expenses: []Expense{
				expense(1, 9999, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)),
				expense(1, 9999, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)),
				expense(1, 9999, time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)),
			},
			now: june10,
			want: Summary{
				TotalBudget: Money{Cents: 50000},
				Remaining:   Money{Cents: 50000},
				DaysLeft:    21,
				DailyBudget: Money{Cents: 2381},
			},
		},
		{
			name:   "overspend goes negative instead of failing",
			budget: Money{Cents: 10000},
			expenses: []Expense{
				expense(1, 30000, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
			},
			now: june10,
			want: Summary{
				TotalBudget:   Money{Cents: 10000},
				TotalExpenses: Money{Cents: 30000},
				Remaining:     Money{Cents: -20000},
				DaysLeft:      21,
				DailyBudget:   Money{Cents: -952},
			},
		},
		{
			name:     "missing budget counts as zero",
			expenses: []Expense{expense(1, 500, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))},
			now:      june10,
			want: Summary{
				TotalExpenses: Money{Cents: 500},
				Remaining:     Money{Cents: -500},
				ExpensesToday: Money{Cents: 500},
				DaysLeft:      21,
				DailyBudget:   Money{Cents: -24},
			},
		},
		{
			name:   "last day of month leaves one day",
			budget: Money{Cents: 3100},
			now:    time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC),
			want: Summary{
				TotalBudget: Money{Cents: 3100},
				Remaining:   Money{Cents: 3100},
				DaysLeft:    1,
				DailyBudget: Money{Cents: 3100},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.budget, tt.expenses, tt.now)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 31},
		{time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), 29}, // leap year
		{time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC), 28},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.date); got != tt.want {
			t.Errorf("DaysInMonth(%s) = %d, want %d", tt.date.Format("2006-01"), got, tt.want)
		}
	}
}
