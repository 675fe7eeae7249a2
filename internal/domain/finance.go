package domain

import "time"

// Finance entry kinds.
const (
	FinanceIncome  = "income"
	FinanceExpense = "expense"
)

// FinanceEntry is a single income or expense line, optionally tied to a case.
// Amounts are stored in cents to avoid float rounding.
type FinanceEntry struct {
	ID          string    `json:"id"          db:"id"`
	OfficeID    string    `json:"office_id"   db:"office_id"`
	CaseID      *string   `json:"case_id"     db:"case_id"`
	Kind        string    `json:"kind"        db:"kind"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Description string    `json:"description" db:"description"`
	EntryDate   time.Time `json:"entry_date"  db:"entry_date"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}

// DashboardSummary aggregates the office's current workload and monthly
// money flow for the overview screen.
type DashboardSummary struct {
	OpenCases         int   `json:"open_cases"`
	ClosedCases       int   `json:"closed_cases"`
	Clients           int   `json:"clients"`
	UpcomingDeadlines int   `json:"upcoming_deadlines"`
	MonthIncomeCents  int64 `json:"month_income_cents"`
	MonthExpenseCents int64 `json:"month_expense_cents"`
}
