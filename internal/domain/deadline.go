package domain

import "time"

// Deadline is a dated obligation attached to a case (filing date, hearing,
// statute of limitations). Done deadlines stay in the table for the record.
type Deadline struct {
	ID        string    `json:"id"         db:"id"`
	OfficeID  string    `json:"office_id"  db:"office_id"`
	CaseID    string    `json:"case_id"    db:"case_id"`
	Title     string    `json:"title"      db:"title"`
	DueAt     time.Time `json:"due_at"     db:"due_at"`
	Done      bool      `json:"done"       db:"done"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
