package domain

import "time"

// Case statuses.
const (
	CaseOpen     = "open"
	CaseClosed   = "closed"
	CaseArchived = "archived"
)

// Case is a legal matter tracked by an office.
type Case struct {
	ID          string    `json:"id"          db:"id"`
	OfficeID    string    `json:"office_id"   db:"office_id"`
	ClientID    string    `json:"client_id"   db:"client_id"`
	Number      string    `json:"number"      db:"number"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status"      db:"status"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  db:"updated_at"`
}
