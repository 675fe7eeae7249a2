package domain

import "time"

// Client is a contact record for a person or company the office represents.
type Client struct {
	ID        string    `json:"id"         db:"id"`
	OfficeID  string    `json:"office_id"  db:"office_id"`
	Name      string    `json:"name"       db:"name"`
	Email     string    `json:"email"      db:"email"`
	Phone     string    `json:"phone"      db:"phone"`
	Notes     string    `json:"notes"      db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
