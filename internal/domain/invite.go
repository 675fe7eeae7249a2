package domain

import "time"

// Invite is a single-use, time-bounded token granting account creation
// with a pre-assigned role and office scope. AcceptedAt is nil while the
// invite is pending; the single acceptance write is the only mutation.
type Invite struct {
	ID         string     `json:"id"          db:"id"`
	Token      string     `json:"-"           db:"token"`
	Email      string     `json:"email"       db:"email"`
	Role       string     `json:"role"        db:"role"`
	OfficeID   string     `json:"office_id"   db:"office_id"`
	InvitedBy  string     `json:"invited_by"  db:"invited_by"`
	ExpiresAt  time.Time  `json:"expires_at"  db:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at" db:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"  db:"created_at"`
}
