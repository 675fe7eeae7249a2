package domain

import "time"

// Roles assignable within an office. Invites carry one of these and the
// inviter's own role limits which ones they may hand out.
const (
	RoleAdmin     = "admin"
	RoleLawyer    = "lawyer"
	RoleAssistant = "assistant"
	RoleIntern    = "intern"
)

// ValidRole reports whether r is one of the known office roles.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleLawyer, RoleAssistant, RoleIntern:
		return true
	}
	return false
}

// User is an account created through invite acceptance.
// Profile fields (FullName, Role, OfficeID) are populated from the linked
// profile row when the user is loaded for login.
type User struct {
	ID           string    `json:"id"            db:"id"`
	Email        string    `json:"email"         db:"email"`
	PasswordHash string    `json:"-"             db:"password_hash"` // never serialized to JSON
	FullName     string    `json:"full_name"     db:"full_name"`
	Role         string    `json:"role"          db:"role"`
	OfficeID     string    `json:"office_id"     db:"office_id"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// Profile links an account to an office with a display name and role.
// It is written as a second step after account creation.
type Profile struct {
	UserID   string `json:"user_id"   db:"user_id"`
	FullName string `json:"full_name" db:"full_name"`
	Role     string `json:"role"      db:"role"`
	OfficeID string `json:"office_id" db:"office_id"`
}

// UserContext is the authenticated user context injected into request handlers.
type UserContext struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	OfficeID string `json:"office_id"`
}
