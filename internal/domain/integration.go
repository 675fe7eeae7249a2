package domain

import "time"

// Integration is the persisted OAuth credential bundle for one
// (user, provider) pair. At most one row exists per pair; a repeated
// handshake overwrites it, and every refresh mutates it in place.
type Integration struct {
	ID             string    `json:"id"              db:"id"`
	UserID         string    `json:"user_id"         db:"user_id"`
	Provider       string    `json:"provider"        db:"provider"`
	AccessToken    string    `json:"-"               db:"access_token"`
	RefreshToken   string    `json:"-"               db:"refresh_token"`
	ExpiresAt      time.Time `json:"expires_at"      db:"expires_at"`
	ConnectedEmail string    `json:"connected_email" db:"connected_email"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"      db:"updated_at"`
}

// TokenPair holds the OAuth2 tokens returned by the provider's token endpoint.
// Refresh responses may omit RefreshToken, in which case the stored one is kept.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope,omitempty"`
}
