package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never expose the hash in API responses.
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConnectedAccount is a stored credential for an external data provider,
// obtained through the OAuth flow (or set manually via the API).
type ConnectedAccount struct {
	UserID       int64      `json:"user_id"`
	ProviderID   string     `json:"provider_id"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	TokenExpiry  *time.Time `json:"token_expiry,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
