package models

import (
	"github.com/google/uuid"
)

// User is the authenticated caller as reported by the auth service
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Role  string    `json:"role,omitempty"`
}

// Identity scopes summary store reads and writes to a single user.
// AccessToken is forwarded to stores that enforce row-level security.
type Identity struct {
	UserID      uuid.UUID
	AccessToken string
}
