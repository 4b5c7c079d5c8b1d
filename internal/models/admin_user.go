package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AdminUser is a human account for the management API (catalog refresh,
// catalog inspection). Authentication is email/password with bcrypt hashing.
type AdminUser struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"` // bcrypt hash
	Roles        pq.StringArray `db:"roles"`         // e.g. ["admin", "viewer"]
	Enabled      bool           `db:"enabled"`
	LastLoginAt  *time.Time     `db:"last_login_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// HasRole checks if the user has a specific role.
func (u *AdminUser) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValid checks if the user account is enabled.
func (u *AdminUser) IsValid() bool {
	return u.Enabled
}
