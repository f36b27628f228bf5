package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the account shape both store implementations return.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store looks up operator accounts for authentication.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}
