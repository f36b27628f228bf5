package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/svelazco/storeflow-backend/pkg/config"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/security"
)

// MemoryStore holds the fallback operator accounts so login keeps working
// while the relational backend is down.
type MemoryStore struct {
	mu    sync.RWMutex
	users []User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SeedAdmin hashes the configured admin credentials into the store.
func (m *MemoryStore) SeedAdmin(seed config.SeedConfig, pw config.PasswordConfig) error {
	hash, err := security.HashPassword(seed.AdminPassword, pw)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, User{
		ID:           uuid.New(),
		Username:     seed.AdminUsername,
		PasswordHash: hash,
		Role:         "admin",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	})
	return nil
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	needle := strings.ToLower(strings.TrimSpace(username))

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.ToLower(u.Username) == needle {
			found := u
			return &found, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}
