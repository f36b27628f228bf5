package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/svelazco/storeflow-backend/pkg/db/models"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
)

// Repository is the relational user store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUsername matches the username case-insensitively.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var row models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username))).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return &User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
	}, nil
}
