package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svelazco/storeflow-backend/internal/users"
	"github.com/svelazco/storeflow-backend/pkg/config"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "storeflow-test",
		ExpirationMinutes: 30,
	}
}

func seededAccounts(t *testing.T) *users.MemoryStore {
	t.Helper()
	store := users.NewMemoryStore()
	err := store.SeedAdmin(
		config.SeedConfig{AdminUsername: "admin", AdminPassword: "admin123"},
		config.PasswordConfig{},
	)
	require.NoError(t, err)
	return store
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := NewService(nil, seededAccounts(t), nil, testJWTConfig(), nil)

	result, err := svc.Login(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "admin", result.User.Username)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := ParseToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, result.User.ID.String(), claims.Subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(nil, seededAccounts(t), nil, testJWTConfig(), nil)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	// Unknown users produce the same error as wrong passwords.
	_, err = svc.Login(ctx, "nobody", "admin123")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestParseTokenRejectsTampering(t *testing.T) {
	cfg := testJWTConfig()

	token, _, err := IssueToken(cfg, uuid.New(), "admin", "admin", time.Now().UTC())
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseToken(other, token)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	expired := cfg
	tokenOld, _, err := IssueToken(expired, uuid.New(), "admin", "admin", time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(cfg, tokenOld)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}
