package auth

import (
	"context"
	"time"

	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/users"
	"github.com/svelazco/storeflow-backend/pkg/config"
	pkgerrors "github.com/svelazco/storeflow-backend/pkg/errors"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/security"
)

// LoginResult is the successful login payload.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      users.User `json:"user"`
}

// Service authenticates operators against the relational user store, falling
// back to the seeded in-memory accounts while the backend is down. Login
// failures are always reported as the same unauthorized error so callers
// cannot distinguish unknown users from wrong passwords.
type Service struct {
	repo   users.Store
	memory users.Store
	prober *availability.Prober
	jwt    config.JWTConfig
	logg   *logger.Logger
}

// NewService wires the auth service. repo may be nil when no relational
// backend was configured.
func NewService(repo, memory users.Store, prober *availability.Prober, jwt config.JWTConfig, logg *logger.Logger) *Service {
	return &Service{repo: repo, memory: memory, prober: prober, jwt: jwt, logg: logg}
}

func errInvalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

// Login verifies the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errInvalidCredentials()
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, errInvalidCredentials()
	}

	token, expiresAt, err := IssueToken(s.jwt, user.ID, user.Username, user.Role, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		lctx := s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Info(lctx, "operator logged in")
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

func (s *Service) lookup(ctx context.Context, username string) (*users.User, error) {
	if s.repo != nil && s.prober != nil && s.prober.Available() {
		user, err := s.repo.FindByUsername(ctx, username)
		if err == nil || pkgerrors.IsNotFound(err) {
			return user, err
		}
		if s.logg != nil {
			s.logg.Error(ctx, "user lookup failed, using fallback accounts", err)
		}
		s.prober.MarkUnavailable(ctx, err)
	}
	return s.memory.FindByUsername(ctx, username)
}
