package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/workdeckhq/workdeck/internal/domain"
)

const sessionTTL = 30 * 24 * time.Hour

type AuthService struct {
	repo domain.DashboardRepository
}

func NewAuthService(repo domain.DashboardRepository) *AuthService {
	return &AuthService{repo: repo}
}

// BootstrapAdmin creates the first account when the user table is empty.
// On an already-populated store it does nothing and reports false.
func (s *AuthService) BootstrapAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	n, err := s.repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	user, err := s.CreateUser(ctx, email, password)
	if err != nil {
		return false, err
	}
	if fullName != "" {
		_, _ = s.repo.UpsertUserProfile(ctx, domain.UserProfile{ID: user.ID, FullName: fullName, Email: user.Email})
	}
	return true, nil
}

func (s *AuthService) CreateUser(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.Validationf("email", "is invalid")
	}
	if len(password) < 8 {
		return domain.User{}, domain.Validationf("password", "must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.CreateUser(ctx, domain.User{
		Email:        email,
		PasswordHash: string(hash),
	})
}

// LoginWithSession verifies the credentials and opens a session. The raw
// token goes back to the caller once; only its hash is stored.
func (s *AuthService) LoginWithSession(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return "", domain.User{}, err
	}
	token, tokenHash, err := newTokenPair()
	if err != nil {
		return "", domain.User{}, err
	}
	_, err = s.repo.CreateSession(ctx, domain.AuthSession{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
	})
	if err != nil {
		return "", domain.User{}, err
	}
	return token, user, nil
}

// LoginWithAPIToken mints a long-lived bearer token for non-browser clients.
func (s *AuthService) LoginWithAPIToken(ctx context.Context, email, password, name string) (string, error) {
	user, err := s.checkCredentials(ctx, email, password)
	if err != nil {
		return "", err
	}
	token, tokenHash, err := newTokenPair()
	if err != nil {
		return "", err
	}
	_, err = s.repo.CreateAPIToken(ctx, domain.APIToken{
		UserID:    user.ID,
		Name:      name,
		TokenHash: tokenHash,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *AuthService) AuthenticateSession(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	session, err := s.repo.GetSessionByTokenHash(ctx, hashToken(token))
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		_ = s.repo.DeleteSessionByTokenHash(ctx, session.TokenHash)
		return domain.Identity{}, domain.ErrUnauthorized
	}
	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return domain.Identity{User: user}, nil
}

func (s *AuthService) AuthenticateBearerToken(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	apiToken, err := s.repo.GetAPITokenByTokenHash(ctx, hashToken(token))
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	user, err := s.repo.GetUserByID(ctx, apiToken.UserID)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized
	}
	return domain.Identity{User: user}, nil
}

func (s *AuthService) LogoutSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSessionByTokenHash(ctx, hashToken(token))
}

func (s *AuthService) checkCredentials(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	return user, nil
}

func newTokenPair() (token, tokenHash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
