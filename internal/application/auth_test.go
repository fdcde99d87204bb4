package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/workdeckhq/workdeck/internal/adapters/db/sqlite"
	"github.com/workdeckhq/workdeck/internal/domain"
)

func newTestAuth(t *testing.T) (*AuthService, *DashboardService) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "workdeck_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := sqlite.NewDashboardRepository(db)
	return NewAuthService(repo), NewDashboardService(repo, nil)
}

func TestBootstrapAdminOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	auth, svc := newTestAuth(t)

	created, err := auth.BootstrapAdmin(ctx, "admin@example.com", "sup3rsecret", "Administrator")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !created {
		t.Fatalf("expected admin created on empty store")
	}

	again, err := auth.BootstrapAdmin(ctx, "other@example.com", "sup3rsecret", "")
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if again {
		t.Fatalf("bootstrap must be a no-op on populated store")
	}

	// The full name lands on the profile row, not the user.
	token, user, err := auth.LoginWithSession(ctx, "admin@example.com", "sup3rsecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected session token")
	}
	profile, err := svc.GetProfile(ctx, user.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.FullName != "Administrator" {
		t.Fatalf("expected bootstrap full name on profile, got %q", profile.FullName)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(t)

	if _, err := auth.CreateUser(ctx, "not-an-email", "sup3rsecret"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
	if _, err := auth.CreateUser(ctx, "a@b.com", "short"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	user, err := auth.CreateUser(ctx, "  Mixed@Example.COM  ", "sup3rsecret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Email != "mixed@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
}

func TestSessionLoginLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(t)

	if _, err := auth.CreateUser(ctx, "ops@example.com", "sup3rsecret"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, _, err := auth.LoginWithSession(ctx, "ops@example.com", "wrong-password"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bad password, got %v", err)
	}
	if _, _, err := auth.LoginWithSession(ctx, "nobody@example.com", "sup3rsecret"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}

	token, user, err := auth.LoginWithSession(ctx, "ops@example.com", "sup3rsecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	identity, err := auth.AuthenticateSession(ctx, token)
	if err != nil {
		t.Fatalf("authenticate session: %v", err)
	}
	if identity.User.ID != user.ID {
		t.Fatalf("expected identity for %s, got %s", user.ID, identity.User.ID)
	}

	if err := auth.LogoutSession(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.AuthenticateSession(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized after logout, got %v", err)
	}
	if err := auth.LogoutSession(ctx, ""); err != nil {
		t.Fatalf("empty-token logout must be a no-op: %v", err)
	}
}

func TestAPITokenAuthentication(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(t)

	if _, err := auth.CreateUser(ctx, "cli@example.com", "sup3rsecret"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := auth.LoginWithAPIToken(ctx, "cli@example.com", "sup3rsecret", "cli")
	if err != nil {
		t.Fatalf("login with api token: %v", err)
	}

	identity, err := auth.AuthenticateBearerToken(ctx, token)
	if err != nil {
		t.Fatalf("authenticate bearer: %v", err)
	}
	if identity.User.Email != "cli@example.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := auth.AuthenticateBearerToken(ctx, "bogus"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for bogus token, got %v", err)
	}
	if _, err := auth.AuthenticateBearerToken(ctx, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}
