package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/storage/memory"
)

const testSecret = "test-secret"

func newService() *Service {
	return New(memory.New(), testSecret, nil)
}

func TestRegisterCreatesApplicant(t *testing.T) {
	svc := newService()

	created, err := svc.Register(context.Background(), " Jane@Example.COM ", "GoodPass1!")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %q", created.Email)
	}
	if created.Role != user.RoleApplicant {
		t.Fatalf("expected applicant role, got %s", created.Role)
	}
	if created.PasswordHash == "GoodPass1!" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	var validationErr *ValidationError
	if _, err := svc.Register(ctx, "not-an-email", "GoodPass1!"); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for email, got %v", err)
	}
	if _, err := svc.Register(ctx, "jane@example.com", "weak"); !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for password, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "GoodPass1!"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, "JANE@example.com", "GoodPass1!"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Register(ctx, "jane@example.com", "GoodPass1!")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.Login(ctx, "jane@example.com", "GoodPass1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims := parsed.Claims.(*Claims)
	if claims.UserID != created.ID {
		t.Fatalf("expected sub %d, got %d", created.ID, claims.UserID)
	}
	if claims.Role != string(user.RoleApplicant) {
		t.Fatalf("expected applicant role claim, got %q", claims.Role)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected iat and exp claims")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != tokenTTL {
		t.Fatalf("expected %s lifetime, got %s", tokenTTL, got)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "jane@example.com", "GoodPass1!"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, "jane@example.com", "WrongPass1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "unknown@example.com", "GoodPass1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}
