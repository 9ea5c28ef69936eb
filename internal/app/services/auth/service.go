// Package auth implements registration, login and JWT issuance.
package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/talenthub/careers-api/internal/app/domain/user"
	"github.com/talenthub/careers-api/internal/app/storage"
	"github.com/talenthub/careers-api/pkg/logger"
)

var (
	// ErrInvalidCredentials reports a failed login. Unknown email and wrong
	// password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken reports a registration attempt with an email that is
	// already registered.
	ErrEmailTaken = errors.New("email is already registered")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError reports invalid registration input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Claims is the token payload. UserID serializes as the "sub" claim.
type Claims struct {
	UserID int64  `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

const tokenTTL = time.Hour

// Service manages accounts and issues bearer tokens.
type Service struct {
	users  storage.UserStore
	secret []byte
	log    *logger.Logger
	now    func() time.Time
}

// New constructs an auth service signing tokens with secret.
func New(users storage.UserStore, secret string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{users: users, secret: []byte(secret), log: log, now: time.Now}
}

// Register creates an applicant account. Admin accounts are provisioned out
// of band by the seed tool.
func (s *Service) Register(ctx context.Context, email, password string) (user.User, error) {
	email = NormalizeEmail(email)
	if !emailPattern.MatchString(email) {
		return user.User{}, &ValidationError{Message: "invalid email address"}
	}
	if err := ValidatePassword(password); err != nil {
		return user.User{}, &ValidationError{Message: err.Error()}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	created, err := s.users.CreateUser(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleApplicant,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, err
	}

	s.log.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Login verifies credentials and returns a signed bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", err
	}

	s.log.WithField("user_id", u.ID).Info("user logged in")
	return token, nil
}

func (s *Service) issueToken(u user.User) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// NormalizeEmail lowercases and trims an address so lookups and the
// uniqueness constraint are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
