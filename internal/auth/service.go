// Package auth handles account registration, login and access tokens.
package auth

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/showtix/showtix/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type UserStore interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type Service struct {
	users      UserStore
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
}

func NewService(users UserStore, secret string, tokenTTL time.Duration, bcryptCost int) *Service {
	return &Service{users: users, secret: secret, tokenTTL: tokenTTL, bcryptCost: bcryptCost}
}

// Token is a signed access token plus its expiry, as returned to clients.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, email, password string) (Token, error) {
	if email == "" || len(password) < minPasswordLen {
		return Token{}, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return Token{}, errors.Wrap(err, "hash password")
	}
	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return Token{}, err
	}
	return s.issue(user)
}

// Login verifies the password against the stored bcrypt hash. A missing
// account and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return Token{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Token{}, domain.ErrInvalidCredentials
	}
	return s.issue(user)
}

// Verify parses and validates a bearer token.
func (s *Service) Verify(raw string) (Claims, error) {
	return ParseAccessToken(s.secret, raw)
}

func (s *Service) issue(user domain.User) (Token, error) {
	signed, exp, err := NewAccessToken(s.secret, user.ID, user.IsAdmin, s.tokenTTL)
	if err != nil {
		return Token{}, errors.Wrap(err, "sign token")
	}
	return Token{AccessToken: signed, ExpiresAt: exp}, nil
}
