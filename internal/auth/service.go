package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskmaster-app/taskmaster/internal/shared"
)

// Service wraps registration and authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Session is the result of a successful registration or login.
type Session struct {
	UserID int64
	Token  string
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Exactly one user may exist per normalized email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register hashes the password, persists the user and issues a signed token.
// A duplicate email surfaces as shared.ErrDuplicate.
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt caps input at 72 bytes; the handler bounds runes, so a
		// multibyte password can still land here.
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, shared.NewValidationError("password", "must be at most 72 bytes")
		}
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Token: token}, nil
}

// Login validates email/password credentials and issues a fresh token.
// A missing user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: user.ID, Token: token}, nil
}
