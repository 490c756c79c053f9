package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/stewardhq/steward/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	accounts *Store
	tokens   *TokenCodec
}

// NewService constructs a new Service.
func NewService(accounts *Store, tokens *TokenCodec) *Service {
	return &Service{accounts: accounts, tokens: tokens}
}

// Authenticate validates email/password credentials and issues a session
// token on success. Unknown emails and wrong passwords return the same error
// and pay the same bcrypt cost.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Token, error) {
	if email == "" || password == "" {
		return nil, shared.ErrInvalidCredentials
	}
	account, ok := s.accounts.FindByEmail(email)
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.accounts.dummyHash, []byte(password))
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.tokens.Issue(account.ID, account.Role)
}

// Verify validates a raw bearer token and returns its claims.
func (s *Service) Verify(raw string) (Claims, error) {
	return s.tokens.Verify(raw)
}
