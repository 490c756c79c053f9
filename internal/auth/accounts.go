package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SeedAccount describes one account to load at process start.
type SeedAccount struct {
	ID       int64
	Email    string
	Password string
	Role     string
}

// DefaultSeeds returns the built-in account list.
func DefaultSeeds() []SeedAccount {
	return []SeedAccount{
		{ID: 1, Email: "admin@example.com", Password: "password123", Role: "admin"},
		{ID: 2, Email: "user@example.com", Password: "userpass123", Role: "user"},
	}
}

// Store is the fixed, in-process credential list. It is immutable after
// construction and safe for concurrent reads.
type Store struct {
	byEmail map[string]Account

	// dummyHash is compared against when a lookup misses so unknown emails
	// cost the same bcrypt work as wrong passwords.
	dummyHash []byte
}

// NewStore hashes the seed passwords and builds the lookup table. Emails must
// be unique within the list.
func NewStore(seeds []SeedAccount) (*Store, error) {
	byEmail := make(map[string]Account, len(seeds))
	for _, seed := range seeds {
		if _, ok := byEmail[seed.Email]; ok {
			return nil, fmt.Errorf("auth: duplicate account email %q", seed.Email)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("auth: hash password for %q: %w", seed.Email, err)
		}
		byEmail[seed.Email] = Account{
			ID:           seed.ID,
			Email:        seed.Email,
			PasswordHash: string(hash),
			Role:         seed.Role,
		}
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("steward-dummy-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash dummy password: %w", err)
	}
	return &Store{byEmail: byEmail, dummyHash: dummy}, nil
}

// FindByEmail looks up an account by exact, case-sensitive email match.
func (s *Store) FindByEmail(email string) (Account, bool) {
	account, ok := s.byEmail[email]
	return account, ok
}
