package auth

import "time"

// Account is a seeded login identity, a separate identity space from the
// managed directory User.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
}

// Claims carries the identity embedded in a session token.
type Claims struct {
	AccountID int64
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is an issued session credential.
type Token struct {
	Raw       string
	Role      string
	ExpiresAt time.Time
}

// AdminRole is the role label required to enter the administrative area.
const AdminRole = "admin"
