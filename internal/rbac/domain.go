package rbac

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named bundle of permissions assignable to directory users.
type Role struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Permission is an atomic capability label, referenced by name from users
// and from roles.
type Permission struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
