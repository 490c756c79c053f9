package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/rbac"
)

// Status enumerates user lifecycle states.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User is a managed directory record, distinct from a login account. Role is
// always present after creation; direct permissions are independent of the
// permissions implied by the role.
type User struct {
	ID          uuid.UUID         `json:"id"`
	Email       string            `json:"email"`
	Name        *string           `json:"name"`
	Role        *rbac.Role        `json:"role"`
	Permissions []rbac.Permission `json:"permissions"`
	Status      Status            `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}
