package domain

import (
	"errors"
	"time"
)

// Role is the closed set of privilege tiers, ordered from most to least
// privileged: super_admin > admin > bde.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleBDE        Role = "bde"
)

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleBDE
}

// AtLeastAdmin reports whether r carries admin-tier privileges or above.
func (r Role) AtLeastAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

var ErrUserNotFound = errors.New("user not found")
var ErrEmailExists = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserHasDependents = errors.New("user has dependent resources")
var ErrSuperAdminExists = errors.New("super admin already initialized")

// Principal is the authenticated actor attached to every request.
type Principal struct {
	UserID string
	Role   Role
}

// User models an account in the CRM.
type User struct {
	ID           string `json:"id" bson:"id"`
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         Role   `json:"role" bson:"role"`
	IsActive     bool   `json:"is_active" bson:"is_active"`
	PasswordHash string `json:"-" bson:"password_hash"`
	// GoogleCredentials is the opaque token bundle for the workspace
	// integration. The core passes it through without interpreting it.
	GoogleCredentials string    `json:"-" bson:"google_credentials,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}
