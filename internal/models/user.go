package models

import (
	"encoding/json"
	"time"
)

type UserRole string

const (
	UserRoleStudent    UserRole = "student"
	UserRoleStaff      UserRole = "staff"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "superadmin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// AssignedRole carries the optional organisational placement of staff and
// student accounts. Stored as a JSONB column.
type AssignedRole struct {
	College    string `json:"college"`
	Department string `json:"department"`
	Section    string `json:"section"`
}

// ParseAssignedRole decodes the raw JSONB column value. A null column or a
// blob that does not decode yields nil; the field is advisory display data.
func ParseAssignedRole(raw []byte) *AssignedRole {
	if len(raw) == 0 {
		return nil
	}
	var ar AssignedRole
	if err := json.Unmarshal(raw, &ar); err != nil {
		return nil
	}
	return &ar
}

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Role         UserRole
	Status       UserStatus
	AssignedRole *AssignedRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffOrAbove reports whether the role grants access to the staff surface.
func (r UserRole) StaffOrAbove() bool {
	return r == UserRoleStaff || r == UserRoleAdmin || r == UserRoleSuperAdmin
}

// LandingRoute is the surface a user of this role is sent to after login or
// after an impersonation transition.
func (r UserRole) LandingRoute() string {
	switch r {
	case UserRoleAdmin, UserRoleSuperAdmin:
		return "/admin"
	case UserRoleStaff:
		return "/staff"
	default:
		return "/student"
	}
}
