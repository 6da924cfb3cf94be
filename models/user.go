package models

import "time"

// Role is an occupational tag used both for users and for scheme eligibility
type Role string

const (
	RoleFarmer       Role = "farmer"
	RoleStudent      Role = "student"
	RoleSelfEmployed Role = "self_employed"
	RoleSalaried     Role = "salaried"
	RoleUnemployed   Role = "unemployed"
	RoleOther        Role = "other"
)

// Roles lists every valid role in prompt order
var Roles = []Role{
	RoleFarmer,
	RoleStudent,
	RoleSelfEmployed,
	RoleSalaried,
	RoleUnemployed,
	RoleOther,
}

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	MobileNo     string    `json:"mobileno"`
	Role         Role      `json:"role"`
	Language     string    `json:"language"`
	CreatedAt    time.Time `json:"created_at"`
}
