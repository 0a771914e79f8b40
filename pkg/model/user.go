package model

import (
	"encoding/json"
	"strings"
)

// Role represents the role of a directory user.
type Role string

const (
	// RoleUser is a regular visitor who can search, view and vote.
	RoleUser Role = "user"
	// RoleOwner can claim businesses and manage their content.
	RoleOwner Role = "owner"
)

// ParseRole maps a role string onto the closed set of roles.
// Anything that is not "owner" is treated as a regular user.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleOwner)) {
		return RoleOwner
	}
	return RoleUser
}

// UnmarshalJSON keeps Role closed: unknown values decode to RoleUser.
func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}

// User is the identity returned by GET /user/me.
// The client only interprets Role; the other fields are display data.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"isVerified,omitempty"`
}

// IsOwner returns true if the user has the owner role.
func (u *User) IsOwner() bool {
	return u != nil && u.Role == RoleOwner
}

// DisplayName returns the name, falling back to the email address.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
