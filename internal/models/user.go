package models

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

type User struct {
	ID           string    `json:"id" example:"0b8e4a2c-7d1f-4c55-9a0e-3f6b2d9c8e71"` // User ID
	Email        string    `json:"email" example:"user@example.com"`                  // User email
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName" example:"John"`
	LastName     string    `json:"lastName" example:"Doe"`
	Role         Role      `json:"role" example:"client"`
	IsBlocked    bool      `json:"isBlocked"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
