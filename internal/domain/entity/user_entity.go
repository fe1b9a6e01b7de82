package entity

import (
	"time"
)

// User is the aggregate root for identity.
// Passwords are stored as bcrypt hashes in Password field.
// ManagerID is a non-owning reference to the user that approves this
// user's expenses; it always points inside the same company.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      Role
	CompanyID string
	ManagerID *string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Company is populated on authenticated lookups.
	Company *Company
}

func (u *User) HasManager() bool {
	return u.ManagerID != nil && *u.ManagerID != ""
}
