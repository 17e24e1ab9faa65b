// Package account defines the persisted authorization attributes the gate
// reads and the admin endpoints mutate.
package account

import (
	"time"

	id "careergate/pkg/domain"
)

// Role is the authorization role stored on an account. Only RoleAdmin passes
// the admin gates; every other value, including an absent record, is treated
// as an ordinary user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string { return string(r) }

// Account is the typed mapping of an account row. Store implementations map
// their row shapes onto this exhaustive field list at the boundary; untyped
// data never reaches the decision engine.
type Account struct {
	ID        id.UserID
	Email     string
	FullName  string
	Role      Role
	BlockedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Blocked reports whether the account is currently blocked.
func (a *Account) Blocked() bool {
	return a.BlockedAt != nil
}
