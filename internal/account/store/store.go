// Package store persists accounts. All operations are single-row and keyed
// by primary id; concurrent admin edits are last-writer-wins.
// Implementations return sentinel.ErrNotFound for missing rows and leave
// fail-open/fail-closed semantics to the callers.
package store

import (
	"context"
	"time"

	"careergate/internal/account"
	id "careergate/pkg/domain"
)

// ListParams pages through accounts ordered by creation time descending.
type ListParams struct {
	Limit  int
	Offset int
}

// Store is the account persistence interface.
type Store interface {
	Create(ctx context.Context, acct *account.Account) error
	FindByID(ctx context.Context, userID id.UserID) (*account.Account, error)
	List(ctx context.Context, params ListParams) ([]*account.Account, int, error)

	// SetBlocked sets or clears blocked_at. Passing nil unblocks.
	SetBlocked(ctx context.Context, userID id.UserID, blockedAt *time.Time, now time.Time) error
	SetRole(ctx context.Context, userID id.UserID, role account.Role, now time.Time) error
	// UpdateProfile patches email and full name; nil fields are untouched.
	UpdateProfile(ctx context.Context, userID id.UserID, email, fullName *string, now time.Time) error
	Delete(ctx context.Context, userID id.UserID) error
}
