// Package domain holds typed identifiers shared across the gate. IDs are
// distinct types over uuid.UUID so a session token can never be passed where
// a user ID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "careergate/pkg/domain-errors"
)

// UserID identifies an account in the account store and an authenticated
// identity resolved from request credentials.
type UserID uuid.UUID

// SessionID identifies a first-party browser session.
type SessionID uuid.UUID

// NewUserID returns a fresh random UserID.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewSessionID returns a fresh random SessionID.
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// ParseUserID validates s as a non-nil UUID. Rejects empty strings, invalid
// formats, and the nil UUID; these are trust-boundary checks for values that
// arrive in URLs and tokens.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseSessionID validates s as a non-nil UUID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid id format")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "nil id not allowed")
	}
	return u, nil
}

func (u UserID) String() string { return uuid.UUID(u).String() }

// IsNil reports whether the ID is the zero UUID.
func (u UserID) IsNil() bool { return uuid.UUID(u) == uuid.Nil }

func (s SessionID) String() string { return uuid.UUID(s).String() }

// IsNil reports whether the ID is the zero UUID.
func (s SessionID) IsNil() bool { return uuid.UUID(s) == uuid.Nil }
