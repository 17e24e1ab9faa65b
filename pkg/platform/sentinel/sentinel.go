package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and provider clients
// return these (optionally wrapped) so callers can translate them into domain
// errors with the right severity for their boundary: the page gate treats a
// lookup failure as anonymous/unblocked, the admin guard treats the same
// failure as forbidden.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or session does not exist
// - ErrExpired: session or token past its expiry
// - ErrInvalidState: entity in the wrong state for the requested operation
// - ErrUnavailable: backing service unreachable or erroring
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
