// Package identity resolves the caller's identity from request credentials.
// Identities are request-scoped: resolved fresh on every request and never
// cached across requests.
package identity

import (
	"context"
	"net/http"
	"time"

	id "careergate/pkg/domain"
)

// Identity is the authenticated caller for the duration of one request.
type Identity struct {
	ID    id.UserID
	Email string
}

// RefreshedSession carries a rewritten session credential produced while
// resolving. The gate middleware must forward it untouched to the client on
// the outgoing response.
type RefreshedSession struct {
	Token     string
	ExpiresAt time.Time
}

// Provider resolves an identity from one kind of request credential.
//
// The contract is strict about the three outcomes:
//   - credential absent: (nil, nil, nil) so the next provider gets a turn
//   - credential present but invalid/expired: (nil, nil, nil) — treated the
//     same as absent, the caller is anonymous
//   - backing service failure: (nil, nil, err) so the resolver can log it
//     and still degrade to anonymous
type Provider interface {
	Resolve(ctx context.Context, r *http.Request) (*Identity, *RefreshedSession, error)
}

// SignOutProvider is implemented by providers that can revoke the credential
// carried on the request. Used after a failed admin-login verification.
type SignOutProvider interface {
	SignOut(ctx context.Context, r *http.Request) error
}
