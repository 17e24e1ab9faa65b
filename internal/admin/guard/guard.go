// Package guard implements the admin API authorization check. Unlike the
// page gate it fails closed: any failure to prove the caller is an
// unambiguous admin rejects the request before a handler runs.
package guard

import (
	"context"
	"log/slog"
	"net/http"

	"careergate/internal/account"
	"careergate/internal/admin/guard/metrics"
	"careergate/internal/gate"
	"careergate/internal/identity"
	id "careergate/pkg/domain"
	dErrors "careergate/pkg/domain-errors"
	"careergate/pkg/platform/httputil"
	"careergate/pkg/requestcontext"
)

// AdminUser is the authorized caller handed to admin endpoints.
type AdminUser struct {
	ID    id.UserID
	Email string
	Role  account.Role
}

type adminUserKey struct{}

// ContextKeyAdminUser is exported for tests that inject an admin directly.
var ContextKeyAdminUser = adminUserKey{}

// AdminFromContext returns the admin placed in the context by Middleware.
func AdminFromContext(ctx context.Context) (*AdminUser, bool) {
	admin, ok := ctx.Value(ContextKeyAdminUser).(*AdminUser)
	return admin, ok
}

// Guard resolves and authorizes admin callers.
type Guard struct {
	resolver *identity.Resolver
	roles    gate.RoleLookup
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func New(resolver *identity.Resolver, roles gate.RoleLookup, logger *slog.Logger, m *metrics.Metrics) *Guard {
	return &Guard{resolver: resolver, roles: roles, logger: logger, metrics: m}
}

// Authorize verifies the request carries an admin identity. Returns
// unauthorized for anonymous callers and forbidden for everything else that
// falls short, including role lookup failures.
func (g *Guard) Authorize(ctx context.Context, r *http.Request) (*AdminUser, error) {
	ident, _ := g.resolver.Resolve(r)
	if ident == nil {
		g.metrics.IncrementAuthorization("unauthorized")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized")
	}

	acct, err := g.roles.FindByID(ctx, ident.ID)
	if err != nil {
		g.logger.ErrorContext(ctx, "role lookup failed on admin API, rejecting",
			"error", err,
			"user_id", ident.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		g.metrics.IncrementAuthorization("forbidden")
		return nil, dErrors.New(dErrors.CodeForbidden, "Forbidden")
	}
	if acct.Role != account.RoleAdmin {
		g.metrics.IncrementAuthorization("forbidden")
		return nil, dErrors.New(dErrors.CodeForbidden, "Forbidden")
	}

	g.metrics.IncrementAuthorization("authorized")
	return &AdminUser{ID: acct.ID, Email: acct.Email, Role: acct.Role}, nil
}

// Middleware rejects non-admin callers and exposes the authorized admin to
// downstream handlers via the context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		admin, err := g.Authorize(ctx, r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		ctx = context.WithValue(ctx, ContextKeyAdminUser, admin)
		ctx = requestcontext.WithUserID(ctx, admin.ID)
		ctx = requestcontext.WithEmail(ctx, admin.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
