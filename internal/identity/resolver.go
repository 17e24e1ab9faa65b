package identity

import (
	"log/slog"
	"net/http"

	"careergate/pkg/requestcontext"
)

// Resolver tries each configured provider in order and returns the first
// identity found. Provider failures are logged and demoted to anonymous: the
// gate must never crash the request pipeline because the auth backend is
// down. Enforcement strictness is the caller's concern, not the resolver's.
type Resolver struct {
	providers []Provider
	logger    *slog.Logger
}

func NewResolver(logger *slog.Logger, providers ...Provider) *Resolver {
	return &Resolver{providers: providers, logger: logger}
}

// Resolve returns the caller's identity, or nil for anonymous, along with
// any refreshed session credential that must be forwarded on the response.
func (res *Resolver) Resolve(r *http.Request) (*Identity, *RefreshedSession) {
	ctx := r.Context()
	for _, p := range res.providers {
		ident, refreshed, err := p.Resolve(ctx, r)
		if err != nil {
			res.logger.ErrorContext(ctx, "identity provider failed, treating as anonymous",
				"error", err,
				"provider", providerName(p),
				"request_id", requestcontext.RequestID(ctx),
			)
			continue
		}
		if ident != nil {
			return ident, refreshed
		}
	}
	return nil, nil
}

// SignOut revokes the request's credential on every provider that supports
// revocation. Fire-and-forget: failures are logged, never returned, because
// the caller is already being rejected.
func (res *Resolver) SignOut(r *http.Request) {
	ctx := r.Context()
	for _, p := range res.providers {
		so, ok := p.(SignOutProvider)
		if !ok {
			continue
		}
		if err := so.SignOut(ctx, r); err != nil {
			res.logger.WarnContext(ctx, "sign-out failed",
				"error", err,
				"provider", providerName(p),
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
}

func providerName(p Provider) string {
	type named interface{ Name() string }
	if n, ok := p.(named); ok {
		return n.Name()
	}
	return "unknown"
}
