package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"careergate/internal/identity"
	"careergate/pkg/platform/sentinel"
	"careergate/pkg/requestcontext"
)

// CookieProvider resolves the session cookie against the session store.
// Sessions past the refresh threshold are extended in place and the rewritten
// expiry is handed back so the gate middleware can forward the refreshed
// cookie on the response.
type CookieProvider struct {
	store        Store
	cookieName   string
	ttl          time.Duration
	refreshAfter time.Duration
}

func NewCookieProvider(store Store, cookieName string, ttl, refreshAfter time.Duration) *CookieProvider {
	return &CookieProvider{
		store:        store,
		cookieName:   cookieName,
		ttl:          ttl,
		refreshAfter: refreshAfter,
	}
}

func (p *CookieProvider) Name() string { return "session-cookie" }

func (p *CookieProvider) Resolve(ctx context.Context, r *http.Request) (*identity.Identity, *identity.RefreshedSession, error) {
	cookie, err := r.Cookie(p.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil, nil
	}

	sess, err := p.store.FindByToken(ctx, cookie.Value)
	if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	now := requestcontext.Now(ctx)
	if sess.Expired(now) {
		// Lazy expiry for stores without native TTL (in-memory).
		_ = p.store.Delete(ctx, cookie.Value)
		return nil, nil, nil
	}

	ident := &identity.Identity{ID: sess.UserID, Email: sess.Email}

	var refreshed *identity.RefreshedSession
	if now.Sub(sess.RefreshedAt) >= p.refreshAfter {
		expiresAt := now.Add(p.ttl)
		if err := p.store.Refresh(ctx, sess.Token, now, expiresAt); err != nil {
			// The identity is already resolved; a failed refresh just means
			// the cookie keeps its old expiry. Never demote to anonymous
			// over it.
			return ident, nil, nil
		}
		refreshed = &identity.RefreshedSession{Token: sess.Token, ExpiresAt: expiresAt}
	}

	return ident, refreshed, nil
}

// SignOut deletes the session named by the request's cookie.
func (p *CookieProvider) SignOut(ctx context.Context, r *http.Request) error {
	cookie, err := r.Cookie(p.cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if err := p.store.Delete(ctx, cookie.Value); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return nil
}
