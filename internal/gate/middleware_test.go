package gate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"careergate/internal/account"
	"careergate/internal/account/store"
	"careergate/internal/identity"
	id "careergate/pkg/domain"
	"careergate/pkg/platform/audit"
	"careergate/pkg/platform/audit/publisher"
	auditmemory "careergate/pkg/platform/audit/store/memory"
)

type stubProvider struct {
	ident     *identity.Identity
	refreshed *identity.RefreshedSession
	err       error
}

func (p stubProvider) Resolve(context.Context, *http.Request) (*identity.Identity, *identity.RefreshedSession, error) {
	return p.ident, p.refreshed, p.err
}

type MiddlewareSuite struct {
	suite.Suite
	ctx        context.Context
	accounts   *store.InMemoryStore
	auditStore *auditmemory.InMemoryStore
	logger     *slog.Logger
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareSuite))
}

func (s *MiddlewareSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemoryStore()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *MiddlewareSuite) newHandler(provider identity.Provider, next http.Handler) http.Handler {
	resolver := identity.NewResolver(s.logger, provider)
	classifier := NewClassifier([]string{"/builder", "/success", "/dashboard"})
	engine := NewEngine(classifier, s.accounts, BlockWins, s.logger, nil)
	auditor := publisher.NewPublisher(s.auditStore)
	mw := NewMiddleware(resolver, engine, classifier, auditor, "fcs_session", s.logger)
	return mw.Handler(next)
}

func (s *MiddlewareSuite) seedUser(role account.Role, blocked bool) *identity.Identity {
	now := time.Now()
	acct := &account.Account{
		ID:        id.NewUserID(),
		Email:     "user@example.com",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if blocked {
		acct.BlockedAt = &now
	}
	s.Require().NoError(s.accounts.Create(s.ctx, acct))
	return &identity.Identity{ID: acct.ID, Email: acct.Email}
}

func (s *MiddlewareSuite) TestAllowReachesUpstream() {
	called := false
	handler := s.newHandler(stubProvider{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pricing", nil))

	s.True(called)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *MiddlewareSuite) TestAnonymousProtectedRedirect() {
	handler := s.newHandler(stubProvider{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Fail("upstream must not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/builder/step-1", nil))

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/login?redirect=%2Fbuilder%2Fstep-1", rec.Header().Get("Location"))
}

func (s *MiddlewareSuite) TestAPIRoutesBypassTheGate() {
	called := false
	handler := s.newHandler(stubProvider{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))

	s.True(called)
}

func (s *MiddlewareSuite) TestRefreshedSessionForwarded() {
	ident := s.seedUser(account.RoleUser, false)
	expiresAt := time.Now().Add(24 * time.Hour)
	provider := stubProvider{
		ident:     ident,
		refreshed: &identity.RefreshedSession{Token: "refreshed-token", ExpiresAt: expiresAt},
	}
	handler := s.newHandler(provider, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/builder", nil))

	cookies := rec.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal("fcs_session", cookies[0].Name)
	s.Equal("refreshed-token", cookies[0].Value)
	s.True(cookies[0].HttpOnly)
}

func (s *MiddlewareSuite) TestBlockedUserRedirectAudited() {
	ident := s.seedUser(account.RoleUser, true)
	handler := s.newHandler(stubProvider{ident: ident}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Fail("upstream must not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/blocked", rec.Header().Get("Location"))

	events, err := s.auditStore.ListByUser(s.ctx, ident.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventBlockedRedirect), events[0].Action)
	s.Equal(audit.CategorySecurity, events[0].Category)
}

func (s *MiddlewareSuite) TestAdminAccessDenialAudited() {
	ident := s.seedUser(account.RoleUser, false)
	handler := s.newHandler(stubProvider{ident: ident}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Fail("upstream must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	s.Equal(http.StatusFound, rec.Code)
	s.Equal("/dashboard", rec.Header().Get("Location"))

	events, err := s.auditStore.ListByUser(s.ctx, ident.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventAdminAccessDenied), events[0].Action)
	s.NotEmpty(events[0].Browser)
	s.NotEmpty(events[0].OS)
}

func (s *MiddlewareSuite) TestAnonymousRedirectsAreNotAudited() {
	handler := s.newHandler(stubProvider{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	s.Equal(http.StatusFound, rec.Code)
	s.Empty(s.auditStore.All())
}
