package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"careergate/internal/account"
	"careergate/internal/account/service"
	"careergate/internal/account/store"
	"careergate/internal/admin/guard"
	"careergate/internal/admin/handler"
	"careergate/internal/gate"
	"careergate/internal/identity"
	id "careergate/pkg/domain"
	"careergate/pkg/platform/audit/publisher"
	auditmemory "careergate/pkg/platform/audit/store/memory"
	"careergate/pkg/testutil"
)

type stubProvider struct {
	ident *identity.Identity
}

func (p *stubProvider) Resolve(context.Context, *http.Request) (*identity.Identity, *identity.RefreshedSession, error) {
	return p.ident, nil, nil
}

type RouterSuite struct {
	suite.Suite
	ctx      context.Context
	accounts *store.InMemoryStore
	logger   *slog.Logger
	upstream *httptest.Server
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemoryStore()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("upstream:" + r.URL.Path))
	}))
	s.T().Cleanup(s.upstream.Close)
}

func (s *RouterSuite) newRouter(ident *identity.Identity, health map[string]HealthChecker) http.Handler {
	resolver := identity.NewResolver(s.logger, &stubProvider{ident: ident})
	auditor := publisher.NewPublisher(auditmemory.NewInMemoryStore())
	classifier := gate.NewClassifier([]string{"/builder", "/success", "/dashboard"})
	engine := gate.NewEngine(classifier, s.accounts, gate.BlockWins, s.logger, nil)
	gateMiddleware := gate.NewMiddleware(resolver, engine, classifier, auditor, "fcs_session", s.logger)

	upstreamURL, err := url.Parse(s.upstream.URL)
	s.Require().NoError(err)

	users := service.New(s.accounts, auditor, s.logger)
	return New(Deps{
		Logger:   s.logger,
		Gate:     gateMiddleware,
		Guard:    guard.New(resolver, s.accounts, s.logger, nil),
		Admin:    handler.New(users, resolver, s.accounts, auditor, s.logger),
		Upstream: upstreamURL,
		Health:   health,
	})
}

func (s *RouterSuite) seedAdmin() *identity.Identity {
	now := time.Now()
	acct := &account.Account{
		ID:        id.NewUserID(),
		Email:     "admin@example.com",
		Role:      account.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.accounts.Create(s.ctx, acct))
	return &identity.Identity{ID: acct.ID, Email: acct.Email}
}

func (s *RouterSuite) TestHealthz() {
	s.Run("reports ok when all checks pass", func() {
		router := s.newRouter(nil, map[string]HealthChecker{
			"postgres": func(context.Context) error { return nil },
		})

		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"status":"ok"`)
	})

	s.Run("reports degraded when a check fails", func() {
		router := s.newRouter(nil, map[string]HealthChecker{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})

		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		s.Equal(http.StatusServiceUnavailable, rec.Code)
		s.Contains(rec.Body.String(), `"redis":"unhealthy"`)
	})
}

func (s *RouterSuite) TestMetricsExposed() {
	router := s.newRouter(nil, nil)
	rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterSuite) TestGatedProxy() {
	s.Run("public pages reach the upstream", func() {
		router := s.newRouter(nil, nil)

		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/pricing", nil))
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("upstream:/pricing", rec.Body.String())
	})

	s.Run("protected pages redirect anonymous callers", func() {
		router := s.newRouter(nil, nil)

		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/builder/step-1", nil))
		s.Equal(http.StatusFound, rec.Code)
		s.Equal("/login?redirect=%2Fbuilder%2Fstep-1", rec.Header().Get("Location"))
	})
}

func (s *RouterSuite) TestAdminAPIMounted() {
	s.Run("admin can list users through the full router", func() {
		admin := s.seedAdmin()
		router := s.newRouter(admin, nil)

		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("anonymous admin API calls get the JSON envelope, not a redirect", func() {
		router := s.newRouter(nil, nil)

		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/api/admin/users", nil))
		testutil.AssertErrorMessage(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}
