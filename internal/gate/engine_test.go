package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"careergate/internal/account"
	"careergate/internal/account/store"
	"careergate/internal/identity"
	id "careergate/pkg/domain"
)

type failingLookup struct{}

func (failingLookup) FindByID(context.Context, id.UserID) (*account.Account, error) {
	return nil, errors.New("account store unavailable")
}

type panickingLookup struct{}

func (panickingLookup) FindByID(context.Context, id.UserID) (*account.Account, error) {
	panic("account store panicked")
}

type EngineSuite struct {
	suite.Suite
	ctx        context.Context
	accounts   *store.InMemoryStore
	classifier *Classifier
	engine     *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.accounts = store.NewInMemoryStore()
	s.classifier = NewClassifier([]string{"/builder", "/success", "/dashboard"})
	s.engine = s.newEngine(BlockWins)
}

func (s *EngineSuite) newEngine(policy BlockedAdminPolicy) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(s.classifier, s.accounts, policy, logger, nil)
}

func (s *EngineSuite) seedUser(role account.Role, blocked bool) *identity.Identity {
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

func (s *EngineSuite) TestAdminLoginRoute() {
	s.Run("anonymous may reach the admin login page", func() {
		decision := s.engine.Evaluate(s.ctx, "/admin/login", nil)
		s.Equal(OutcomeAllow, decision.Outcome)
	})

	s.Run("blocked non-admin may reach the admin login page", func() {
		ident := s.seedUser(account.RoleUser, true)
		decision := s.engine.Evaluate(s.ctx, "/admin/login", ident)
		s.Equal(OutcomeAllow, decision.Outcome)
	})
}

func (s *EngineSuite) TestAdminRoute() {
	s.Run("anonymous is sent to the admin login", func() {
		decision := s.engine.Evaluate(s.ctx, "/admin/users", nil)
		s.Equal(OutcomeRedirectAdminLogin, decision.Outcome)
		s.Equal("/admin/login", decision.Target)
	})

	s.Run("regular user is sent to the dashboard", func() {
		ident := s.seedUser(account.RoleUser, false)
		decision := s.engine.Evaluate(s.ctx, "/admin/users", ident)
		s.Equal(OutcomeRedirectDashboard, decision.Outcome)
		s.Equal("/dashboard", decision.Target)
	})

	s.Run("identity without an account record never passes", func() {
		ident := &identity.Identity{ID: id.NewUserID()}
		decision := s.engine.Evaluate(s.ctx, "/admin", ident)
		s.Equal(OutcomeRedirectDashboard, decision.Outcome)
	})

	s.Run("unblocked admin passes", func() {
		ident := s.seedUser(account.RoleAdmin, false)
		decision := s.engine.Evaluate(s.ctx, "/admin/users", ident)
		s.Equal(OutcomeAllow, decision.Outcome)
	})
}

func (s *EngineSuite) TestProtectedAppRoute() {
	s.Run("anonymous is sent to login with the original path", func() {
		decision := s.engine.Evaluate(s.ctx, "/builder/step-1", nil)
		s.Equal(OutcomeRedirectLogin, decision.Outcome)
		s.Equal("/login?redirect=%2Fbuilder%2Fstep-1", decision.Target)
	})

	s.Run("authenticated user passes", func() {
		ident := s.seedUser(account.RoleUser, false)
		decision := s.engine.Evaluate(s.ctx, "/builder/step-1", ident)
		s.Equal(OutcomeAllow, decision.Outcome)
	})
}

func (s *EngineSuite) TestAuthEntryRoute() {
	s.Run("anonymous may reach login and signup", func() {
		s.Equal(OutcomeAllow, s.engine.Evaluate(s.ctx, "/login", nil).Outcome)
		s.Equal(OutcomeAllow, s.engine.Evaluate(s.ctx, "/signup", nil).Outcome)
	})

	s.Run("authenticated user is sent to the dashboard", func() {
		ident := s.seedUser(account.RoleUser, false)
		decision := s.engine.Evaluate(s.ctx, "/login", ident)
		s.Equal(OutcomeRedirectDashboard, decision.Outcome)
		s.Equal("/dashboard", decision.Target)
	})
}

func (s *EngineSuite) TestPublicRoute() {
	s.Run("anonymous passes", func() {
		s.Equal(OutcomeAllow, s.engine.Evaluate(s.ctx, "/pricing", nil).Outcome)
	})

	s.Run("authenticated unblocked user passes", func() {
		ident := s.seedUser(account.RoleUser, false)
		s.Equal(OutcomeAllow, s.engine.Evaluate(s.ctx, "/pricing", ident).Outcome)
	})
}

func (s *EngineSuite) TestBlockedUsers() {
	s.Run("blocked user is redirected off protected pages", func() {
		ident := s.seedUser(account.RoleUser, true)
		decision := s.engine.Evaluate(s.ctx, "/dashboard", ident)
		s.Equal(OutcomeRedirectBlocked, decision.Outcome)
		s.Equal("/blocked", decision.Target)
	})

	s.Run("blocked user is redirected off public pages", func() {
		ident := s.seedUser(account.RoleUser, true)
		decision := s.engine.Evaluate(s.ctx, "/pricing", ident)
		s.Equal(OutcomeRedirectBlocked, decision.Outcome)
	})

	s.Run("blocked page itself stays reachable", func() {
		ident := s.seedUser(account.RoleUser, true)
		s.Equal(OutcomeAllow, s.engine.Evaluate(s.ctx, "/blocked", ident).Outcome)
	})

	s.Run("root page stays reachable", func() {
		ident := s.seedUser(account.RoleUser, true)
		s.Equal(OutcomeAllow, s.engine.Evaluate(s.ctx, "/", ident).Outcome)
	})

	s.Run("auth entry pages follow the auth entry rule, not the blocked rule", func() {
		ident := s.seedUser(account.RoleUser, true)
		decision := s.engine.Evaluate(s.ctx, "/login/reset", ident)
		s.Equal(OutcomeRedirectDashboard, decision.Outcome)
	})
}

func (s *EngineSuite) TestBlockedAdminPolicy() {
	s.Run("block-wins is the default and bounces a blocked admin", func() {
		engine := NewEngine(s.classifier, s.accounts, "", slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
		ident := s.seedUser(account.RoleAdmin, true)

		s.Equal(OutcomeRedirectBlocked, engine.Evaluate(s.ctx, "/admin/users", ident).Outcome)
		s.Equal(OutcomeRedirectBlocked, engine.Evaluate(s.ctx, "/dashboard", ident).Outcome)
	})

	s.Run("role-exempts lets a blocked admin through everywhere", func() {
		engine := s.newEngine(RoleExempts)
		ident := s.seedUser(account.RoleAdmin, true)

		s.Equal(OutcomeAllow, engine.Evaluate(s.ctx, "/admin/users", ident).Outcome)
		s.Equal(OutcomeAllow, engine.Evaluate(s.ctx, "/dashboard", ident).Outcome)
	})
}

func (s *EngineSuite) TestFailureSemantics() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ident := &identity.Identity{ID: id.NewUserID()}

	s.Run("lookup failure on a non-admin route fails open", func() {
		engine := NewEngine(s.classifier, failingLookup{}, BlockWins, logger, nil)
		s.Equal(OutcomeAllow, engine.Evaluate(s.ctx, "/builder/step-1", ident).Outcome)
		s.Equal(OutcomeAllow, engine.Evaluate(s.ctx, "/pricing", ident).Outcome)
	})

	s.Run("lookup failure on an admin route fails closed", func() {
		engine := NewEngine(s.classifier, failingLookup{}, BlockWins, logger, nil)
		s.Equal(OutcomeRedirectDashboard, engine.Evaluate(s.ctx, "/admin/users", ident).Outcome)
	})

	s.Run("a panic during evaluation yields allow", func() {
		engine := NewEngine(s.classifier, panickingLookup{}, BlockWins, logger, nil)
		s.NotPanics(func() {
			s.Equal(OutcomeAllow, engine.Evaluate(s.ctx, "/builder/step-1", ident).Outcome)
		})
	})
}
