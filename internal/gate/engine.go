package gate

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"careergate/internal/account"
	"careergate/internal/gate/metrics"
	"careergate/internal/identity"
	id "careergate/pkg/domain"
	"careergate/pkg/platform/sentinel"
)

// Outcome is the verdict for one page navigation.
type Outcome int

const (
	OutcomeAllow Outcome = iota
	OutcomeRedirectLogin
	OutcomeRedirectAdminLogin
	OutcomeRedirectDashboard
	OutcomeRedirectBlocked
	OutcomeForbidden
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRedirectLogin:
		return "redirect_login"
	case OutcomeRedirectAdminLogin:
		return "redirect_admin_login"
	case OutcomeRedirectDashboard:
		return "redirect_dashboard"
	case OutcomeRedirectBlocked:
		return "redirect_blocked"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "allow"
	}
}

// Decision is computed once per request and never persisted. Target is set
// only for redirect outcomes.
type Decision struct {
	Outcome Outcome
	Target  string
}

func allow() Decision {
	return Decision{Outcome: OutcomeAllow}
}

func redirect(outcome Outcome, target string) Decision {
	return Decision{Outcome: outcome, Target: target}
}

// RoleLookup fetches authorization attributes by identity id. Satisfied by
// the account store.
type RoleLookup interface {
	FindByID(ctx context.Context, userID id.UserID) (*account.Account, error)
}

// BlockedAdminPolicy resolves accounts that are both admin and blocked, a
// combination the data model permits but assigns no meaning on its own.
type BlockedAdminPolicy string

const (
	// BlockWins redirects a blocked admin to the blocked page like any
	// other blocked user.
	BlockWins BlockedAdminPolicy = "block-wins"

	// RoleExempts lets the admin role override the blocked flag
	// everywhere the page gate looks at it.
	RoleExempts BlockedAdminPolicy = "role-exempts"
)

// Engine combines the route class with identity and role information to
// produce an access decision. The page gate fails open: any panic during
// evaluation yields Allow, and a role lookup failure on a non-admin route is
// treated as an ordinary unblocked user. The admin route branch fails closed
// instead, since defaulting into the admin surface is the worse failure.
type Engine struct {
	classifier *Classifier
	roles      RoleLookup
	policy     BlockedAdminPolicy
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func NewEngine(classifier *Classifier, roles RoleLookup, policy BlockedAdminPolicy, logger *slog.Logger, m *metrics.Metrics) *Engine {
	if policy == "" {
		policy = BlockWins
	}
	return &Engine{
		classifier: classifier,
		roles:      roles,
		policy:     policy,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("careergate/gate"),
	}
}

// Evaluate decides whether the request may pass. ident is nil for anonymous
// requests. Never panics.
func (e *Engine) Evaluate(ctx context.Context, path string, ident *identity.Identity) (decision Decision) {
	ctx, span := e.tracer.Start(ctx, "gate.evaluate")
	start := time.Now()
	class := e.classifier.Classify(path)

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "panic during access evaluation, allowing request",
				"panic", r,
				"path", path,
				"route_class", class.String(),
			)
			decision = allow()
		}
		span.SetAttributes(
			attribute.String("gate.route_class", class.String()),
			attribute.String("gate.outcome", decision.Outcome.String()),
		)
		span.End()
		e.metrics.ObserveDecision(class.String(), decision.Outcome.String(), time.Since(start))
	}()

	decision = e.decide(ctx, class, path, ident)
	return decision
}

func (e *Engine) decide(ctx context.Context, class RouteClass, path string, ident *identity.Identity) Decision {
	if class == RouteAdminLogin {
		return allow()
	}

	if class == RouteAdmin {
		if ident == nil {
			return redirect(OutcomeRedirectAdminLogin, "/admin/login")
		}
		acct, err := e.roles.FindByID(ctx, ident.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			// Fails closed: an unknown role never reaches the admin
			// surface.
			e.logger.ErrorContext(ctx, "role lookup failed on admin route",
				"error", err,
				"user_id", ident.ID.String(),
			)
			return redirect(OutcomeRedirectDashboard, "/dashboard")
		}
		if acct == nil || acct.Role != account.RoleAdmin {
			return redirect(OutcomeRedirectDashboard, "/dashboard")
		}
		if acct.Blocked() && e.policy == BlockWins {
			return redirect(OutcomeRedirectBlocked, "/blocked")
		}
		return allow()
	}

	if ident != nil && !blockedExempt(path) && e.isBlocked(ctx, ident.ID) {
		return redirect(OutcomeRedirectBlocked, "/blocked")
	}

	switch class {
	case RouteProtectedApp:
		if ident == nil {
			return redirect(OutcomeRedirectLogin, "/login?redirect="+url.QueryEscape(path))
		}
		return allow()
	case RouteAuthEntry:
		if ident != nil {
			return redirect(OutcomeRedirectDashboard, "/dashboard")
		}
		return allow()
	default:
		return allow()
	}
}

// isBlocked fails open: a lookup error or missing record reads as not
// blocked.
func (e *Engine) isBlocked(ctx context.Context, userID id.UserID) bool {
	acct, err := e.roles.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			e.logger.WarnContext(ctx, "role lookup failed, treating user as not blocked",
				"error", err,
				"user_id", userID.String(),
			)
			e.metrics.IncrementLookupFailures()
		}
		return false
	}
	if acct.Role == account.RoleAdmin && e.policy == RoleExempts {
		return false
	}
	return acct.Blocked()
}

// blockedExempt reports whether blocked users may still reach the path. The
// blocked page itself, the root page, and the auth entry pages stay
// reachable so a blocked user can see why they were bounced and sign in as
// someone else.
func blockedExempt(path string) bool {
	if path == "/blocked" || path == "/" {
		return true
	}
	return strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/signup")
}
