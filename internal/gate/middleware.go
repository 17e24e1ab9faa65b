package gate

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"careergate/internal/identity"
	"careergate/pkg/platform/audit"
	"careergate/pkg/requestcontext"
)

// Middleware applies access decisions to page navigations. API endpoints,
// health and metrics endpoints, and static assets are not gated here; the
// admin API carries its own guard.
type Middleware struct {
	resolver   *identity.Resolver
	engine     *Engine
	classifier *Classifier
	auditor    audit.Auditor
	cookieName string
	logger     *slog.Logger
}

func NewMiddleware(resolver *identity.Resolver, engine *Engine, classifier *Classifier, auditor audit.Auditor, cookieName string, logger *slog.Logger) *Middleware {
	return &Middleware{
		resolver:   resolver,
		engine:     engine,
		classifier: classifier,
		auditor:    auditor,
		cookieName: cookieName,
		logger:     logger,
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if skipGate(path) {
			next.ServeHTTP(w, r)
			return
		}

		ident, refreshed := m.resolver.Resolve(r)
		if refreshed != nil {
			m.forwardRefreshedSession(w, r, ident, refreshed)
		}

		ctx := r.Context()
		if ident != nil {
			ctx = requestcontext.WithUserID(ctx, ident.ID)
			ctx = requestcontext.WithEmail(ctx, ident.Email)
			r = r.WithContext(ctx)
		}

		decision := m.engine.Evaluate(ctx, path, ident)
		switch decision.Outcome {
		case OutcomeAllow:
			next.ServeHTTP(w, r)
		case OutcomeForbidden:
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			m.auditDenial(r, ident, decision)
			http.Redirect(w, r, decision.Target, http.StatusFound)
		}
	})
}

// skipGate reports paths outside the page gate's jurisdiction.
func skipGate(path string) bool {
	if strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/static/") ||
		strings.HasPrefix(path, "/_next/") {
		return true
	}
	switch path {
	case "/metrics", "/healthz", "/favicon.ico":
		return true
	}
	return false
}

func (m *Middleware) forwardRefreshedSession(w http.ResponseWriter, r *http.Request, ident *identity.Identity, refreshed *identity.RefreshedSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    refreshed.Token,
		Path:     "/",
		Expires:  refreshed.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	event := audit.Event{Action: string(audit.EventSessionRefreshed)}
	if ident != nil {
		event.UserID = ident.ID
		event.Email = ident.Email
	}
	m.emit(r, event)
}

// auditDenial records security-relevant denials: an authenticated non-admin
// bounced off an admin route, and a blocked user bounced to the blocked page.
func (m *Middleware) auditDenial(r *http.Request, ident *identity.Identity, decision Decision) {
	if ident == nil {
		return
	}

	var action audit.AuditEvent
	switch {
	case decision.Outcome == OutcomeRedirectBlocked:
		action = audit.EventBlockedRedirect
	case decision.Outcome == OutcomeRedirectDashboard && m.classifier.Classify(r.URL.Path) == RouteAdmin:
		action = audit.EventAdminAccessDenied
	default:
		return
	}

	ua := useragent.New(r.UserAgent())
	browser, version := ua.Browser()
	m.emit(r, audit.Event{
		UserID:  ident.ID,
		Email:   ident.Email,
		Action:  string(action),
		Reason:  r.URL.Path,
		IP:      requestcontext.ClientIP(r.Context()),
		Browser: strings.TrimSpace(browser + " " + version),
		OS:      ua.OS(),
	})
}

func (m *Middleware) emit(r *http.Request, event audit.Event) {
	ctx := r.Context()
	event.RequestID = requestcontext.RequestID(ctx)
	if err := m.auditor.Emit(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "failed to emit gate audit event",
			"error", err,
			"action", event.Action,
		)
	}
}
