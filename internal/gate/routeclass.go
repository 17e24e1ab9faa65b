// Package gate implements the page-navigation access gate: route
// classification, the access decision engine, and the HTTP middleware that
// applies decisions to incoming requests.
package gate

import (
	"strings"

	pstrings "careergate/pkg/platform/strings"
)

// RouteClass tags a request path by the gating rules that apply to it.
// Recomputed per request; never persisted.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAdminLogin
	RouteAdmin
	RouteProtectedApp
	RouteAuthEntry
)

func (c RouteClass) String() string {
	switch c {
	case RouteAdminLogin:
		return "admin_login"
	case RouteAdmin:
		return "admin"
	case RouteProtectedApp:
		return "protected_app"
	case RouteAuthEntry:
		return "auth_entry"
	default:
		return "public"
	}
}

// Classifier classifies paths into route classes. Pure and total over
// strings; the protected prefix set is fixed at construction.
type Classifier struct {
	protectedPrefixes []string
}

func NewClassifier(protectedPrefixes []string) *Classifier {
	return &Classifier{protectedPrefixes: pstrings.DedupeAndTrim(protectedPrefixes)}
}

// Classify applies the precedence rules: admin-login before admin, admin
// before everything else, then protected app prefixes, then auth entry.
func (c *Classifier) Classify(path string) RouteClass {
	if path == "/admin/login" || strings.HasPrefix(path, "/admin/login/") {
		return RouteAdminLogin
	}
	if strings.HasPrefix(path, "/admin") {
		return RouteAdmin
	}
	for _, prefix := range c.protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RouteProtectedApp
		}
	}
	if strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/signup") {
		return RouteAuthEntry
	}
	return RoutePublic
}
