package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier([]string{"/builder", "/success", "/dashboard"})

	tests := []struct {
		path string
		want RouteClass
	}{
		{"/admin/login", RouteAdminLogin},
		{"/admin/login/callback", RouteAdminLogin},
		{"/admin", RouteAdmin},
		{"/admin/users", RouteAdmin},
		{"/admin/users/42", RouteAdmin},
		{"/builder", RouteProtectedApp},
		{"/builder/step-1", RouteProtectedApp},
		{"/success", RouteProtectedApp},
		{"/dashboard", RouteProtectedApp},
		{"/login", RouteAuthEntry},
		{"/login/reset", RouteAuthEntry},
		{"/signup", RouteAuthEntry},
		{"/", RoutePublic},
		{"/pricing", RoutePublic},
		{"/blocked", RoutePublic},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.path))
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// Admin prefixes win even when a protected prefix shadows them.
	classifier := NewClassifier([]string{"/admin", "/builder"})

	assert.Equal(t, RouteAdminLogin, classifier.Classify("/admin/login"))
	assert.Equal(t, RouteAdmin, classifier.Classify("/admin/users"))
}

func TestRouteClassString(t *testing.T) {
	assert.Equal(t, "admin_login", RouteAdminLogin.String())
	assert.Equal(t, "admin", RouteAdmin.String())
	assert.Equal(t, "protected_app", RouteProtectedApp.String())
	assert.Equal(t, "auth_entry", RouteAuthEntry.String())
	assert.Equal(t, "public", RoutePublic.String())
}
