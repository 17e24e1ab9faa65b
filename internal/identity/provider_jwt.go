package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "careergate/pkg/domain"
)

// accessClaims are the claims the gate expects from a first-party access
// token: the user ID in the subject and the email as a custom claim.
type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTProvider resolves bearer tokens signed with the shared HMAC key.
// Invalid or expired tokens resolve to anonymous, not to an error: a stale
// token is an everyday condition, not an infrastructure failure.
type JWTProvider struct {
	key []byte
}

func NewJWTProvider(signingKey string) *JWTProvider {
	return &JWTProvider{key: []byte(signingKey)}
}

func (p *JWTProvider) Name() string { return "jwt" }

func (p *JWTProvider) Resolve(_ context.Context, r *http.Request) (*Identity, *RefreshedSession, error) {
	const bearerPrefix = "Bearer "
	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !ok || tokenString == "" {
		return nil, nil, nil
	}

	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return p.key, nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !token.Valid {
		return nil, nil, nil
	}

	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, nil, nil
	}

	return &Identity{ID: userID, Email: claims.Email}, nil, nil
}
