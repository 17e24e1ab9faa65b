package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	id "careergate/pkg/domain"
	"careergate/pkg/platform/circuit"
	"careergate/pkg/platform/sentinel"
)

// HTTPProvider resolves identities against the hosted auth provider's
// "current user" endpoint. Used when token verification keys are not shared
// with the gate, so every credential is validated remotely. A circuit
// breaker short-circuits resolution while the provider is down, so every
// page view does not eat a 5 second timeout.
type HTTPProvider struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	breaker *circuit.Breaker
}

// NewHTTPProvider builds a provider for the auth service at baseURL. The API
// key authenticates the gate itself and rides along on every call.
func NewHTTPProvider(baseURL *url.URL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 5 * time.Second},
		breaker: circuit.New("auth-provider", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
}

func (p *HTTPProvider) Name() string { return "auth-provider" }

// userPayload maps the provider's loosely-shaped user object onto an
// explicit field list. Unknown fields are dropped at this boundary rather
// than propagated into the decision engine.
type userPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (p *HTTPProvider) Resolve(ctx context.Context, r *http.Request) (*Identity, *RefreshedSession, error) {
	credential := bearerToken(r)
	if credential == "" {
		return nil, nil, nil
	}

	if p.breaker.IsOpen() {
		return nil, nil, fmt.Errorf("auth provider circuit open: %w", sentinel.ErrUnavailable)
	}

	req, err := p.newRequest(ctx, http.MethodGet, "/auth/v1/user", credential)
	if err != nil {
		return nil, nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.breaker.RecordFailure()
		return nil, nil, fmt.Errorf("auth provider request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Rejected credential: anonymous, not an infrastructure failure.
		p.breaker.RecordSuccess()
		return nil, nil, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		p.breaker.RecordFailure()
		return nil, nil, fmt.Errorf("auth provider status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	case resp.StatusCode != http.StatusOK:
		return nil, nil, fmt.Errorf("auth provider status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	p.breaker.RecordSuccess()

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, nil, fmt.Errorf("decode auth provider response: %w", err)
	}

	userID, err := id.ParseUserID(payload.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("auth provider returned invalid user id %q: %w", payload.ID, err)
	}

	return &Identity{ID: userID, Email: payload.Email}, nil, nil
}

// SignOut revokes the request's credential at the auth provider.
func (p *HTTPProvider) SignOut(ctx context.Context, r *http.Request) error {
	credential := bearerToken(r)
	if credential == "" {
		return nil
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/auth/v1/logout", credential)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider sign-out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("auth provider sign-out status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}

func (p *HTTPProvider) newRequest(ctx context.Context, method, path, credential string) (*http.Request, error) {
	u := p.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build auth provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("apikey", p.apiKey)
	return req, nil
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}
