package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// TokenSource returns bearer material for request auth.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Source() string
}

type staticTokenSource struct {
	token  string
	source string
}

func NewStaticTokenSource(token, source string) TokenSource {
	return &staticTokenSource{
		token:  strings.TrimSpace(token),
		source: strings.TrimSpace(source),
	}
}

func (s *staticTokenSource) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("token is empty for %s", s.Source())
	}
	return s.token, nil
}

func (s *staticTokenSource) Source() string {
	if s.source != "" {
		return s.source
	}
	return "static"
}

// AuthStrategy applies request auth for provider HTTP calls.
type AuthStrategy interface {
	Apply(ctx context.Context, req *http.Request) error
}

type bearerTokenAuth struct {
	source TokenSource
}

func NewBearerTokenAuth(source TokenSource) AuthStrategy {
	return &bearerTokenAuth{source: source}
}

func (a *bearerTokenAuth) Apply(ctx context.Context, req *http.Request) error {
	if a.source == nil {
		return fmt.Errorf("auth token source is nil")
	}
	tok, err := a.source.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}
