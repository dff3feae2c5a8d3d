package tracestore

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// TokenProvider yields a bearer token for the trace store. Implementations
// refresh silently; a failed refresh surfaces as *AuthenticationError.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// ClientCredentialsTokenProvider acquires tokens via the OAuth2
// client-credentials flow against the tenant's token endpoint. The underlying
// token source caches the token and serializes refreshes, so concurrent
// queries may share one provider.
type ClientCredentialsTokenProvider struct {
	source oauth2.TokenSource
}

func NewClientCredentialsTokenProvider(
	tokenURL string,
	clientID string,
	clientSecret string,
	scopes []string,
) (*ClientCredentialsTokenProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, &AuthenticationError{Cause: fmt.Errorf("client credentials not configured")}
	}
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       scopes,
	}
	return &ClientCredentialsTokenProvider{
		source: cfg.TokenSource(context.Background()),
	}, nil
}

func (p *ClientCredentialsTokenProvider) Token(ctx context.Context) (string, error) {
	token, err := p.source.Token()
	if err != nil {
		return "", &AuthenticationError{Cause: err}
	}
	return token.AccessToken, nil
}

// StaticTokenProvider returns a fixed token. Used for local development
// against a store that accepts long-lived tokens, and in tests.
type StaticTokenProvider struct {
	AccessToken string
}

func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p.AccessToken == "" {
		return "", &AuthenticationError{}
	}
	return p.AccessToken, nil
}
