package assetgate

import (
	"net/http"
	"strings"
)

// Scheme is an authentication mechanism a request can be routed to.
type Scheme int

const (
	// SchemeBearer expects "Authorization: Bearer <token>".
	SchemeBearer Scheme = iota
	// SchemeAPIKey expects the configured API key header.
	SchemeAPIKey
)

func (s Scheme) String() string {
	switch s {
	case SchemeAPIKey:
		return "api_key"
	case SchemeBearer:
		return "bearer"
	default:
		return "unknown"
	}
}

// SelectScheme decides which mechanism authenticates a request with the
// given headers. The presence of apiKeyHeader, even with an empty value,
// selects SchemeAPIKey; anything else falls through to SchemeBearer.
// Exactly one scheme is ever selected.
func SelectScheme(h http.Header, apiKeyHeader string) Scheme {
	if len(h.Values(apiKeyHeader)) > 0 {
		return SchemeAPIKey
	}
	return SchemeBearer
}

// BearerToken extracts the token from an Authorization header value.
// The scheme name is matched case-insensitively.
func BearerToken(authorization string) (string, bool) {
	const prefix = "Bearer "
	if len(authorization) <= len(prefix) || !strings.EqualFold(authorization[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(authorization[len(prefix):])
	return token, token != ""
}

// Authenticator routes each request to a single validator chosen by
// SelectScheme and returns the resulting principal.
type Authenticator struct {
	settings SettingsProvider
	apiKeys  *APIKeyValidator
	tokens   *TokenVerifier
}

// NewAuthenticator creates an Authenticator. The API key header name is read
// from settings on every request.
func NewAuthenticator(settings SettingsProvider, apiKeys *APIKeyValidator, tokens *TokenVerifier) *Authenticator {
	return &Authenticator{
		settings: settings,
		apiKeys:  apiKeys,
		tokens:   tokens,
	}
}

// Authenticate resolves the principal for a request's headers.
//
// It returns ErrNoCredential when the bearer scheme is selected and no bearer
// token is present, and an error wrapping ErrUnauthorized when the selected
// credential is invalid.
func (a *Authenticator) Authenticate(h http.Header) (Principal, error) {
	headerName := a.settings.Current().APIKeys.HeaderName

	switch SelectScheme(h, headerName) {
	case SchemeAPIKey:
		return a.apiKeys.Validate(strings.Join(h.Values(headerName), ","))
	default:
		token, ok := BearerToken(h.Get("Authorization"))
		if !ok {
			return Principal{}, ErrNoCredential
		}
		return a.tokens.Verify(token)
	}
}
