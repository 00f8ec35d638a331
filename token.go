package assetgate

import (
	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims are the claims read from a bearer token.
type tokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var validSigningMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// TokenVerifier verifies HMAC signed JWT bearer tokens using the JWT
// settings of the current snapshot.
type TokenVerifier struct {
	settings SettingsProvider
}

// NewTokenVerifier creates a verifier that reads its secret, issuer,
// audience and clock skew from settings on every call.
func NewTokenVerifier(settings SettingsProvider) *TokenVerifier {
	return &TokenVerifier{settings: settings}
}

// Verify parses and validates rawToken.
//
// The signature and expiry are always checked; issuer and audience only when
// enabled. The clock skew applies to exp and nbf. Every failure returns
// ErrInvalidToken so callers cannot tell which check rejected the token.
func (v *TokenVerifier) Verify(rawToken string) (Principal, error) {
	cfg := v.settings.Current().JWT
	if cfg.SigningKey == "" || rawToken == "" {
		return Principal{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(validSigningMethods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.ClockSkew),
	}
	if cfg.ValidateIssuer {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.ValidateAudience {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	var claims tokenClaims
	tkn, err := jwt.ParseWithClaims(rawToken, &claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.SigningKey), nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}

	return Principal{
		SubjectID:   claims.Subject,
		DisplayName: name,
		AuthMethod:  AuthMethodJWT,
	}, nil
}
