// Package assetgate provides authenticated, read-only download of files from
// a single asset directory.
//
// A request is authenticated by exactly one of two schemes. When the
// configured API key header is present the key is hashed and matched against
// enabled key records; otherwise the request must carry an HMAC signed JWT
// bearer token. The schemes never fall back to each other.
//
// # Key Components
//
//   - Settings / SettingsStore: immutable configuration snapshot, replaced atomically on reload
//   - Authenticator: selects the scheme for a request and resolves its Principal
//   - APIKeyValidator: SHA-256 digest lookup against a KeyDirectory
//   - TokenVerifier: JWT signature, expiry, issuer and audience checks
//   - SanitizeFileName: rejects any name that could leave the asset directory
//   - AuditSink / AuditRepo: destinations for download events
//
// # Example Usage
//
//	store := assetgate.NewSettingsStore(settings)
//	auth := assetgate.NewAuthenticator(
//	    store,
//	    assetgate.NewAPIKeyValidator(directory),
//	    assetgate.NewTokenVerifier(store),
//	)
//
//	principal, err := auth.Authenticate(r.Header)
//
// See the http package for the download endpoint and the filesystem package
// for the asset store.
package assetgate
