// Package http serves the asset download API.
//
// Routes:
//
//	GET /health               liveness, always anonymous
//	GET /healthz              details; authenticated unless allowed anonymously
//	GET /resources/{filename} authenticated download
//
// Requests to /resources are authenticated by AuthMiddleware with either an
// API key header or an HMAC bearer token; the scheme is chosen by which
// header is present and a failure on one scheme never falls back to the
// other. The filename is validated with assetgate.SanitizeFileName before
// any filesystem access.
//
// Downloads carry a weak ETag derived from size and modification time. A
// request whose If-None-Match equals it exactly is answered with 304.
// Range requests are served by http.ServeContent.
//
// Every successful download is handed to an assetgate.AuditSink. The sink
// runs on the request path, so production wiring wraps slow sinks in
// audit.Async:
//
//	h := http.NewHandler(&cfg, settings, authenticator, store, audit.NewAsync(sink, 0))
//	srv := &http.Server{Handler: h.Router()}
package http
