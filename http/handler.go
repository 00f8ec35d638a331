package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sagarc03/assetgate"
)

// AssetStore resolves sanitized file names to metadata and content.
type AssetStore interface {
	GetMetadata(ctx context.Context, name string) (assetgate.AssetMetadata, error)
	Open(ctx context.Context, name string) (io.ReadSeekCloser, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HealthConfig struct {
	AllowAnonymous bool
	Version        string
	Environment    string
}

type HandlerConfig struct {
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Health     HealthConfig
	TrustProxy bool
	Logger     *slog.Logger
}

// Handler serves the asset download API.
type Handler struct {
	config   HandlerConfig
	settings assetgate.SettingsProvider
	auth     Authenticator
	store    AssetStore
	audit    assetgate.AuditSink
}

// NewHandler creates a Handler. The audit sink is called on the request path
// and must not block; wrap slow sinks in audit.Async.
func NewHandler(
	config *HandlerConfig,
	settings assetgate.SettingsProvider,
	auth Authenticator,
	store AssetStore,
	audit assetgate.AuditSink,
) *Handler {
	return &Handler{
		config:   *config,
		settings: settings,
		auth:     auth,
		store:    store,
		audit:    audit,
	}
}

// Router returns an http.Handler serving /health, /healthz and
// /resources/{filename}. HEAD on a resource returns its headers and is not
// audited.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	if h.config.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(CorrelationID)
	r.Use(RequestLogger(h.config.Logger))

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Use(RateLimit(h.config.RateLimit))

	r.Get("/health", h.handleHealth)

	if h.config.Health.AllowAnonymous {
		r.Get("/healthz", h.handleHealthz)
	} else {
		r.With(AuthMiddleware(h.auth)).Get("/healthz", h.handleHealthz)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.auth))
		r.Get("/resources/*", h.handleResource)
		r.Head("/resources/*", h.handleResource)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthDetails is the body of GET /healthz.
type HealthDetails struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version"`
	Runtime     string    `json:"runtime"`
	Environment string    `json:"environment"`
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	env := h.config.Health.Environment
	if env == "" {
		env = "unknown"
	}

	_ = WriteJSON(w, http.StatusOK, HealthDetails{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Version:     h.config.Health.Version,
		Runtime:     runtime.Version(),
		Environment: env,
	})
}

func (h *Handler) handleResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// chi does not clean paths, so traversal attempts reach the sanitizer.
	// The wildcard is still escaped only when chi routed on RawPath; decoding
	// r.URL.Path again would turn %2541 into A.
	raw := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(raw); err == nil {
			raw = unescaped
		}
	}

	name, err := assetgate.SanitizeFileName(raw)
	if err != nil {
		HandleError(w, err)
		return
	}

	asAttachment := false
	if v := r.URL.Query().Get("download"); v != "" {
		asAttachment, err = strconv.ParseBool(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid_parameter", "download must be a boolean")
			return
		}
	}

	meta, err := h.store.GetMetadata(ctx, name)
	if err != nil {
		HandleError(w, err)
		return
	}

	inm, hasINM := r.Header["If-None-Match"]
	if hasINM && len(inm) == 1 && inm[0] == meta.ETag {
		w.Header().Set("ETag", meta.ETag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	content, err := h.store.Open(ctx, name)
	if err != nil {
		// The file may have been removed since GetMetadata.
		HandleError(w, err)
		return
	}
	defer func() {
		if closeErr := content.Close(); closeErr != nil {
			slog.Warn("failed to close asset", "file", name, "err", closeErr)
		}
	}()

	disposition := "inline"
	if asAttachment {
		disposition = "attachment"
	}

	header := w.Header()
	header.Set("Cache-Control", "private, max-age="+strconv.Itoa(h.settings.Current().CacheMaxAge()))
	header.Set("ETag", meta.ETag)
	header.Set("Last-Modified", meta.LastModifiedUTC.Format(http.TimeFormat))
	header.Set("X-Content-Type-Options", "nosniff")
	header.Set("Content-Disposition", disposition+`; filename="`+name+`"`)
	header.Set("Content-Type", meta.ContentType)

	// If-None-Match was answered above with an exact comparison. Drop the
	// conditional headers so ServeContent does not apply its own rules.
	if hasINM {
		r = r.Clone(ctx)
		r.Header.Del("If-None-Match")
		r.Header.Del("If-Modified-Since")
	}

	// Only a served body counts as a download; an unsatisfiable Range is not.
	ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
	http.ServeContent(ww, r, name, meta.LastModifiedUTC, content)

	if r.Method == http.MethodGet && (ww.Status() == http.StatusOK || ww.Status() == http.StatusPartialContent) {
		h.recordDownload(r, name, meta)
	}
}

func (h *Handler) recordDownload(r *http.Request, name string, meta assetgate.AssetMetadata) {
	principal, _ := assetgate.PrincipalFromContext(r.Context())
	correlationID := CorrelationIDFromContext(r.Context())

	event := assetgate.DownloadEvent{
		ID:            uuid.New(),
		Subject:       principal.SubjectID,
		AuthMethod:    principal.AuthMethod,
		ClientIP:      ClientIP(r),
		FileName:      name,
		ContentType:   meta.ContentType,
		SizeBytes:     meta.SizeBytes,
		CorrelationID: correlationID,
		OccurredAt:    time.Now().UTC(),
	}

	if err := h.audit.Record(context.WithoutCancel(r.Context()), event); err != nil {
		slog.Warn("failed to record download", "file", name, "correlation_id", correlationID, "err", err)
	}
}
