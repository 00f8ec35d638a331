package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/assetgate"
	"github.com/sagarc03/assetgate/audit"
	"github.com/sagarc03/assetgate/config"
	"github.com/sagarc03/assetgate/database"
	"github.com/sagarc03/assetgate/filesystem"
	assethttp "github.com/sagarc03/assetgate/http"
	"github.com/sagarc03/assetgate/keybackend"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the assetgate HTTP server.

Settings that affect request handling (asset root, cache lifetime, API keys
and token verification) are reloaded when a config file or the keys file
changes. Server settings require a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: ASSETGATE_SERVER_PORT)")
	serveCmd.Flags().Bool("trust-proxy", false, "use X-Forwarded-For / X-Real-IP for the client address")
	serveCmd.Flags().Bool("watch", true, "reload settings when config files change")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, err := cfg.Settings()
	if err != nil {
		return fmt.Errorf("build settings: %w", err)
	}
	if err := checkAssetRoot(settings.Assets.RootPath); err != nil {
		return err
	}
	store := assetgate.NewSettingsStore(settings)

	if watch, _ := cmd.Flags().GetBool("watch"); watch && len(configFiles) > 0 {
		watcher, err := config.Watch(cfg, configFiles, cmd.Flags(), store)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer func() { _ = watcher.Close() }()
	}

	if settings.JWT.SigningKey == "" {
		slog.Warn("no jwt signing key configured, bearer tokens will be rejected")
	}
	if len(settings.APIKeys.Keys) == 0 {
		slog.Warn("no api keys configured")
	}

	sink, closeSink, err := openAuditSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	authenticator := assetgate.NewAuthenticator(
		store,
		assetgate.NewAPIKeyValidator(keybackend.NewDirectory(store)),
		assetgate.NewTokenVerifier(store),
	)

	handlerConfig := cfg.HandlerConfig(version, slog.Default())
	handler := assethttp.NewHandler(&handlerConfig, store, authenticator, filesystem.NewStore(store), sink)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       seconds(cfg.Server.ReadTimeout),
		WriteTimeout:      seconds(cfg.Server.WriteTimeout),
		IdleTimeout:       seconds(cfg.Server.IdleTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"addr", addr,
			"assets", settings.Assets.RootPath,
			"audit", cfg.Audit.Backend,
			"api_keys", len(settings.APIKeys.Keys),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "err", err)
	}

	return nil
}

// openAuditSink returns the sink handed to the HTTP handler. Events are
// always logged; database backends also persist them. The returned close
// function drains queued events before closing the database.
func openAuditSink(ctx context.Context, cfg *config.Config) (*audit.Async, func(), error) {
	sinks := audit.Multi{audit.NewLog(slog.Default())}
	closeDB := func() {}

	if dbCfg, ok := cfg.AuditDatabase(); ok {
		repo, cleanup, err := database.Connect(ctx, dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect audit database: %w", err)
		}
		sinks = append(sinks, repo)
		closeDB = cleanup
		slog.Info("connected to audit database", "type", dbCfg.Type, "table", dbCfg.Tables.Audit)
	}

	async := audit.NewAsync(sinks, cfg.Audit.Buffer,
		audit.WithRecordTimeout(time.Duration(cfg.Audit.RecordTimeoutSeconds)*time.Second))

	return async, func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := async.Close(drainCtx); err != nil {
			slog.Warn("audit queue not drained", "err", err)
		}
		if n := async.Dropped(); n > 0 {
			slog.Warn("audit events dropped", "count", n)
		}
		closeDB()
	}, nil
}

func checkAssetRoot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("asset root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset root %s is not a directory", path)
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
