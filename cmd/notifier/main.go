package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"wiki-notify/internal/config"
	hhttp "wiki-notify/internal/handler/http"
	"wiki-notify/internal/handler/http/requestid"
	"wiki-notify/internal/infra/webhook"
	"wiki-notify/internal/infra/wiki"
	"wiki-notify/internal/observability/logging"
	"wiki-notify/internal/observability/tracing"
	"wiki-notify/internal/usecase/format"
	"wiki-notify/internal/usecase/notify"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// shutdownTimeout bounds draining of the listeners and queued dispatches.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("notifier exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	path := config.ResolvePath()
	cfg, warnings, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	for _, w := range warnings {
		logger.Warn("configuration fallback", slog.String("detail", w))
	}

	tp := tracing.Setup(cfg.Server.TraceSampleRatio)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("tracer provider shutdown failed", slog.Any("error", err))
		}
	}()

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	logger.Info("notifier configured",
		slog.String("version", version),
		slog.String("config", path),
		slog.String("webhook", logging.RedactURL(cfg.Webhook.URL)),
		slog.String("send_method", string(cfg.Webhook.Method)),
		slog.Bool("async", cfg.Dispatch.Async))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := &hhttp.ReadyHandler{}
	ingest := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           ingestHandler(logger, svc, cfg.Server.HookToken),
		ReadHeaderTimeout: 10 * time.Second,
		// Synchronous dispatch holds the request for up to the webhook timeout.
		WriteTimeout: cfg.Webhook.Timeout.Std() + 5*time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	metrics := newMetricsServer(cfg, ready, version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("ingest server starting", slog.String("addr", ingest.Addr))
		return serve(ingest)
	})
	g.Go(func() error {
		logger.Info("metrics server starting", slog.String("addr", metrics.Addr))
		return serve(metrics)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		ready.SetDraining()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := ingest.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("ingest server: %w", err))
		}
		if err := svc.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("notification service: %w", err))
		}
		if err := metrics.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("notifier stopped")
	return nil
}

// buildService wires the pipeline: links and rights from the wiki section,
// the formatter, the webhook dispatcher and the service around them.
func buildService(cfg *config.Config) (*notify.Service, error) {
	links := wiki.NewURLBuilder(cfg.Wiki)
	rights := wiki.NewRightsChecker(cfg.GroupPermissions)

	dispatcher, err := webhook.NewDispatcher(cfg, rights)
	if err != nil {
		return nil, fmt.Errorf("create dispatcher: %w", err)
	}

	return notify.NewService(cfg, format.New(cfg.Details, links), dispatcher), nil
}

// ingestHandler builds the hook listener. The request ID is assigned first so
// every later middleware and the pipeline log with it.
func ingestHandler(logger *slog.Logger, svc *notify.Service, token string) http.Handler {
	mux := http.NewServeMux()
	hhttp.NewHookHandler(svc, token).Register(mux)

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Recover(logger),
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
	)
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	return nil
}
