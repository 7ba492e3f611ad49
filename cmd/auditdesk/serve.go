package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"auditdesk/internal/adapters/httpapi"
	"auditdesk/internal/adapters/reports"
	"auditdesk/internal/blob"
	"auditdesk/internal/core"
	"auditdesk/internal/platform/config"
	"auditdesk/internal/platform/otel"
)

const readHeaderTimeout = 10 * time.Second

func newServeCommand(app *application) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.serve(cmd.Context())
		},
	}
}

// serve runs the HTTP server and the export worker until ctx is cancelled,
// then drains both within the shutdown timeout.
func (a *application) serve(ctx context.Context) (err error) {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tracer, shutdownTracing, err := openTracer(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if shutdownErr := shutdownTracing(flushCtx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown tracing: %w", shutdownErr))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	svc, closeStore, err := openService(ctx, cfg, logger,
		core.WithMetricsRecorder(recorder),
		core.WithTracer(tracer),
	)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", closeErr))
		}
	}()

	blobStore, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	worker := reports.NewWorker(svc, blobStore,
		reports.WithLogger(logger.Named("exports")),
		reports.WithAuditLogger(reports.NewZapAuditLog(logger)),
	)

	handler := httpapi.NewHandler(svc, httpapi.Options{
		Logger:  logger.Named("http"),
		Exports: worker,
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})
	ln, err := a.listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	server := &http.Server{Handler: handler, ReadHeaderTimeout: readHeaderTimeout}
	logger.Info("http server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("blob_driver", string(blobStore.Driver())))
	if a.onListen != nil {
		a.onListen(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("http server shutting down")
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return worker.Run(gctx, cfg.ShutdownTimeout)
	})
	return g.Wait()
}

// openTracer exports spans over OTLP when an endpoint is configured. Without
// one, spans go to the trace file as JSON lines, or nowhere.
func openTracer(ctx context.Context, cfg config.Config) (core.Tracer, func(context.Context) error, error) {
	if cfg.OTelEndpoint == "" && cfg.TraceFile != "" {
		f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		return core.NewJSONTracer(f), func(context.Context) error { return f.Close() }, nil
	}
	provider, shutdown, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return nil, nil, err
	}
	return core.NewOTelTracer(provider), shutdown, nil
}

func openBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	store, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.BlobDriver),
		FSRoot: cfg.BlobFSRoot,
		S3: blob.S3Config{
			Bucket:    cfg.BlobS3Bucket,
			Region:    cfg.BlobS3Region,
			Endpoint:  cfg.BlobS3Endpoint,
			PathStyle: cfg.BlobS3PathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s blob store: %w", cfg.BlobDriver, err)
	}
	return store, nil
}
