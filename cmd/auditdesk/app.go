package main

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"auditdesk/internal/core"
	"auditdesk/internal/platform/config"
	"auditdesk/internal/platform/logging"
)

const serviceName = "auditdesk"

// application carries the process hooks commands are built from.
type application struct {
	loadConfig func() (config.Config, error)
	newLogger  func(level, format string) (*zap.Logger, error)
	listen     func(network, address string) (net.Listener, error)
	// onListen is told the bound address once the server accepts connections.
	onListen func(net.Addr)
}

func newApplication() *application {
	return &application{
		loadConfig: config.Load,
		newLogger:  logging.New,
		listen:     net.Listen,
	}
}

func newRootCommand(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Retail audit data service",
		Long:          "auditdesk serves audits, exceptions, KPIs and stores over HTTP and exports them as report artifacts. Settings come from AUDITDESK_* environment variables.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(app), newDumpCommand(app), newExportCommand(app))
	return root
}

// setup loads configuration and builds the process logger.
func (a *application) setup() (config.Config, *zap.Logger, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := a.newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// openService opens the configured store, seeds it and wraps it in the data
// service. The returned close function releases the store.
func openService(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...core.Option) (*core.Service, func() error, error) {
	store, err := core.OpenPersistentStore(core.StorageConfig{
		Driver:      core.StorageDriver(cfg.StorageDriver),
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	}, core.NewDefaultRulesEngine())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}
	closeStore := func() error { return core.CloseStore(store) }

	fx, err := core.LoadFixtures(cfg.FixturesPath)
	if err != nil {
		return nil, nil, errors.Join(err, closeStore())
	}
	seeded, err := core.Seed(ctx, store, fx)
	if err != nil {
		return nil, nil, errors.Join(err, closeStore())
	}
	logger.Info("store ready",
		zap.String("driver", cfg.StorageDriver),
		zap.Bool("seeded", seeded),
		zap.Float64("latency_scale", cfg.LatencyScale))

	opts = append([]core.Option{
		core.WithLogger(logger.Named("service")),
		core.WithLatency(core.DefaultLatency().Scale(cfg.LatencyScale)),
	}, opts...)
	return core.NewService(store, opts...), closeStore, nil
}
