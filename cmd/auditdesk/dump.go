package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"auditdesk/internal/core"
)

const (
	dumpFormatJSON = "json"
	dumpFormatYAML = "yaml"
)

func newDumpCommand(app *application) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump [audits|exceptions|kpis|stores]",
		Short: "Print store contents as JSON or YAML",
		Long:  "dump prints one collection, or every collection in the fixture file layout accepted by AUDITDESK_FIXTURES_PATH.",
		Example: "auditdesk dump stores --format yaml\n" +
			"AUDITDESK_STORAGE_DRIVER=sqlite auditdesk dump > fixtures.json",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := ""
			if len(args) == 1 {
				entity = args[0]
			}
			return app.dump(cmd.Context(), cmd.OutOrStdout(), entity, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", dumpFormatJSON, "output format: json or yaml")
	return cmd
}

func (a *application) dump(ctx context.Context, out io.Writer, entity, format string) error {
	if format != dumpFormatJSON && format != dumpFormatYAML {
		return fmt.Errorf("unsupported format %q", format)
	}
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, closeStore, err := openService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	fx, err := snapshotFixtures(ctx, svc)
	if err != nil {
		return err
	}
	var payload any
	switch entity {
	case "":
		payload = fx
	case "audits":
		payload = fx.Audits
	case "exceptions":
		payload = fx.Exceptions
	case "kpis":
		payload = fx.KPIs
	case "stores":
		payload = fx.Stores
	default:
		return fmt.Errorf("unknown collection %q", entity)
	}
	return encode(out, format, payload)
}

// snapshotFixtures reads every collection through the service.
func snapshotFixtures(ctx context.Context, svc *core.Service) (core.Fixtures, error) {
	var fx core.Fixtures
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fx.Audits, err = svc.ListAudits(gctx)
		return err
	})
	g.Go(func() (err error) {
		fx.Exceptions, err = svc.ListExceptions(gctx)
		return err
	})
	g.Go(func() (err error) {
		fx.KPIs, err = svc.ListKPIs(gctx)
		return err
	})
	g.Go(func() (err error) {
		fx.Stores, err = svc.ListStores(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Fixtures{}, err
	}
	return fx, nil
}

func encode(out io.Writer, format string, payload any) error {
	if format == dumpFormatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
