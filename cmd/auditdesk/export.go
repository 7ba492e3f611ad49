package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"auditdesk/internal/adapters/reports"
)

func newExportCommand(app *application) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:     "export <audits|exceptions|kpis|stores>",
		Short:   "Render a report as CSV or JSON",
		Example: "auditdesk export exceptions --format csv --output exceptions.csv",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.export(cmd.Context(), cmd.OutOrStdout(), reports.Report(args[0]), reports.Format(format), output)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(reports.FormatCSV), "artifact format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func (a *application) export(ctx context.Context, out io.Writer, report reports.Report, format reports.Format, output string) error {
	if !reports.ValidReport(report) {
		return fmt.Errorf("unknown report %q", report)
	}
	if format != reports.FormatCSV && format != reports.FormatJSON {
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

	ds, err := reports.Load(ctx, svc, report)
	if err != nil {
		return err
	}
	payload, err := ds.Render(format)
	if err != nil {
		return err
	}
	if output != "" {
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		return nil
	}
	_, err = out.Write(payload)
	return err
}
