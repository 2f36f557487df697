package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docresult-viewer/internal/core/usecase"
)

func newExportCmd(deps *Dependencies) *cobra.Command {
	var (
		format   string
		original bool
	)

	cmd := &cobra.Command{
		Use:   "export [file-id]",
		Short: "Export extracted tables to files",
		Long:  `Writes every well-formed table of a result as CSV or XLSX. Malformed tables are skipped.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Exporter == nil {
				return errors.New("exporter not configured")
			}
			exportFormat, err := usecase.ParseExportFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			report, err := deps.Exporter.ExportTables(ctx, args[0], exportFormat)
			for _, path := range report.Paths {
				cmd.Printf("Saved %s\n", path)
			}
			for _, name := range report.Skipped {
				cmd.Printf("Skipped %s (invalid format)\n", name)
			}
			if err != nil {
				return fmt.Errorf("failed to export tables: %w", err)
			}

			if original {
				path, err := deps.Exporter.ExportOriginal(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to export original: %w", err)
				}
				cmd.Printf("Saved %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(usecase.ExportCSV), "Export format: csv or xlsx")
	cmd.Flags().BoolVar(&original, "original", false, "Also export the original file")
	return cmd
}
