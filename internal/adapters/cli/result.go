package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newResultCmd(deps *Dependencies) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "result [file-id]",
		Short: "Show the stored result of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Session == nil {
				return errors.New("session not configured")
			}
			out := deps.Session.Load(cmd.Context(), args[0])
			return writeOutcome(cmd, deps, out, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outcome as JSON")
	return cmd
}

func newDownloadCmd(deps *Dependencies) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download [file-id]",
		Short: "Download the original file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Session == nil {
				return errors.New("session not configured")
			}

			ctx := cmd.Context()
			out := deps.Session.Load(ctx, args[0])
			if !out.Succeeded() {
				cmd.Print(deps.Renderer.Outcome(out))
				return errProcessingFailed
			}

			content, filename, err := deps.Session.DownloadOriginal(ctx)
			if err != nil {
				return fmt.Errorf("failed to download file: %w", err)
			}
			if filename == "" {
				filename = args[0]
			}
			target := filepath.Join(outputDir, filepath.Base(filename))
			if err := os.WriteFile(target, content, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			cmd.Printf("Saved %s (%d bytes)\n", target, len(content))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory to write the file to")
	return cmd
}
