package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newUploadCmd(deps *Dependencies) *cobra.Command {
	var (
		watch  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a document and show the result",
		Long:  `Uploads a PDF, PNG or JPEG file. With --watch, keeps polling while the backend is still processing.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.Session == nil {
				return errors.New("session not configured")
			}

			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			ctx := cmd.Context()
			out, err := deps.Session.Process(ctx, content, filepath.Base(path))
			if err != nil {
				return err
			}
			if details, ok := deps.Session.Details(); ok && !asJSON {
				cmd.Print(deps.Renderer.Details(details))
			}

			if out.Pending() && watch && deps.Watcher != nil && out.FileID != "" {
				if !asJSON {
					cmd.Print(deps.Renderer.Outcome(out))
				}
				watched, err := deps.Watcher.Watch(ctx, out.FileID)
				if err != nil {
					return fmt.Errorf("watch %s: %w", out.FileID, err)
				}
				out = watched
			}
			return writeOutcome(cmd, deps, out, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll until the backend finishes processing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outcome as JSON")
	return cmd
}
