// Package cli is the terminal front end of the viewer.
package cli

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
	"github.com/kirillkom/docresult-viewer/internal/core/ports"
	"github.com/kirillkom/docresult-viewer/internal/core/usecase"
)

// errProcessingFailed makes the process exit non-zero after a failure
// outcome has been rendered.
var errProcessingFailed = errors.New("document processing failed")

type Dependencies struct {
	Session    *usecase.Session
	Watcher    ports.ResultWatcher
	Exporter   *usecase.Exporter
	Renderer   *Renderer
	BackendURL string
	Version    string
}

func NewRootCommand(deps Dependencies) *cobra.Command {
	if deps.Renderer == nil {
		deps.Renderer = NewRenderer(nil)
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	root := &cobra.Command{
		Use:           "docviewer",
		Short:         "Upload documents for processing and view extraction results",
		Long:          `Uploads documents to the processing backend, then shows the category, extracted entities, dates and tables.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newUploadCmd(&deps),
		newResultCmd(&deps),
		newDownloadCmd(&deps),
		newListCmd(&deps),
		newHealthCmd(&deps),
		newExportCmd(&deps),
		newCategoriesCmd(&deps),
		newVersionCmd(&deps),
	)
	return root
}

// writeOutcome prints the outcome and reports failures as an error.
func writeOutcome(cmd *cobra.Command, deps *Dependencies, out outcome.Outcome, asJSON bool) error {
	if asJSON {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		cmd.Print(deps.Renderer.Outcome(out))
	}
	if out.Classification.IsFailure() {
		return errProcessingFailed
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
