package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recent files known to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Session == nil {
				return errors.New("session not configured")
			}
			cmd.Print(deps.Renderer.Files(deps.Session.Recent(cmd.Context())))
			return nil
		},
	}
}

func newHealthCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Session == nil {
				return errors.New("session not configured")
			}
			cmd.Print(deps.Renderer.Health(deps.Session.BackendHealth(cmd.Context()), deps.BackendURL))
			return nil
		},
	}
}

func newCategoriesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the document categories the backend can assign",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(deps.Renderer.Categories())
		},
	}
}

func newVersionCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("docviewer version %s\n", deps.Version)
		},
	}
}
