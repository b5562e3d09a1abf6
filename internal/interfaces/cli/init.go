package cli

import (
	"github.com/spf13/cobra"
)

// NewInitCommand creates the command that installs plugins and prints the loading script
func NewInitCommand(container func() *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Install missing plugins and print the script that loads them",
		Long: `Install every configured plugin that isn't installed yet, then print zsh code
that loads the plugins to stdout. Plugins that fail to install are reported on
stderr and left out of the script; they are retried by the next shell.`,
		Example: `  # In .zshrc
  eval "$(zshrug init)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := container()

			specs, err := c.LoadPlugins()
			if err != nil {
				return err
			}

			ready, err := c.Installs.EnsureInstalled(cmd.Context(), specs)
			if err != nil {
				return err
			}

			return c.Scripts.Generate(cmd.OutOrStdout(), ready)
		},
	}
}
