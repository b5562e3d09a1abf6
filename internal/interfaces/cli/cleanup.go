package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
)

// NewCleanupCommand creates the command that removes plugins no longer configured
func NewCleanupCommand(container func() *CLIContainer) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove installed plugins that are no longer configured",
		Example: `  # Remove plugins dropped from the config
  zshrug cleanup

  # Remove every installed plugin
  zshrug cleanup --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := container()

			var specs []plugindomain.Spec
			if !all {
				var err error
				if specs, err = c.LoadPlugins(); err != nil {
					return err
				}
			}

			removed, err := c.Cleanup.Cleanup(specs, all)
			c.Logger.Info("cleanup finished", zap.Int("removed", len(removed)))
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "remove every installed plugin")
	return cmd
}
