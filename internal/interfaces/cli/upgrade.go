package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewUpgradeCommand creates the command that fetches and builds every plugin again
func NewUpgradeCommand(container func() *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Fetch and build every configured plugin again",
		Long: `Fetch and build every managed plugin again, replacing what is installed.
A plugin that fails is left uninstalled and retried by the next 'zshrug init'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := container()

			specs, err := c.LoadPlugins()
			if err != nil {
				return err
			}

			ready, err := c.Installs.Upgrade(cmd.Context(), specs)
			if err != nil {
				return err
			}

			c.Logger.Info("upgrade finished",
				zap.Int("upgraded", len(ready)),
				zap.Int("failed", len(specs)-len(ready)),
			)
			return nil
		},
	}
}
