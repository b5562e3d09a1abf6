package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStorageCommand creates the command that prints the storage directory
func NewStorageCommand(container func() *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "storage",
		Short: "Print the directory where plugins are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), container().Storage.Root())
			return err
		},
	}
}
