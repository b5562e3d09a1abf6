package cli

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the command that prints the zsh completion script
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "completion",
		Short:   "Print the zsh completion script",
		Example: `  zshrug completion > "${fpath[1]}/_zshrug"`,
		Args:    cobra.NoArgs,
		// skips building the container
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		},
	}
}
