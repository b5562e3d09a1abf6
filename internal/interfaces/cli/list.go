package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zshrug/zshrug/internal/application/services"
	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
)

// NewListCommand creates the command that shows every configured plugin
func NewListCommand(container func() *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured plugins with their install state",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := container()

			specs, err := c.LoadPlugins()
			if err != nil {
				return err
			}

			statuses, err := c.Installs.Status(specs)
			if err != nil {
				return err
			}

			renderList(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
}

func renderList(out io.Writer, statuses []services.PluginStatus) {
	r := lipgloss.NewRenderer(out)
	name := r.NewStyle().Bold(true)
	dim := r.NewStyle().Foreground(lipgloss.Color("240"))
	states := map[plugindomain.InstallState]lipgloss.Style{
		plugindomain.StateBuilt:         r.NewStyle().Foreground(lipgloss.Color("2")),
		plugindomain.StateDownloaded:    r.NewStyle().Foreground(lipgloss.Color("3")),
		plugindomain.StateNotDownloaded: r.NewStyle().Foreground(lipgloss.Color("1")),
	}

	if len(statuses) == 0 {
		fmt.Fprintln(out, dim.Render("no plugins configured"))
		return
	}

	for _, status := range statuses {
		state := status.State.String()
		if status.Spec.IsLocal() {
			state = "local"
		}
		fmt.Fprintf(out, "%s %s %s\n",
			name.Render(status.Spec.Name),
			states[status.State].Render(fmt.Sprintf("[%s]", state)),
			dim.Render(status.Dir),
		)
	}
}
