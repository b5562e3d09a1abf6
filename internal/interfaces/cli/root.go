package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/zshrug/zshrug/internal/application/services"
	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/config"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
	"github.com/zshrug/zshrug/internal/infrastructure/storage"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Options are the global flags. Empty values fall back to the environment.
type Options struct {
	ConfigFile string
	DataDir    string
	LogLevel   string
	Quiet      bool
	Stderr     io.Writer
}

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	Logger     *logging.Logger
	Storage    *storage.Storage
	ConfigFile string
	Installs   *services.InstallService
	Scripts    *services.ScriptService
	Cleanup    *services.CleanupService
}

// LoadPlugins reads the configured plugin list
func (c *CLIContainer) LoadPlugins() ([]plugindomain.Spec, error) {
	return config.LoadPlugins(c.ConfigFile)
}

// ContainerFactory builds the command dependencies once flags are parsed
type ContainerFactory func(opts Options) (*CLIContainer, error)

// NewRootCommand represents the base command when called without any subcommands
func NewRootCommand(factory ContainerFactory) *cobra.Command {
	var opts Options
	var container *CLIContainer

	rootCmd := &cobra.Command{
		Use:   "zshrug",
		Short: "zshrug - a fast zsh plugin manager",
		Long: `zshrug installs the zsh plugins listed in its configuration file and prints
the code that loads them. Add this to your .zshrc:

  eval "$(zshrug init)"

Plugins are fetched and built once, then reused by every new shell.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Stderr = cmd.ErrOrStderr()
			c, err := factory(opts)
			if err != nil {
				return err
			}
			container = c
			return nil
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "plugin config file (default is $XDG_CONFIG_HOME/zshrug/plugins.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "storage directory (default is $XDG_DATA_HOME/zshrug)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "only log errors")

	get := func() *CLIContainer { return container }
	rootCmd.AddCommand(NewInitCommand(get))
	rootCmd.AddCommand(NewListCommand(get))
	rootCmd.AddCommand(NewUpgradeCommand(get))
	rootCmd.AddCommand(NewStorageCommand(get))
	rootCmd.AddCommand(NewCleanupCommand(get))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command with args taken from the process
func Execute(ctx context.Context, factory ContainerFactory) error {
	return NewRootCommand(factory).ExecuteContext(ctx)
}
