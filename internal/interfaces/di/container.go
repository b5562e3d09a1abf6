package di

import (
	"io"
	"os"

	"github.com/go-resty/resty/v2"

	"github.com/zshrug/zshrug/internal/application/services"
	"github.com/zshrug/zshrug/internal/infrastructure/build"
	"github.com/zshrug/zshrug/internal/infrastructure/config"
	"github.com/zshrug/zshrug/internal/infrastructure/fetch"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
	"github.com/zshrug/zshrug/internal/infrastructure/process"
	"github.com/zshrug/zshrug/internal/infrastructure/storage"
	"github.com/zshrug/zshrug/internal/interfaces/cli"
)

// Container holds all application dependencies
type Container struct {
	// Configuration
	Env        *config.Environment
	DataDir    string
	ConfigFile string

	// Infrastructure
	Logger   *logging.Logger
	Storage  *storage.Storage
	Executor *process.Executor
	Fetcher  *fetch.Dispatcher
	Builder  *build.ShellRunner

	// Application services
	Installer      *services.Installer
	InstallService *services.InstallService
	ScriptService  *services.ScriptService
	CleanupService *services.CleanupService

	// CLI
	CLIContainer *cli.CLIContainer
}

// NewContainer creates and configures the dependency injection container.
// Flag values in opts take precedence over the environment.
func NewContainer(opts cli.Options) (*Container, error) {
	env, err := config.LoadEnvironment()
	if err != nil {
		return nil, err
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := firstNonEmpty(opts.LogLevel, env.LogLevel)
	if opts.Quiet {
		level = "error"
	}
	logger, err := logging.New(logging.Config{Level: level, Output: stderr})
	if err != nil {
		return nil, err
	}

	c := &Container{Env: env, Logger: logger}
	if err := c.initializeComponents(opts, stderr); err != nil {
		return nil, err
	}
	return c, nil
}

// initializeComponents initializes all components with proper dependencies
func (c *Container) initializeComponents(opts cli.Options, stderr io.Writer) error {
	var err error

	// 1. Resolve locations
	if c.DataDir, err = config.ResolveDataDir(firstNonEmpty(opts.DataDir, c.Env.DataDir)); err != nil {
		return err
	}
	if c.ConfigFile, err = config.ResolveConfigFile(firstNonEmpty(opts.ConfigFile, c.Env.ConfigFile)); err != nil {
		return err
	}

	// 2. Storage root, state file and lock
	if c.Storage, err = storage.Init(c.DataDir, storage.DefaultLayout(), c.Logger); err != nil {
		return err
	}

	// 3. Child processes write to stderr; stdout carries the script
	c.Executor = process.NewExecutorWithStreams(os.Stdin, stderr, stderr)

	client := resty.New().
		SetHeader("User-Agent", "zshrug/"+cli.Version).
		SetLogger(restyLogger{c.Logger})
	c.Fetcher = fetch.NewDispatcher(fetch.NewGitFetcher(c.Executor), fetch.NewURLFetcher(client))
	c.Builder = build.NewShellRunner(c.Env.BuildShell, c.Executor)

	// 4. Application services
	state := c.Storage.State()
	c.Installer = services.NewInstaller(state, c.Storage, c.Fetcher, c.Builder, c.Logger)
	c.InstallService = services.NewInstallService(state, c.Storage.Lock(), c.Storage, c.Installer, c.Logger)
	c.ScriptService = services.NewScriptService(c.Storage, c.Logger)
	c.CleanupService = services.NewCleanupService(state, c.Storage.Lock(), c.Storage.PluginsDir(), c.Logger)

	c.CLIContainer = &cli.CLIContainer{
		Logger:     c.Logger,
		Storage:    c.Storage,
		ConfigFile: c.ConfigFile,
		Installs:   c.InstallService,
		Scripts:    c.ScriptService,
		Cleanup:    c.CleanupService,
	}

	c.Logger.Debug("container initialized")
	return nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Factory adapts NewContainer to cli.ContainerFactory
func Factory(opts cli.Options) (*cli.CLIContainer, error) {
	c, err := NewContainer(opts)
	if err != nil {
		return nil, err
	}
	return c.GetCLIContainer(), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
