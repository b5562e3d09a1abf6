package config

import (
	"fmt"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
)

// EnvPrefix is prepended to every variable read by LoadEnvironment
const EnvPrefix = "ZSHRUG"

// Environment holds the process configuration read from ZSHRUG_* variables.
type Environment struct {
	DataDir    string `split_words:"true"`
	ConfigFile string `split_words:"true"`
	LogLevel   string `split_words:"true" default:"info"`
	BuildShell string `split_words:"true" default:"sh"`
}

// xdgDirs are the base directories from the XDG spec, read without prefix
type xdgDirs struct {
	DataHome   string `envconfig:"XDG_DATA_HOME"`
	ConfigHome string `envconfig:"XDG_CONFIG_HOME"`
}

// LoadEnvironment loads configuration from environment variables.
func LoadEnvironment() (*Environment, error) {
	var env Environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("couldn't read environment: %w", err)
	}
	return &env, nil
}

// ResolveDataDir returns the storage root: an explicit directory,
// else $XDG_DATA_HOME/zshrug, else ~/.local/share/zshrug.
func ResolveDataDir(explicit string) (string, error) {
	if explicit != "" {
		return ExpandPath(explicit)
	}

	xdg, err := loadXDG()
	if err != nil {
		return "", err
	}
	if xdg.DataHome != "" {
		return filepath.Join(xdg.DataHome, "zshrug"), nil
	}
	return ExpandPath(filepath.Join("~", ".local", "share", "zshrug"))
}

// ResolveConfigFile returns the plugin configuration path: an explicit file,
// else $XDG_CONFIG_HOME/zshrug/plugins.yaml, else ~/.config/zshrug/plugins.yaml.
func ResolveConfigFile(explicit string) (string, error) {
	if explicit != "" {
		return ExpandPath(explicit)
	}

	xdg, err := loadXDG()
	if err != nil {
		return "", err
	}
	if xdg.ConfigHome != "" {
		return filepath.Join(xdg.ConfigHome, "zshrug", "plugins.yaml"), nil
	}
	return ExpandPath(filepath.Join("~", ".config", "zshrug", "plugins.yaml"))
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("couldn't expand path '%s': %w", path, err)
	}
	return expanded, nil
}

func loadXDG() (*xdgDirs, error) {
	var xdg xdgDirs
	if err := envconfig.Process("", &xdg); err != nil {
		return nil, fmt.Errorf("couldn't read environment: %w", err)
	}
	return &xdg, nil
}
