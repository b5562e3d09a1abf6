package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
)

func TestLoadEnvironment_Defaults(t *testing.T) {
	for _, key := range []string{"ZSHRUG_DATA_DIR", "ZSHRUG_CONFIG_FILE", "ZSHRUG_LOG_LEVEL", "ZSHRUG_BUILD_SHELL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	env, err := LoadEnvironment()
	require.NoError(t, err)

	assert.Equal(t, "", env.DataDir)
	assert.Equal(t, "info", env.LogLevel)
	assert.Equal(t, "sh", env.BuildShell)
}

func TestLoadEnvironment_PrefixedVariables(t *testing.T) {
	t.Setenv("ZSHRUG_DATA_DIR", "/srv/zshrug")
	t.Setenv("ZSHRUG_CONFIG_FILE", "/etc/zshrug.toml")
	t.Setenv("ZSHRUG_LOG_LEVEL", "debug")
	t.Setenv("ZSHRUG_BUILD_SHELL", "bash")
	t.Setenv("LOG_LEVEL", "error")

	env, err := LoadEnvironment()
	require.NoError(t, err)

	assert.Equal(t, &Environment{
		DataDir:    "/srv/zshrug",
		ConfigFile: "/etc/zshrug.toml",
		LogLevel:   "debug",
		BuildShell: "bash",
	}, env)
}

func TestResolveDataDir(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	t.Run("explicit", func(t *testing.T) {
		dir, err := ResolveDataDir("~/plugins")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "plugins"), dir)
	})

	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "/xdg/data")
		dir, err := ResolveDataDir("")
		require.NoError(t, err)
		assert.Equal(t, "/xdg/data/zshrug", dir)
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", "")
		dir, err := ResolveDataDir("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".local", "share", "zshrug"), dir)
	})
}

func TestResolveConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	path, err := ResolveConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, "/xdg/config/zshrug/plugins.yaml", path)

	path, err = ResolveConfigFile("/tmp/p.toml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/p.toml", path)
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path        string
		expected    Format
		expectError bool
	}{
		{path: "plugins.yaml", expected: FormatYAML},
		{path: "plugins.YML", expected: FormatYAML},
		{path: "plugins.toml", expected: FormatTOML},
		{path: "plugins.json", expectError: true},
		{path: "plugins", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, err := FormatOf(tt.path)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestParsePlugins_YAML(t *testing.T) {
	data := []byte(`
plugins:
  - name: zsh-users/zsh-autosuggestions
  - name: https://example.com/plugin.zsh
    from: url
    load: plugin.zsh
  - name: lukechilds/zsh-nvm
    build: make
    when: "[[ -n $NVM ]]"
    before_load: export NVM_LAZY=1
    fpath:
      - functions
      - completions
    ignore: ["test/**"]
`)

	specs, err := ParsePlugins(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, specs, 3)

	assert.Equal(t, plugindomain.Spec{From: plugindomain.SourceGit, Name: "zsh-users/zsh-autosuggestions"}, specs[0])
	assert.Equal(t, plugindomain.SourceURL, specs[1].From)
	assert.Equal(t, []string{"plugin.zsh"}, specs[1].Load)
	assert.Equal(t, plugindomain.Spec{
		From:       plugindomain.SourceGit,
		Name:       "lukechilds/zsh-nvm",
		Build:      "make",
		When:       "[[ -n $NVM ]]",
		BeforeLoad: "export NVM_LAZY=1",
		FPath:      []string{"functions", "completions"},
		Ignore:     []string{"test/**"},
	}, specs[2])
}

func TestParsePlugins_TOML(t *testing.T) {
	data := []byte(`
[[plugins]]
name = "romkatv/powerlevel10k"
load = ["powerlevel10k.zsh-theme"]

[[plugins]]
name = "~/src/my-plugin"
from = "local"
path = "bin"
`)

	specs, err := ParsePlugins(data, FormatTOML)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, []string{"powerlevel10k.zsh-theme"}, specs[0].Load)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "src", "my-plugin"), specs[1].Name)
	assert.Equal(t, []string{"bin"}, specs[1].Path)
}

func TestParsePlugins_ReportsEveryProblem(t *testing.T) {
	data := []byte(`
plugins:
  - name: ""
  - name: a
    from: svn
  - name: b
    load: "[unclosed"
  - name: c
    fpath: 3
`)

	_, err := ParsePlugins(data, FormatYAML)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "plugin #1: name is required")
	assert.Contains(t, msg, `plugin "a"`)
	assert.Contains(t, msg, "unknown plugin source")
	assert.Contains(t, msg, "invalid glob pattern '[unclosed'")
	assert.Contains(t, msg, "fpath: expected a string or a list of strings")
}

func TestParsePlugins_UnknownFieldRejected(t *testing.T) {
	_, err := ParsePlugins([]byte("plugins:\n  - name: a\n    sauce: git\n"), FormatYAML)
	assert.Error(t, err)

	_, err = ParsePlugins([]byte("[[plugins]]\nname = \"a\"\nsauce = \"git\"\n"), FormatTOML)
	assert.Error(t, err)
}

func TestLoadPlugins_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plugins:\n  - name: a\n"), 0644))

	specs, err := LoadPlugins(path)
	require.NoError(t, err)
	assert.Len(t, specs, 1)

	_, err = LoadPlugins(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
