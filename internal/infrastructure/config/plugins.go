package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
)

// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Format is the encoding of a plugin configuration file
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: '%s' (expected .yaml, .yml or .toml)", ErrUnsupportedFormat, path)
	}
}

type rawFile struct {
	Plugins []rawPlugin `yaml:"plugins" toml:"plugins"`
}

// rawPlugin mirrors one plugin entry. List fields accept a single string too.
type rawPlugin struct {
	Name       string `yaml:"name" toml:"name"`
	From       string `yaml:"from" toml:"from"`
	Build      string `yaml:"build" toml:"build"`
	When       string `yaml:"when" toml:"when"`
	BeforeLoad string `yaml:"before_load" toml:"before_load"`
	AfterLoad  string `yaml:"after_load" toml:"after_load"`
	Load       any    `yaml:"load" toml:"load"`
	Ignore     any    `yaml:"ignore" toml:"ignore"`
	Path       any    `yaml:"path" toml:"path"`
	FPath      any    `yaml:"fpath" toml:"fpath"`
	ManPath    any    `yaml:"manpath" toml:"manpath"`
}

// LoadPlugins reads and validates the plugin configuration at path
func LoadPlugins(path string) ([]plugindomain.Spec, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read config file '%s': %w", path, err)
	}

	specs, err := ParsePlugins(data, format)
	if err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
	}
	return specs, nil
}

// ParsePlugins decodes data and converts every entry into a Spec. All
// problems found are reported together.
func ParsePlugins(data []byte, format Format) ([]plugindomain.Spec, error) {
	var raw rawFile
	switch format {
	case FormatYAML:
		if err := yaml.UnmarshalWithOptions(data, &raw, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("couldn't decode yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("couldn't decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	var result *multierror.Error
	specs := make([]plugindomain.Spec, 0, len(raw.Plugins))
	for i, rp := range raw.Plugins {
		spec, errs := rp.toSpec()
		if errs != nil {
			label := fmt.Sprintf("plugin #%d", i+1)
			if rp.Name != "" {
				label = fmt.Sprintf("plugin %q", rp.Name)
			}
			for _, err := range errs.Errors {
				result = multierror.Append(result, fmt.Errorf("%s: %w", label, err))
			}
			continue
		}
		specs = append(specs, spec)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return specs, nil
}

func (rp rawPlugin) toSpec() (plugindomain.Spec, *multierror.Error) {
	var result *multierror.Error

	from, err := plugindomain.ParseSourceKind(rp.From)
	if err != nil {
		result = multierror.Append(result, err)
	}

	name := strings.TrimSpace(rp.Name)
	if name == "" {
		result = multierror.Append(result, errors.New("name is required"))
	}
	if from == plugindomain.SourceLocal && name != "" {
		if name, err = ExpandPath(name); err != nil {
			result = multierror.Append(result, err)
		}
	}

	lists := make(map[string][]string, 5)
	for _, field := range []struct {
		key   string
		value any
		glob  bool
	}{
		{"load", rp.Load, true},
		{"ignore", rp.Ignore, true},
		{"path", rp.Path, false},
		{"fpath", rp.FPath, false},
		{"manpath", rp.ManPath, false},
	} {
		values, err := stringList(field.value)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", field.key, err))
			continue
		}
		if field.glob {
			for _, pattern := range values {
				if !doublestar.ValidatePattern(pattern) {
					result = multierror.Append(result, fmt.Errorf("%s: invalid glob pattern '%s'", field.key, pattern))
				}
			}
		}
		lists[field.key] = values
	}

	if result != nil {
		return plugindomain.Spec{}, result
	}

	return plugindomain.Spec{
		When:       rp.When,
		From:       from,
		Name:       name,
		Build:      rp.Build,
		BeforeLoad: rp.BeforeLoad,
		AfterLoad:  rp.AfterLoad,
		Load:       lists["load"],
		Ignore:     lists["ignore"],
		Path:       lists["path"],
		FPath:      lists["fpath"],
		ManPath:    lists["manpath"],
	}, nil
}

// stringList accepts nothing, one string or a list of strings
func stringList(v any) ([]string, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected a string, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or a list of strings, got %T", v)
	}
}
