package services

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	plugindomain "github.com/zshrug/zshrug/internal/core/domain/plugin"
	pluginports "github.com/zshrug/zshrug/internal/core/ports/plugin"
	"github.com/zshrug/zshrug/internal/infrastructure/logging"
)

// ScriptService renders the zsh code that loads installed plugins
type ScriptService struct {
	dirs   pluginports.DirResolver
	logger *logging.Logger
}

// NewScriptService creates a new script service
func NewScriptService(dirs pluginports.DirResolver, logger *logging.Logger) *ScriptService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ScriptService{dirs: dirs, logger: logger}
}

// Generate writes the loading script for specs to w. A plugin whose
// directory can't be read is reported and left out of the script.
func (s *ScriptService) Generate(w io.Writer, specs []plugindomain.Spec) error {
	var b strings.Builder
	for _, spec := range specs {
		dir := s.dirs.PluginDir(spec)
		files, err := s.loadFiles(spec, dir)
		if err != nil {
			s.logger.ErrorChain(fmt.Errorf("couldn't load plugin %s: %w", spec, err), zap.String("dir", dir))
			continue
		}
		writePlugin(&b, spec, dir, files)
	}
	b.WriteString("unset zshrug_plugin_dir\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writePlugin(b *strings.Builder, spec plugindomain.Spec, dir string, files []string) {
	fmt.Fprintf(b, "### plugin %s\n", spec)
	if spec.When != "" {
		fmt.Fprintf(b, "if %s; then\n", spec.When)
	}
	fmt.Fprintf(b, "zshrug_plugin_dir=%s\n", quote(dir))

	for _, list := range []struct {
		name    string
		entries []string
	}{
		{"path", spec.Path},
		{"fpath", spec.FPath},
		{"manpath", spec.ManPath},
	} {
		if len(list.entries) == 0 {
			continue
		}
		quoted := make([]string, 0, len(list.entries))
		for _, entry := range list.entries {
			quoted = append(quoted, quote(resolve(dir, entry)))
		}
		fmt.Fprintf(b, "%s+=(%s)\n", list.name, strings.Join(quoted, " "))
	}
	b.WriteString("\n")

	if spec.BeforeLoad != "" {
		writeBlock(b, "before_load", spec.BeforeLoad)
	}

	var load strings.Builder
	for _, file := range files {
		fmt.Fprintf(&load, "source %s\n", quote(file))
	}
	writeBlock(b, "load", load.String())

	if spec.AfterLoad != "" {
		writeBlock(b, "after_load", spec.AfterLoad)
	}

	if spec.When != "" {
		b.WriteString("fi\n\n")
	}
}

func writeBlock(b *strings.Builder, name, body string) {
	fmt.Fprintf(b, "### %s\n", name)
	b.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "### end of %s\n\n", name)
}

// loadFiles returns the files to source, in pattern order and then in
// sorted path order within one pattern. Each file appears at most once.
func (s *ScriptService) loadFiles(spec plugindomain.Spec, dir string) ([]string, error) {
	all, err := walkFiles(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]bool)
	for _, pattern := range spec.LoadPatterns() {
		for _, rel := range all {
			if seen[rel] {
				continue
			}
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				return nil, fmt.Errorf("invalid load pattern '%s': %w", pattern, err)
			}
			if !matched {
				continue
			}
			ignored, err := matchesAny(spec.Ignore, rel)
			if err != nil {
				return nil, err
			}
			if ignored {
				continue
			}
			seen[rel] = true
			files = append(files, filepath.Join(dir, filepath.FromSlash(rel)))
		}
	}
	return files, nil
}

// walkFiles lists every non-directory under dir as a sorted slash path
// relative to dir. Git metadata is skipped.
func walkFiles(dir string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" && p != dir {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		mu.Lock()
		files = append(files, filepath.ToSlash(rel))
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func matchesAny(patterns []string, rel string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("invalid ignore pattern '%s': %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

func resolve(dir, entry string) string {
	if filepath.IsAbs(entry) {
		return entry
	}
	return filepath.Join(dir, entry)
}

// quote single-quotes s for zsh
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
