package recording

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader loads and optionally hot-reloads the prompt set from YAML files.
// With an empty directory path it serves the built-in default set.
type Loader struct {
	dir string

	mu      sync.RWMutex
	prompts []Prompt
}

type promptFile struct {
	Prompts []Prompt `yaml:"prompts"`
}

// NewLoader creates a prompt loader for the given directory.
func NewLoader(dir string) *Loader {
	return &Loader{
		dir:     dir,
		prompts: DefaultPrompts(),
	}
}

// LoadAll loads prompts from all .yaml and .yml files in the configured
// directory, in file-name order. A loader without a directory keeps the
// built-in defaults.
func (l *Loader) LoadAll() ([]Prompt, error) {
	if l.dir == "" {
		return l.Prompts(), nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read prompts dir %q: %w", l.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var prompts []Prompt
	for _, name := range names {
		path := filepath.Join(l.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", path, err)
		}
		var pf promptFile
		if err := yaml.Unmarshal(data, &pf); err != nil {
			return nil, fmt.Errorf("parse %q: %w", path, err)
		}
		prompts = append(prompts, pf.Prompts...)
	}

	if err := Validate(prompts); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.prompts = prompts
	l.mu.Unlock()

	return prompts, nil
}

// Prompts returns the current prompt set.
func (l *Loader) Prompts() []Prompt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Prompt, len(l.prompts))
	copy(out, l.prompts)
	return out
}

// Count returns the number of prompts in the current set.
func (l *Loader) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.prompts)
}

// WatchAndReload watches the prompts directory and reloads on changes.
// Blocks until the done channel is closed. A reload that fails validation
// keeps the previous set.
func (l *Loader) WatchAndReload(done <-chan struct{}) error {
	if l.dir == "" {
		<-done
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", l.dir, err)
	}

	for {
		select {
		case <-done:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				ext := filepath.Ext(event.Name)
				if ext == ".yaml" || ext == ".yml" {
					if _, err := l.LoadAll(); err != nil {
						slog.Warn("prompt reload failed, keeping previous set",
							slog.String("file", event.Name),
							slog.String("error", err.Error()))
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}
