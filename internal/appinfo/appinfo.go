// Package appinfo reads facts about an installed browser package and its
// profiles from the INI files it ships.
package appinfo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// DefaultMaxDepth bounds the search for application.ini below <package>/lib.
const DefaultMaxDepth = 3

const applicationINI = "application.ini"

var errFound = errors.New("found")

// Info describes the resolved application.
type Info struct {
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Source   string `json:"source,omitempty"`
	Fallback bool   `json:"fallback"`
}

// Resolver finds the application name for hashing.
type Resolver struct {
	StaticName string
	MaxDepth   int
}

// Resolve returns the application name read from the first application.ini
// under <pkg>/lib, or the static name when pkg is empty or nothing usable is
// found. Only malformed INI files are reported as errors.
func (r Resolver) Resolve(pkg string) (Info, error) {
	fallback := Info{Name: r.StaticName, Fallback: true}
	if strings.TrimSpace(pkg) == "" {
		return fallback, nil
	}
	path, err := r.find(filepath.Join(pkg, "lib"))
	if err != nil {
		return Info{}, err
	}
	if path == "" {
		return fallback, nil
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return Info{}, fmt.Errorf("APP_INI_PARSE: %s: %w", path, err)
	}
	app := cfg.Section("App")
	name := strings.TrimSpace(app.Key("Name").String())
	if name == "" {
		fallback.Source = path
		fallback.Version = strings.TrimSpace(app.Key("Version").String())
		return fallback, nil
	}
	return Info{
		Name:    name,
		Version: strings.TrimSpace(app.Key("Version").String()),
		Source:  path,
	}, nil
}

func (r Resolver) find(root string) (string, error) {
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return "", nil
	}
	base := strings.Count(filepath.Clean(root), string(filepath.Separator))
	var match string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		depth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - base
		if d.IsDir() {
			if depth >= maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == applicationINI && d.Type().IsRegular() {
			match = path
			return errFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("APP_INI_SEARCH: %w", err)
	}
	return match, nil
}
