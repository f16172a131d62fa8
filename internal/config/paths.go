package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactName is the settings file the browser reads from a profile.
const ArtifactName = "search.json.mozlz4"

func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mozsearch", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mozsearch", "config.toml")
	}
	return filepath.Join(home, ".config", "mozsearch", "config.toml")
}

// DefaultProfileRoot is where profiles.ini is looked up by default.
func DefaultProfileRoot() string {
	root, err := ExpandPath(defaultProfileRoot)
	if err != nil {
		return defaultProfileRoot
	}
	return root
}

func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}
	return path, nil
}

func ResolveStorageRoot(cfg Config) (string, error) {
	expanded, err := ExpandPath(cfg.Storage.Root)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}

// ResolveProfileDir expands and cleans a profile path.
func ResolveProfileDir(p ProfileConfig) (string, error) {
	expanded, err := ExpandPath(p.Path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}

// ResolvePackage expands the application package path, or returns "" when
// none is configured.
func ResolvePackage(cfg Config) (string, error) {
	if strings.TrimSpace(cfg.Application.Package) == "" {
		return "", nil
	}
	expanded, err := ExpandPath(cfg.Application.Package)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}

// ArtifactPath is the settings file written for a profile.
func ArtifactPath(p ProfileConfig) (string, error) {
	dir, err := ResolveProfileDir(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ArtifactName), nil
}
