package appinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// Profile is one [ProfileN] entry of a profiles.ini.
type Profile struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	IsRelative bool   `json:"isRelative"`
	Default    bool   `json:"default"`
}

// ListProfiles reads <root>/profiles.ini. Relative paths are resolved
// against root. A profile is marked default when its section says so or when
// an [Install*] section points at it.
func ListProfiles(root string) ([]Profile, error) {
	path := filepath.Join(root, "profiles.ini")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("APP_INI_PROFILES: %w", err)
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("APP_INI_PARSE: %s: %w", path, err)
	}
	installDefaults := map[string]struct{}{}
	for _, sec := range cfg.Sections() {
		if strings.HasPrefix(sec.Name(), "Install") {
			if d := strings.TrimSpace(sec.Key("Default").String()); d != "" {
				installDefaults[d] = struct{}{}
			}
		}
	}
	out := []Profile{}
	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "Profile") || !sec.HasKey("Path") {
			continue
		}
		raw := strings.TrimSpace(sec.Key("Path").String())
		rel := sec.Key("IsRelative").MustBool(true)
		_, installDefault := installDefaults[raw]
		p := Profile{
			Name:       strings.TrimSpace(sec.Key("Name").String()),
			Path:       raw,
			IsRelative: rel,
			Default:    sec.Key("Default").MustBool(false) || installDefault,
		}
		if rel {
			p.Path = filepath.Join(root, filepath.FromSlash(raw))
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
