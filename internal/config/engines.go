package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"mozsearch/internal/engine"
)

// ResolveEnginesFile returns the engines file of p, resolved against the
// directory of the config file, or "" when none is set.
func ResolveEnginesFile(configPath string, p ProfileConfig) (string, error) {
	file := strings.TrimSpace(p.Search.EnginesFile)
	if file == "" {
		return "", nil
	}
	expanded, err := ExpandPath(file)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(filepath.Dir(configPath), expanded)
	}
	return filepath.Clean(expanded), nil
}

// LoadEngines merges the inline engines of p with those of its engines
// file. A name defined in both places is rejected.
func LoadEngines(configPath string, p ProfileConfig) (map[string]engine.Spec, error) {
	out := make(map[string]engine.Spec, len(p.Search.Engines))
	for name, fields := range p.Search.Engines {
		out[name] = engine.Spec(fields).Clone()
	}
	path, err := ResolveEnginesFile(configPath, p)
	if err != nil {
		return nil, fmt.Errorf("CFG_ENGINE_FILE: profile %q: %w", p.Name, err)
	}
	if path == "" {
		return out, nil
	}
	fromFile, err := ReadEnginesFile(path)
	if err != nil {
		return nil, err
	}
	var dups []string
	for name, spec := range fromFile {
		if _, ok := out[name]; ok {
			dups = append(dups, name)
			continue
		}
		out[name] = spec
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, fmt.Errorf("CFG_ENGINE_DUPLICATE: profile %q defines %s both inline and in %s", p.Name, strings.Join(dups, ", "), path)
	}
	return out, nil
}

// ReadEnginesFile decodes a map of engine name to definition. The format is
// chosen by extension: .toml, .json/.jsonc/.hujson, or .yaml/.yml.
func ReadEnginesFile(path string) (map[string]engine.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("CFG_ENGINE_FILE: %w", err)
	}
	raw := map[string]map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("CFG_ENGINE_PARSE: %s: %w", path, err)
		}
	case ".json", ".jsonc", ".hujson":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("CFG_ENGINE_PARSE: %s: invalid JSONC: %w", path, err)
		}
		dec := json.NewDecoder(bytes.NewReader(standardized))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("CFG_ENGINE_PARSE: %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("CFG_ENGINE_PARSE: %s: %w", path, err)
		}
		for _, fields := range raw {
			for k, v := range fields {
				fields[k] = stringKeys(v)
			}
		}
	default:
		return nil, fmt.Errorf("CFG_ENGINE_FILE: unsupported engines file extension %q", ext)
	}
	out := make(map[string]engine.Spec, len(raw))
	for name, fields := range raw {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("CFG_ENGINE_NAME: %s defines an engine with an empty name", path)
		}
		if fields == nil {
			fields = map[string]any{}
		}
		out[name] = engine.Spec(fields)
	}
	return out, nil
}

// stringKeys rewrites YAML mappings with non-string keys, such as icon sizes
// written as bare integers, into map[string]any.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, x := range t {
			t[k] = stringKeys(x)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[fmt.Sprint(k)] = stringKeys(x)
		}
		return out
	case []any:
		for i := range t {
			t[i] = stringKeys(t[i])
		}
		return t
	default:
		return v
	}
}
