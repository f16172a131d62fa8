package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mozsearch/internal/settings"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if _, ok := FindProfile(cfg, "default"); !ok {
		t.Fatalf("expected default profile")
	}
}

func TestEnsureCreatesAndLoadsConfig(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "config.toml")
	cfg, err := Ensure(path)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if cfg.Version != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, cfg.Version)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadParsesProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `version = 1

[application]
name = "LibreWolf"
min_version = "128.0"

[logging]
level = "DEBUG"

[[profiles]]
name = "default"
path = "~/.mozilla/firefox/default"

[profiles.search]
default = "Google"
private_default = "DuckDuckGo"
order = ["Nix Packages", "NixOS Wiki"]
force = true

[profiles.search.engines."Nix Packages"]
icon = "/abs/path.svg"
definedAliases = ["@np"]

[profiles.search.engines.Bing.metaData]
hidden = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Application.Name != "LibreWolf" || cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected normalized config: %+v", cfg)
	}
	p := cfg.Profiles[0]
	if diff := cmp.Diff([]string{"Nix Packages", "NixOS Wiki"}, p.Search.Order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !p.Search.Force || p.Search.PrivateDefault != "DuckDuckGo" {
		t.Fatalf("unexpected search config: %+v", p.Search)
	}
	want := map[string]any{"hidden": true}
	if diff := cmp.Diff(want, p.Search.Engines["Bing"]["metaData"]); diff != "" {
		t.Fatalf("Bing metaData mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		code   string
	}{
		"version":      {func(c *Config) { c.Version = 2 }, "DOC_CONFIG_VERSION"},
		"log level":    {func(c *Config) { c.Logging.Level = "trace" }, "DOC_CONFIG_LOGGING"},
		"log format":   {func(c *Config) { c.Logging.Format = "xml" }, "DOC_CONFIG_LOGGING"},
		"min version":  {func(c *Config) { c.Application.MinVersion = "latest" }, "DOC_CONFIG_APPLICATION"},
		"profile name": {func(c *Config) { c.Profiles[0].Name = "" }, "PRF_CONFIG_PROFILE"},
		"profile path": {func(c *Config) { c.Profiles[0].Path = " " }, "PRF_CONFIG_PROFILE"},
		"duplicate":    {func(c *Config) { c.Profiles = append(c.Profiles, c.Profiles[0]) }, "PRF_CONFIG_PROFILE"},
		"order":        {func(c *Config) { c.Profiles[0].Search.Order = []string{"A", "A"} }, "CFG_ORDER_DUPLICATE"},
		"empty engine": {func(c *Config) { c.Profiles[0].Search.Engines[""] = map[string]any{} }, "CFG_ENGINE_NAME"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := Validate(cfg)
			if err == nil || !strings.HasPrefix(err.Error(), tc.code) {
				t.Fatalf("expected %s error, got %v", tc.code, err)
			}
		})
	}
}

func TestLoadEnginesMergesFileFormats(t *testing.T) {
	files := map[string]string{
		"engines.toml": `
["Nix Packages"]
icon = "/abs/path.svg"
updateInterval = 86400000
`,
		"engines.jsonc": `{
  // comments and trailing commas are allowed
  "Nix Packages": {
    "icon": "/abs/path.svg",
    "updateInterval": 86400000,
  },
}`,
		"engines.yaml": `
Nix Packages:
  icon: /abs/path.svg
  updateInterval: 86400000
`,
	}
	for file, content := range files {
		t.Run(file, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, file), content)
			p := ProfileConfig{
				Name: "default",
				Search: SearchConfig{
					EnginesFile: file,
					Engines:     map[string]map[string]any{"Bing": {"metaData": map[string]any{"hidden": true}}},
				},
			}
			got, err := LoadEngines(filepath.Join(dir, "config.toml"), p)
			if err != nil {
				t.Fatalf("load engines failed: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected two engines, got %v", got)
			}
			nix := got["Nix Packages"]
			if nix["icon"] != "/abs/path.svg" {
				t.Fatalf("unexpected icon: %v", nix["icon"])
			}
			// Every decoder must keep the integer intact when re-encoded.
			blob, err := json.Marshal(nix["updateInterval"])
			if err != nil || string(blob) != "86400000" {
				t.Fatalf("updateInterval encodes as %s (%v)", blob, err)
			}
		})
	}
}

func TestLoadEnginesRejectsDuplicateDefinition(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "engines.json"), `{"Bing": {"metaData": {"hidden": false}}}`)
	p := ProfileConfig{
		Name: "default",
		Search: SearchConfig{
			EnginesFile: "engines.json",
			Engines:     map[string]map[string]any{"Bing": {}},
		},
	}
	_, err := LoadEngines(filepath.Join(dir, "config.toml"), p)
	if err == nil || !strings.HasPrefix(err.Error(), "CFG_ENGINE_DUPLICATE") {
		t.Fatalf("expected CFG_ENGINE_DUPLICATE, got %v", err)
	}
}

func TestLoadEnginesDoesNotAliasConfig(t *testing.T) {
	p := ProfileConfig{Search: SearchConfig{Engines: map[string]map[string]any{
		"A": {"definedAliases": []any{"@a"}},
	}}}
	got, err := LoadEngines("config.toml", p)
	if err != nil {
		t.Fatalf("load engines failed: %v", err)
	}
	got["A"]["definedAliases"].([]any)[0] = "@changed"
	if p.Search.Engines["A"]["definedAliases"].([]any)[0] != "@a" {
		t.Fatalf("returned specs must not share storage with the config")
	}
}

func TestReadEnginesFileYAMLIntegerIconKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.yaml")
	writeFile(t, path, `
NixOS Wiki:
  urls:
    - template: "https://wiki.nixos.org/w/index.php?search={searchTerms}"
  iconMapObj:
    16: https://wiki.nixos.org/favicon.png
    32: https://wiki.nixos.org/favicon-32.png
`)
	specs, err := ReadEnginesFile(path)
	if err != nil {
		t.Fatalf("read engines failed: %v", err)
	}
	pending, err := settings.Compile(settings.Input{Engines: specs}, nil)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	engines := pending.Document().Engines
	if len(engines) != 1 {
		t.Fatalf("expected one engine, got %d", len(engines))
	}
	want := map[string]any{
		"16": "https://wiki.nixos.org/favicon.png",
		"32": "https://wiki.nixos.org/favicon-32.png",
	}
	if diff := cmp.Diff(want, engines[0]["_iconMapObj"]); diff != "" {
		t.Fatalf("icon map mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEnginesFileRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engines.xml")
	writeFile(t, path, "<engines/>")
	if _, err := ReadEnginesFile(path); err == nil || !strings.HasPrefix(err.Error(), "CFG_ENGINE_FILE") {
		t.Fatalf("expected CFG_ENGINE_FILE, got %v", err)
	}
}

func TestPathsResolveAgainstHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	if got := DefaultConfigPath(); got != filepath.Join(home, ".config", "mozsearch", "config.toml") {
		t.Fatalf("DefaultConfigPath = %q", got)
	}
	art, err := ArtifactPath(ProfileConfig{Path: "~/.mozilla/firefox/abcd.default/"})
	if err != nil {
		t.Fatalf("artifact path failed: %v", err)
	}
	if art != filepath.Join(home, ".mozilla", "firefox", "abcd.default", ArtifactName) {
		t.Fatalf("ArtifactPath = %q", art)
	}
	engines, err := ResolveEnginesFile("/etc/mozsearch/config.toml", ProfileConfig{Search: SearchConfig{EnginesFile: "engines.yaml"}})
	if err != nil || engines != "/etc/mozsearch/engines.yaml" {
		t.Fatalf("ResolveEnginesFile = %q, %v", engines, err)
	}
}
