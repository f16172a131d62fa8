package config

// Config is the v1 configuration schema.
type Config struct {
	Version     int               `toml:"version"`
	Application ApplicationConfig `toml:"application"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Profiles    []ProfileConfig   `toml:"profiles"`
}

// ApplicationConfig identifies the browser whose settings are produced.
type ApplicationConfig struct {
	Name       string `toml:"name" json:"name"`
	Package    string `toml:"package,omitempty" json:"package,omitempty"`
	MinVersion string `toml:"min_version,omitempty" json:"minVersion,omitempty"`
}

type StorageConfig struct {
	Root string `toml:"root"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ProfileConfig is one browser profile to compile a settings file for.
type ProfileConfig struct {
	Name   string       `toml:"name" json:"name"`
	Path   string       `toml:"path" json:"path"`
	Search SearchConfig `toml:"search" json:"search"`
}

// SearchConfig is the declarative search configuration of one profile.
// Engine definitions keep the user's field names; they are interpreted by
// the engine compiler.
type SearchConfig struct {
	Default        string                    `toml:"default,omitempty" json:"default,omitempty"`
	PrivateDefault string                    `toml:"private_default,omitempty" json:"privateDefault,omitempty"`
	Order          []string                  `toml:"order,omitempty" json:"order,omitempty"`
	Force          bool                      `toml:"force" json:"force"`
	EnginesFile    string                    `toml:"engines_file,omitempty" json:"enginesFile,omitempty"`
	Engines        map[string]map[string]any `toml:"engines,omitempty" json:"engines,omitempty"`
}
