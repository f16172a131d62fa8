package config

const (
	SchemaVersion = 1
)

const (
	defaultAppName     = "Firefox"
	defaultStorageRoot = "~/.local/state/mozsearch"
	defaultProfileRoot = "~/.mozilla/firefox"
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Application: ApplicationConfig{
			Name: defaultAppName,
		},
		Storage: StorageConfig{
			Root: defaultStorageRoot,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Profiles: []ProfileConfig{
			{
				Name: "default",
				Path: defaultProfileRoot + "/default",
				Search: SearchConfig{
					Default:        "Google",
					PrivateDefault: "DuckDuckGo",
					Engines: map[string]map[string]any{
						"Bing": {"metaData": map[string]any{"hidden": true}},
					},
				},
			},
		},
	}
}
