package config

import "strings"

func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	cfg.Application.Name = strings.TrimSpace(cfg.Application.Name)
	if cfg.Application.Name == "" {
		cfg.Application.Name = defaultAppName
	}
	if cfg.Storage.Root == "" {
		cfg.Storage.Root = defaultStorageRoot
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	for i := range cfg.Profiles {
		p := &cfg.Profiles[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Search.Default = strings.TrimSpace(p.Search.Default)
		p.Search.PrivateDefault = strings.TrimSpace(p.Search.PrivateDefault)
	}
	return cfg
}
