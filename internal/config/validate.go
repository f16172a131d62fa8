package config

import (
	"fmt"
	"strings"

	"mozsearch/internal/appinfo"
	"mozsearch/internal/settings"
)

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("DOC_CONFIG_VERSION: unsupported version %d", cfg.Version)
	}
	if cfg.Application.Name == "" {
		return fmt.Errorf("DOC_CONFIG_APPLICATION: missing application name")
	}
	if v := cfg.Application.MinVersion; v != "" && !appinfo.ValidVersion(v) {
		return fmt.Errorf("DOC_CONFIG_APPLICATION: invalid min_version %q", v)
	}
	if cfg.Storage.Root == "" {
		return fmt.Errorf("DOC_CONFIG_STORAGE: missing storage root")
	}
	if _, ok := allowedLogLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: invalid level %q", cfg.Logging.Level)
	}
	if _, ok := allowedLogFormats[cfg.Logging.Format]; !ok {
		return fmt.Errorf("DOC_CONFIG_LOGGING: invalid format %q", cfg.Logging.Format)
	}

	names := map[string]struct{}{}
	for _, p := range cfg.Profiles {
		if p.Name == "" {
			return fmt.Errorf("PRF_CONFIG_PROFILE: profile name is required")
		}
		if _, ok := names[p.Name]; ok {
			return fmt.Errorf("PRF_CONFIG_PROFILE: duplicate profile %q", p.Name)
		}
		names[p.Name] = struct{}{}
		if strings.TrimSpace(p.Path) == "" {
			return fmt.Errorf("PRF_CONFIG_PROFILE: profile %q missing path", p.Name)
		}
		if err := settings.ValidateOrder(p.Search.Order); err != nil {
			return fmt.Errorf("CFG_ORDER_DUPLICATE: profile %q: %w", p.Name, err)
		}
		for name := range p.Search.Engines {
			if strings.TrimSpace(name) == "" {
				return fmt.Errorf("CFG_ENGINE_NAME: profile %q has an engine with an empty name", p.Name)
			}
		}
	}
	return nil
}
