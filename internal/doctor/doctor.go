package doctor

import (
	"context"
	"os"
	"path/filepath"

	"mozsearch/internal/appinfo"
	"mozsearch/internal/audit"
	"mozsearch/internal/config"
	"mozsearch/internal/settings"
	"mozsearch/internal/store"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy     bool          `json:"healthy"`
	Findings    []Finding     `json:"findings"`
	Application *appinfo.Info `json:"application,omitempty"`
}

type Service struct {
	ConfigPath string
	StateRoot  string
	Audit      *audit.Logger
}

func (s *Service) Run(ctx context.Context) Report {
	findings := []Finding{}
	var app *appinfo.Info
	var profiles map[string]struct{}
	if _, err := os.Stat(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_MISSING", Level: "error", Message: err.Error()})
	} else if cfg, err := config.Load(s.ConfigPath); err != nil {
		findings = append(findings, Finding{Code: "DOC_CONFIG_INVALID", Level: "error", Message: err.Error()})
	} else {
		var more []Finding
		app, more = checkApplication(cfg)
		findings = append(findings, more...)
		profiles = map[string]struct{}{}
		for _, p := range cfg.Profiles {
			if ctx.Err() != nil {
				break
			}
			profiles[p.Name] = struct{}{}
			findings = append(findings, checkProfile(s.ConfigPath, p)...)
		}
	}

	if st, err := store.LoadState(s.StateRoot); err != nil {
		findings = append(findings, Finding{Code: "DOC_STATE_INVALID", Level: "error", Message: err.Error()})
	} else {
		findings = append(findings, checkDrift(st, profiles)...)
	}

	if events, err := s.Audit.Tail(1); err != nil {
		findings = append(findings, Finding{Code: "DOC_AUDIT_INVALID", Level: "warn", Message: err.Error()})
	} else if len(events) == 1 && events[0].Status == "failed" {
		findings = append(findings, Finding{
			Code:    "DOC_LAST_BUILD_FAILED",
			Level:   "warn",
			Message: "last build failed: " + events[0].Message,
		})
	}

	healthy := true
	for _, f := range findings {
		if f.Level == "error" {
			healthy = false
			break
		}
	}
	return Report{Healthy: healthy, Findings: findings, Application: app}
}

func checkApplication(cfg config.Config) (*appinfo.Info, []Finding) {
	var findings []Finding
	pkg, err := config.ResolvePackage(cfg)
	if err != nil {
		return nil, []Finding{{Code: "APP_PACKAGE_INVALID", Level: "error", Message: err.Error()}}
	}
	info, err := appinfo.Resolver{StaticName: cfg.Application.Name}.Resolve(pkg)
	if err != nil {
		return nil, []Finding{{Code: "APP_INI_INVALID", Level: "error", Message: err.Error()}}
	}
	if pkg != "" && info.Fallback {
		findings = append(findings, Finding{
			Code:    "APP_NAME_FALLBACK",
			Level:   "warn",
			Message: "no application name found under " + filepath.Join(pkg, "lib") + "; using " + info.Name,
		})
	}
	if cfg.Application.MinVersion != "" && info.Version != "" {
		if err := appinfo.CheckMinVersion(info.Version, cfg.Application.MinVersion); err != nil {
			findings = append(findings, Finding{Code: "APP_VERSION_TOO_OLD", Level: "error", Message: err.Error()})
		}
	}
	return &info, findings
}

func checkProfile(configPath string, p config.ProfileConfig) []Finding {
	var findings []Finding
	dir, err := config.ResolveProfileDir(p)
	if err != nil {
		return []Finding{{Code: "PRF_PATH_INVALID", Level: "error", Message: p.Name + ": " + err.Error()}}
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		findings = append(findings, Finding{
			Code:    "PRF_DIR_MISSING",
			Level:   "warn",
			Message: p.Name + ": profile directory " + dir + " does not exist",
		})
	}
	engines, err := config.LoadEngines(configPath, p)
	if err != nil {
		return append(findings, Finding{Code: "CFG_ENGINE_INVALID", Level: "error", Message: p.Name + ": " + err.Error()})
	}
	_, err = settings.Compile(settings.Input{
		Engines:        engines,
		Default:        p.Search.Default,
		PrivateDefault: p.Search.PrivateDefault,
		Order:          p.Search.Order,
	}, nil)
	if err != nil {
		findings = append(findings, Finding{Code: "CFG_ENGINE_INVALID", Level: "error", Message: p.Name + ": " + err.Error()})
	}
	return findings
}

func checkDrift(st store.State, profiles map[string]struct{}) []Finding {
	var findings []Finding
	for _, b := range st.Builds {
		if profiles != nil {
			if _, ok := profiles[b.Profile]; !ok {
				findings = append(findings, Finding{
					Code:    "DRIFT_PROFILE_REMOVED",
					Level:   "warn",
					Message: b.Profile + ": built artifact " + b.Artifact + " belongs to a profile no longer configured",
				})
			}
		}
		sum, err := store.FileChecksum(b.Artifact)
		if err != nil {
			findings = append(findings, Finding{
				Code:    "DRIFT_ARTIFACT_MISSING",
				Level:   "warn",
				Message: b.Profile + ": " + b.Artifact + " is missing",
			})
			continue
		}
		if sum != b.Checksum {
			findings = append(findings, Finding{
				Code:    "DRIFT_ARTIFACT_MODIFIED",
				Level:   "warn",
				Message: b.Profile + ": " + b.Artifact + " changed since the last build",
			})
		}
	}
	return findings
}
