package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"mozsearch/internal/appinfo"
	"mozsearch/internal/audit"
	"mozsearch/internal/codec"
	"mozsearch/internal/config"
	"mozsearch/internal/doctor"
	"mozsearch/internal/hash"
	storepkg "mozsearch/internal/store"
)

type Options struct {
	ConfigPath string
	Logger     *zap.Logger
}

type Service struct {
	ConfigPath string
	Config     config.Config
	StateRoot  string

	Doctor *doctor.Service
	Audit  *audit.Logger
	Logger *zap.Logger

	// Digest and Codec are the external primitives a build depends on.
	Digest hash.Digest
	Codec  codec.Codec

	configMissing bool
}

// New loads the configuration and wires the services. A missing config file
// is not an error here: the defaults are used and operations that need a
// real configuration fail with DOC_CONFIG_MISSING.
func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	missing := false
	cfg, err := config.Load(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.DefaultConfig()
		missing = true
	}
	stateRoot, err := config.ResolveStorageRoot(cfg)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	journal := audit.New(storepkg.AuditPath(stateRoot))
	return &Service{
		ConfigPath:    configPath,
		Config:        cfg,
		StateRoot:     stateRoot,
		Doctor:        &doctor.Service{ConfigPath: configPath, StateRoot: stateRoot, Audit: journal},
		Audit:         journal,
		Logger:        logger,
		Digest:        hash.SHA256{},
		Codec:         codec.MozLz4{},
		configMissing: missing,
	}, nil
}

// InitConfig writes the default configuration to path unless a valid one
// already exists. It reports whether a file was created.
func InitConfig(path string) (string, bool, error) {
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		_, err := config.Load(path)
		return path, false, err
	}
	if _, err := config.Ensure(path); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func (s *Service) requireConfig() error {
	if s.configMissing {
		return fmt.Errorf("DOC_CONFIG_MISSING: %s does not exist; run `mozsearch init` first", s.ConfigPath)
	}
	return nil
}

// Application resolves the application name used for hashing and checks
// the configured minimum version against the installed package.
func (s *Service) Application() (appinfo.Info, error) {
	pkg, err := config.ResolvePackage(s.Config)
	if err != nil {
		return appinfo.Info{}, fmt.Errorf("APP_PACKAGE_INVALID: %w", err)
	}
	info, err := appinfo.Resolver{StaticName: s.Config.Application.Name}.Resolve(pkg)
	if err != nil {
		return appinfo.Info{}, err
	}
	if pkg != "" && info.Fallback {
		s.Logger.Warn("application name not found in package, using configured name",
			zap.String("package", pkg), zap.String("name", info.Name))
	}
	if minimum := s.Config.Application.MinVersion; minimum != "" && pkg != "" {
		if info.Version == "" {
			s.Logger.Warn("installed application version unknown, skipping version check",
				zap.String("package", pkg), zap.String("min_version", minimum))
		} else if err := appinfo.CheckMinVersion(info.Version, minimum); err != nil {
			return appinfo.Info{}, err
		}
	}
	return info, nil
}

func (s *Service) DoctorRun(ctx context.Context) doctor.Report {
	return s.Doctor.Run(ctx)
}

// Profiles lists the browser profiles registered in <root>/profiles.ini.
func (s *Service) Profiles(root string) ([]appinfo.Profile, error) {
	if root == "" {
		root = config.DefaultProfileRoot()
	} else {
		expanded, err := config.ExpandPath(root)
		if err != nil {
			return nil, err
		}
		root = expanded
	}
	return appinfo.ListProfiles(root)
}

// Hash computes the salted hash the browser would store for engineName in
// profileDir. An empty appName uses the resolved application name.
func (s *Service) Hash(profileDir, engineName, appName string) (string, error) {
	if engineName == "" {
		return "", fmt.Errorf("HASH_ENGINE: engine name is required")
	}
	if profileDir == "" {
		return "", fmt.Errorf("HASH_PROFILE: profile directory is required")
	}
	if appName == "" {
		info, err := s.Application()
		if err != nil {
			return "", err
		}
		appName = info.Name
	}
	expanded, err := config.ExpandPath(profileDir)
	if err != nil {
		return "", err
	}
	g := &hash.Generator{Digest: s.Digest, AppName: appName}
	return g.Hash(hash.ProfileLocation(expanded), engineName)
}
