package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"mozsearch/internal/audit"
	"mozsearch/internal/codec"
	"mozsearch/internal/config"
	"mozsearch/internal/engine"
	"mozsearch/internal/fsutil"
	"mozsearch/internal/hash"
	"mozsearch/internal/settings"
	storepkg "mozsearch/internal/store"
)

// ErrArtifactExists is returned when a destination holds a file this tool
// did not write and force is off.
var ErrArtifactExists = errors.New("PKG_EXISTS")

type BuildOptions struct {
	// Profile restricts the build to one configured profile.
	Profile string
	// DryRun compiles and packages without touching the filesystem.
	DryRun bool
}

type ProfileResult struct {
	Profile        string           `json:"profile"`
	Artifact       string           `json:"artifact"`
	AppName        string           `json:"appName"`
	Engines        int              `json:"engines"`
	Default        string           `json:"default,omitempty"`
	PrivateDefault string           `json:"privateDefault,omitempty"`
	Hash           string           `json:"hash,omitempty"`
	PrivateHash    string           `json:"privateHash,omitempty"`
	Checksum       string           `json:"checksum"`
	Bytes          int              `json:"bytes"`
	Written        bool             `json:"written"`
	Replaced       bool             `json:"replaced"`
	Backup         string           `json:"backup,omitempty"`
	Warnings       []engine.Warning `json:"warnings,omitempty"`
}

type BuildResult struct {
	DryRun   bool            `json:"dryRun"`
	Profiles []ProfileResult `json:"profiles"`
}

// Warnings flattens the deprecation notices of every profile.
func (r BuildResult) Warnings() []engine.Warning {
	var out []engine.Warning
	for _, p := range r.Profiles {
		out = append(out, p.Warnings...)
	}
	return out
}

type plannedArtifact struct {
	result ProfileResult
	force  bool
	blob   []byte
}

// Build compiles every selected profile, then writes the artifacts. Nothing
// is written unless every profile compiles and every destination may be
// replaced; a write failure restores the artifacts already replaced.
func (s *Service) Build(ctx context.Context, opts BuildOptions) (BuildResult, error) {
	result := BuildResult{DryRun: opts.DryRun}
	if err := s.requireConfig(); err != nil {
		return result, err
	}
	profiles, err := s.selectProfiles(opts.Profile)
	if err != nil {
		return result, err
	}
	if !opts.DryRun {
		_ = s.Audit.Log(audit.Event{Operation: "build", Phase: "start", Status: "ok", Message: fmt.Sprintf("profiles=%d", len(profiles))})
	}
	plans, err := s.compileProfiles(ctx, profiles)
	if err != nil {
		s.auditFailure(opts.DryRun, "compile", "", err)
		return result, err
	}
	if opts.DryRun {
		for _, p := range plans {
			result.Profiles = append(result.Profiles, p.result)
		}
		return result, nil
	}

	st, err := storepkg.LoadState(s.StateRoot)
	if err != nil {
		s.auditFailure(false, "commit", "", err)
		return result, err
	}
	for i := range plans {
		if err := checkDestination(st, &plans[i]); err != nil {
			s.auditFailure(false, "commit", plans[i].result.Profile, err)
			return result, err
		}
	}
	written, err := s.commit(ctx, &st, plans)
	if err != nil {
		s.auditFailure(false, "commit", "", err)
		return result, err
	}
	result.Profiles = written
	for _, p := range written {
		_ = s.Audit.Log(audit.Event{
			Operation: "build",
			Phase:     "commit",
			Status:    "ok",
			Profile:   p.Profile,
			Message:   p.Artifact,
			Fields: map[string]string{
				"engines":  strconv.Itoa(p.Engines),
				"checksum": p.Checksum,
				"replaced": strconv.FormatBool(p.Replaced),
			},
		})
	}
	return result, nil
}

// Validate runs a full build without writing anything.
func (s *Service) Validate(ctx context.Context, profile string) (BuildResult, error) {
	return s.Build(ctx, BuildOptions{Profile: profile, DryRun: true})
}

func (s *Service) selectProfiles(name string) ([]config.ProfileConfig, error) {
	if len(s.Config.Profiles) == 0 {
		return nil, fmt.Errorf("PRF_CONFIG_PROFILE: no profiles configured in %s", s.ConfigPath)
	}
	if name == "" {
		return append([]config.ProfileConfig(nil), s.Config.Profiles...), nil
	}
	p, ok := config.FindProfile(s.Config, name)
	if !ok {
		return nil, fmt.Errorf("PRF_NOT_FOUND: profile %q is not configured", name)
	}
	return []config.ProfileConfig{p}, nil
}

func (s *Service) compileProfiles(ctx context.Context, profiles []config.ProfileConfig) ([]plannedArtifact, error) {
	info, err := s.Application()
	if err != nil {
		return nil, err
	}
	plans := make([]plannedArtifact, 0, len(profiles))
	owners := map[string]string{}
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plan, err := s.compileProfile(p, info.Name)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if other, dup := owners[plan.result.Artifact]; dup {
			return nil, fmt.Errorf("PRF_CONFIG_PROFILE: profiles %q and %q write the same artifact %s", other, p.Name, plan.result.Artifact)
		}
		owners[plan.result.Artifact] = p.Name
		plans = append(plans, plan)
	}
	return plans, nil
}

func (s *Service) compileProfile(p config.ProfileConfig, appName string) (plannedArtifact, error) {
	log := s.Logger.With(zap.String("profile", p.Name))
	dir, err := config.ResolveProfileDir(p)
	if err != nil {
		return plannedArtifact{}, fmt.Errorf("PRF_CONFIG_PROFILE: %w", err)
	}
	artifact, err := config.ArtifactPath(p)
	if err != nil {
		return plannedArtifact{}, fmt.Errorf("PRF_CONFIG_PROFILE: %w", err)
	}
	engines, err := config.LoadEngines(s.ConfigPath, p)
	if err != nil {
		return plannedArtifact{}, err
	}
	log.Debug("compiling search settings", zap.Int("engines", len(engines)), zap.String("artifact", artifact))

	pending, err := settings.Compile(settings.Input{
		Engines:        engines,
		Default:        p.Search.Default,
		PrivateDefault: p.Search.PrivateDefault,
		Order:          p.Search.Order,
	}, &engine.Compiler{Origin: "profiles." + p.Name, Logger: log})
	if err != nil {
		return plannedArtifact{}, err
	}

	var hashes settings.Hashes
	if pending.NeedsHash() || pending.NeedsPrivateHash() {
		g := &hash.Generator{Digest: s.Digest, AppName: appName}
		doc := pending.Document()
		hashes.Hash, hashes.PrivateHash, err = g.Pair(hash.ProfileLocation(dir), doc.MetaData.Current, doc.MetaData.Private)
		if err != nil {
			return plannedArtifact{}, err
		}
	}
	final, err := pending.Finalize(hashes)
	if err != nil {
		return plannedArtifact{}, err
	}
	blob, err := codec.Package(s.Codec, final)
	if err != nil {
		return plannedArtifact{}, err
	}
	return plannedArtifact{
		result: ProfileResult{
			Profile:        p.Name,
			Artifact:       artifact,
			AppName:        appName,
			Engines:        final.EngineCount(),
			Default:        p.Search.Default,
			PrivateDefault: p.Search.PrivateDefault,
			Hash:           hashes.Hash,
			PrivateHash:    hashes.PrivateHash,
			Checksum:       storepkg.Checksum(blob),
			Bytes:          len(blob),
			Warnings:       pending.Warnings(),
		},
		force: p.Search.Force,
		blob:  blob,
	}, nil
}

// checkDestination decides whether plan may overwrite its artifact. Files
// matching the checksum recorded by a previous build are ours to replace.
func checkDestination(st storepkg.State, plan *plannedArtifact) error {
	path := plan.result.Artifact
	if !fsutil.Exists(path) {
		if _, err := os.Lstat(path); err == nil {
			return fmt.Errorf("%w: %s exists and is not a regular file", ErrArtifactExists, path)
		}
		return nil
	}
	plan.result.Replaced = true
	if rec, ok := storepkg.FindArtifact(st, path); ok {
		if sum, err := storepkg.FileChecksum(path); err == nil && sum == rec.Checksum {
			return nil
		}
	}
	if plan.force {
		return nil
	}
	return fmt.Errorf("%w: %s was not written by mozsearch; set force = true for profile %q to replace it", ErrArtifactExists, path, plan.result.Profile)
}

func (s *Service) commit(ctx context.Context, st *storepkg.State, plans []plannedArtifact) ([]ProfileResult, error) {
	type previous struct {
		path string
		blob []byte
	}
	var restore []previous
	var created []string
	rollback := func() {
		for _, p := range restore {
			_ = fsutil.AtomicWrite(p.path, p.blob, 0o644)
		}
		for _, path := range created {
			_ = os.Remove(path)
		}
	}

	now := time.Now().UTC()
	out := make([]ProfileResult, 0, len(plans))
	for _, plan := range plans {
		if err := ctx.Err(); err != nil {
			rollback()
			return nil, err
		}
		res := plan.result
		if res.Replaced {
			old, err := os.ReadFile(res.Artifact)
			if err != nil {
				rollback()
				return nil, fmt.Errorf("PKG_BACKUP: %w", err)
			}
			if rec, ok := storepkg.FindArtifact(*st, res.Artifact); !ok || rec.Checksum != storepkg.Checksum(old) {
				backup, err := storepkg.Backup(s.StateRoot, res.Profile, res.Artifact, now)
				if err != nil {
					rollback()
					return nil, err
				}
				res.Backup = backup
			}
			restore = append(restore, previous{path: res.Artifact, blob: old})
		} else {
			created = append(created, res.Artifact)
		}
		if err := fsutil.AtomicWrite(res.Artifact, plan.blob, 0o644); err != nil {
			rollback()
			return nil, fmt.Errorf("PKG_WRITE: %s: %w", res.Artifact, err)
		}
		res.Written = true
		s.Logger.Info("search settings written",
			zap.String("profile", res.Profile),
			zap.String("artifact", res.Artifact),
			zap.Int("engines", res.Engines))
		storepkg.UpsertBuild(st, storepkg.BuildRecord{
			Profile:        res.Profile,
			Artifact:       res.Artifact,
			Checksum:       res.Checksum,
			Engines:        res.Engines,
			Default:        res.Default,
			PrivateDefault: res.PrivateDefault,
			AppName:        res.AppName,
			Backup:         res.Backup,
			BuiltAt:        now,
		})
		out = append(out, res)
	}
	if err := storepkg.SaveState(s.StateRoot, *st); err != nil {
		rollback()
		return nil, fmt.Errorf("PKG_STATE_SAVE: %w", err)
	}
	return out, nil
}

func (s *Service) auditFailure(dryRun bool, phase, profile string, err error) {
	if dryRun {
		return
	}
	_ = s.Audit.Log(audit.Event{
		Operation: "build",
		Phase:     phase,
		Status:    "failed",
		Profile:   profile,
		Message:   err.Error(),
	})
}
