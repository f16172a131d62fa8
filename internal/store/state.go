package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mozsearch/internal/fsutil"
)

func EnsureLayout(root string) error {
	dirs := []string{root, BackupRoot(root)}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func LoadState(root string) (State, error) {
	if err := EnsureLayout(root); err != nil {
		return State{}, err
	}
	path := StatePath(root)
	blob, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{Version: StateVersion}, nil
		}
		return State{}, err
	}
	var st State
	if err := toml.Unmarshal(blob, &st); err != nil {
		return State{}, fmt.Errorf("DOC_STATE_PARSE: %w", err)
	}
	if st.Version == 0 {
		st.Version = StateVersion
	}
	if st.Version != StateVersion {
		return State{}, fmt.Errorf("DOC_STATE_VERSION: unsupported state version %d", st.Version)
	}
	for i := range st.Builds {
		if st.Builds[i].Profile == "" || st.Builds[i].Artifact == "" {
			return State{}, fmt.Errorf("DOC_STATE_SCHEMA: build entry missing profile or artifact")
		}
	}
	return st, nil
}

func SaveState(root string, st State) error {
	if err := EnsureLayout(root); err != nil {
		return err
	}
	st.Version = StateVersion
	sort.Slice(st.Builds, func(i, j int) bool {
		return st.Builds[i].Profile < st.Builds[j].Profile
	})
	blob, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("DOC_STATE_ENCODE: %w", err)
	}
	return fsutil.AtomicWrite(StatePath(root), blob, 0o644)
}

func UpsertBuild(st *State, rec BuildRecord) {
	for i := range st.Builds {
		if st.Builds[i].Profile == rec.Profile {
			st.Builds[i] = rec
			return
		}
	}
	st.Builds = append(st.Builds, rec)
}

func FindBuild(st State, profile string) (BuildRecord, bool) {
	for _, b := range st.Builds {
		if b.Profile == profile {
			return b, true
		}
	}
	return BuildRecord{}, false
}

// FindArtifact returns the build that last wrote path.
func FindArtifact(st State, path string) (BuildRecord, bool) {
	clean := filepath.Clean(path)
	for _, b := range st.Builds {
		if filepath.Clean(b.Artifact) == clean {
			return b, true
		}
	}
	return BuildRecord{}, false
}

// Checksum is the hex sha256 of data, prefixed with the algorithm.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// FileChecksum hashes the file at path.
func FileChecksum(path string) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Checksum(blob), nil
}

// Backup copies the file at path into the backup root and returns the copy's
// path. Names are unique per profile and timestamp.
func Backup(root, profile, path string, now time.Time) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%s-%s", safeName(profile), now.UTC().Format("20060102T150405.000000000Z"), filepath.Base(path))
	dst := filepath.Join(BackupRoot(root), name)
	if err := fsutil.AtomicWrite(dst, blob, 0o600); err != nil {
		return "", fmt.Errorf("DOC_BACKUP_WRITE: %w", err)
	}
	return dst, nil
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
