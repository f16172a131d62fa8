// Package hash computes the verification hashes the browser stores next to
// the default search engine to detect edits made outside of it.
package hash

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrDigestUnavailable is returned when a hash is required but no digest
// primitive was configured.
var ErrDigestUnavailable = errors.New("HASH_DIGEST_MISSING")

const appNameToken = "$appName"

const disclaimerTemplate = "By modifying this file, I agree that I am doing so " +
	"only within $appName itself, using official, user-driven search " +
	"engine selection processes, and in a way which does not circumvent " +
	"user consent. I acknowledge that any attempt to change this file " +
	"from outside of $appName is a malicious act, and will be responded " +
	"to accordingly."

// Disclaimer returns the disclaimer text for appName, used verbatim as part
// of the hash input.
func Disclaimer(appName string) string {
	return strings.ReplaceAll(disclaimerTemplate, appNameToken, appName)
}

// Digest is a hash primitive.
type Digest interface {
	Sum(data []byte) []byte
}

// SHA256 is the digest the browser uses.
type SHA256 struct{}

func (SHA256) Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ProfileLocation returns the part of a profile directory that enters the
// salt: its final path element.
func ProfileLocation(profileDir string) string {
	return filepath.Base(filepath.Clean(profileDir))
}

// Generator computes salted hashes for one application.
type Generator struct {
	Digest  Digest
	AppName string
}

// Hash returns base64(digest(profileLocation + engineName + disclaimer)).
func (g *Generator) Hash(profileLocation, engineName string) (string, error) {
	if g == nil || g.Digest == nil {
		return "", fmt.Errorf("%w: cannot hash default engine %q", ErrDigestUnavailable, engineName)
	}
	if g.AppName == "" {
		return "", fmt.Errorf("HASH_APP_NAME: application name is required to hash %q", engineName)
	}
	salt := profileLocation + engineName + Disclaimer(g.AppName)
	return base64.StdEncoding.EncodeToString(g.Digest.Sum([]byte(salt))), nil
}

// Pair computes the default and private-default hashes. Empty engine names
// yield empty hashes.
func (g *Generator) Pair(profileLocation, defaultEngine, privateEngine string) (string, string, error) {
	var h, ph string
	var err error
	if defaultEngine != "" {
		if h, err = g.Hash(profileLocation, defaultEngine); err != nil {
			return "", "", err
		}
	}
	if privateEngine != "" {
		if ph, err = g.Hash(profileLocation, privateEngine); err != nil {
			return "", "", err
		}
	}
	return h, ph, nil
}
