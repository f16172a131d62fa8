package appinfo

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrVersionTooOld is returned when the installed package is older than the
// configured minimum.
var ErrVersionTooOld = errors.New("APP_VERSION_TOO_OLD")

// CanonicalVersion maps a browser version such as "128.0esr" or "115.12.0"
// onto a semver string ("v128.0", "v115.12.0"). Suffixes after the numeric
// components are dropped and at most three components are kept. It returns ""
// when v does not start with a number.
func CanonicalVersion(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	parts := strings.Split(v, ".")
	nums := make([]string, 0, 3)
	for _, p := range parts {
		if len(nums) == 3 {
			break
		}
		end := 0
		for end < len(p) && p[end] >= '0' && p[end] <= '9' {
			end++
		}
		if end == 0 {
			break
		}
		nums = append(nums, strings.TrimLeft(p[:end], "0"))
		if nums[len(nums)-1] == "" {
			nums[len(nums)-1] = "0"
		}
		if end < len(p) {
			break
		}
	}
	if len(nums) == 0 {
		return ""
	}
	out := "v" + strings.Join(nums, ".")
	if !semver.IsValid(out) {
		return ""
	}
	return out
}

// ValidVersion reports whether v can be compared by CheckMinVersion.
func ValidVersion(v string) bool {
	return CanonicalVersion(v) != ""
}

// CheckMinVersion fails when installed is older than minimum. An empty
// minimum disables the check.
func CheckMinVersion(installed, minimum string) error {
	if strings.TrimSpace(minimum) == "" {
		return nil
	}
	want := CanonicalVersion(minimum)
	if want == "" {
		return fmt.Errorf("APP_VERSION_INVALID: minimum version %q", minimum)
	}
	have := CanonicalVersion(installed)
	if have == "" {
		return fmt.Errorf("APP_VERSION_INVALID: installed version %q", installed)
	}
	if semver.Compare(have, want) < 0 {
		return fmt.Errorf("%w: installed %s is older than required %s", ErrVersionTooOld, installed, minimum)
	}
	return nil
}
