package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Migration upgrades a declaration by one schema generation. Apply must not
// modify its input.
type Migration struct {
	Version int
	Apply   func(name string, spec Spec) (Spec, []Warning, error)
}

// Migrations is the upgrade chain, oldest first. New schema versions are
// appended; entries are never removed or reordered.
var Migrations = []Migration{
	{Version: 11, Apply: migrateToV11},
	{Version: 12, Apply: migrateToV12},
}

// Migrate runs spec through every migration in order.
func Migrate(name string, spec Spec) (Spec, []Warning, error) {
	current := spec.Clone()
	var warnings []Warning
	for _, m := range Migrations {
		next, ws, err := m.Apply(name, current)
		if err != nil {
			return nil, warnings, err
		}
		warnings = append(warnings, ws...)
		current = next
	}
	return current, warnings, nil
}

// migrateToV11 rewrites JSON-object icon size keys such as
// {"width":16,"height":16} to the decimal width.
func migrateToV11(name string, spec Spec) (Spec, []Warning, error) {
	raw, ok := spec[FieldIconMap]
	if !ok {
		return spec, nil, nil
	}
	icons, err := asMap(name, FieldIconMap, raw)
	if err != nil {
		return nil, nil, err
	}
	out := spec.Clone()
	rewritten := make(map[string]any, len(icons))
	var warnings []Warning
	var legacy []string
	for _, key := range sortedKeys(icons) {
		canonical, isLegacy, err := canonicalIconKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("ENG_ICON_KEY: engine %q: %w", name, err)
		}
		if isLegacy {
			legacy = append(legacy, key)
			continue
		}
		rewritten[canonical] = icons[key]
	}
	for _, key := range legacy {
		canonical, _, _ := canonicalIconKey(key)
		warnings = append(warnings, Warning{
			Engine:  name,
			Version: 11,
			Field:   FieldIconMap,
			Old:     key,
			New:     canonical,
			Message: fmt.Sprintf("icon size key %s is deprecated, use %q instead", key, canonical),
		})
		// An explicit canonical key wins over a legacy one for the same size.
		if _, exists := rewritten[canonical]; exists {
			continue
		}
		rewritten[canonical] = icons[key]
	}
	out[FieldIconMap] = rewritten
	return out, warnings, nil
}

// canonicalIconKey parses an icon size key. Canonical keys are JSON integers;
// legacy keys are JSON objects carrying a width.
func canonicalIconKey(key string) (string, bool, error) {
	var parsed any
	if err := json.Unmarshal([]byte(key), &parsed); err != nil {
		return "", false, fmt.Errorf("invalid icon size key %q", key)
	}
	switch v := parsed.(type) {
	case float64:
		if v != math.Trunc(v) || v < 0 {
			return "", false, fmt.Errorf("invalid icon size key %q", key)
		}
		return key, false, nil
	case map[string]any:
		width, ok := v["width"].(float64)
		if !ok || width != math.Trunc(width) || width < 0 {
			return "", false, fmt.Errorf("icon size key %q has no integer width", key)
		}
		return strconv.FormatInt(int64(width), 10), true, nil
	default:
		return "", false, fmt.Errorf("invalid icon size key %q", key)
	}
}

// migrateToV12 rejects hasPreferredIcon and folds the singular iconURL and
// iconUpdateURL fields into the icon map.
func migrateToV12(name string, spec Spec) (Spec, []Warning, error) {
	if _, ok := spec[FieldHasPreferred]; ok {
		return nil, nil, fmt.Errorf("%w: engine %q: %q was removed in schema version 12 and cannot be migrated; drop it and declare icons in %q",
			ErrSchemaRejected, name, FieldHasPreferred, FieldIconMap)
	}
	_, hasIconURL := spec[FieldIconURL]
	_, hasUpdateURL := spec[FieldIconUpdateURL]
	if !hasIconURL && !hasUpdateURL {
		return spec, nil, nil
	}

	out := spec.Clone()
	icons, err := asMap(name, FieldIconMap, out[FieldIconMap])
	if err != nil {
		return nil, nil, err
	}
	var warnings []Warning
	// iconUpdateURL is applied after iconURL and therefore wins.
	for _, field := range []string{FieldIconURL, FieldIconUpdateURL} {
		v, ok := out[field]
		if !ok {
			continue
		}
		icons[DefaultIconSize] = v
		delete(out, field)
		warnings = append(warnings, Warning{
			Engine:  name,
			Version: 12,
			Field:   field,
			Old:     field,
			New:     FieldIconMap + "." + DefaultIconSize,
			Message: fmt.Sprintf("%q is deprecated, use %q or %q instead", field, FieldIcon, FieldIconMap),
		})
	}
	out[FieldIconMap] = icons
	return out, warnings, nil
}
