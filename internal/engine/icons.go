package engine

import (
	"fmt"
	"strings"
)

// DefaultIconSize is the icon map key used for single-icon convenience fields.
const DefaultIconSize = "16"

// IconURL turns an absolute filesystem path into a file:// URL. Anything
// else is assumed to already be a URL.
func IconURL(v string) string {
	if strings.HasPrefix(v, "/") {
		return "file://" + v
	}
	return v
}

// NormalizeIcons folds the icon convenience field into iconMapObj, rewrites
// filesystem paths to file:// URLs and drops the map when it ends up empty.
func NormalizeIcons(name string, spec Spec) (Spec, error) {
	out := spec.Clone()
	icons, err := asMap(name, FieldIconMap, out[FieldIconMap])
	if err != nil {
		return nil, err
	}
	merged := make(map[string]any, len(icons)+1)
	for k, v := range icons {
		merged[k] = v
	}
	if icon, ok := out[FieldIcon]; ok {
		merged[DefaultIconSize] = icon
		delete(out, FieldIcon)
	}
	for k, v := range merged {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: engine %q icon %q must be a string, got %T", ErrInvalidField, name, k, v)
		}
		merged[k] = IconURL(s)
	}
	if len(merged) == 0 {
		delete(out, FieldIconMap)
		return out, nil
	}
	out[FieldIconMap] = merged
	return out, nil
}
