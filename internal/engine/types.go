// Package engine compiles individual search engine declarations into the
// records stored in the browser's search settings file.
package engine

import (
	"errors"
	"fmt"
	"sort"
)

// Spec is a user-authored engine declaration keyed by friendly field names.
type Spec map[string]any

// Record is a compiled engine keyed by internal field names.
type Record map[string]any

var (
	// ErrSchemaRejected marks a declaration that uses a field removed from the
	// schema with no migration path.
	ErrSchemaRejected = errors.New("ENG_SCHEMA_REJECTED")
	// ErrInvalidField marks a field whose value has the wrong shape.
	ErrInvalidField = errors.New("ENG_FIELD_INVALID")
)

// Warning is a non-fatal notice that a legacy field or key shape was migrated.
type Warning struct {
	Engine  string `json:"engine"`
	Version int    `json:"version"`
	Field   string `json:"field"`
	Old     string `json:"old,omitempty"`
	New     string `json:"new,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("engine %q: %s", w.Engine, w.Message)
}

// Clone returns a deep copy of spec so transforms never alias caller data.
func (s Spec) Clone() Spec {
	if s == nil {
		return Spec{}
	}
	return Spec(cloneMap(s))
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return Record(cloneMap(r))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Spec:
		return cloneMap(t)
	case Record:
		return cloneMap(t)
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneMap(t[i])
		}
		return out
	default:
		return v
	}
}

// asMap converts decoded mapping values into map[string]any.
func asMap(engine, field string, v any) (map[string]any, error) {
	switch t := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return t, nil
	case Spec:
		return t, nil
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: engine %q field %q must be a mapping, got %T", ErrInvalidField, engine, field, v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
