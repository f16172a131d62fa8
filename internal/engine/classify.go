package engine

import "fmt"

// Engine is a compiled engine: either *AppProvided or *Custom.
type Engine interface {
	EngineName() string
	// Record renders the engine with internal field names.
	Record() Record
}

// AppProvided is a builtin engine; only its metadata can be overridden.
type AppProvided struct {
	Name     string
	MetaData map[string]any
}

func (e *AppProvided) EngineName() string { return e.Name }

func (e *AppProvided) Record() Record {
	meta := map[string]any{}
	if e.MetaData != nil {
		meta = cloneMap(e.MetaData)
	}
	return Record{
		InternalName(FieldName):          e.Name,
		InternalName(FieldIsAppProvided): true,
		InternalName(FieldMetaData):      meta,
	}
}

// Custom is an engine fully defined by the user.
type Custom struct {
	Name   string
	Fields Record
}

func (e *Custom) EngineName() string { return e.Name }

func (e *Custom) Record() Record { return e.Fields.Clone() }

// IsAppProvided reports whether spec describes a builtin engine: either
// isAppProvided is set to true, or metaData is the only field present.
func IsAppProvided(name string, spec Spec) (bool, error) {
	if v, ok := spec[FieldIsAppProvided]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return false, fmt.Errorf("%w: engine %q field %q must be a boolean, got %T", ErrInvalidField, name, FieldIsAppProvided, v)
		}
		if b {
			return true, nil
		}
	}
	for k := range spec {
		if k != FieldMetaData {
			return false, nil
		}
	}
	return true, nil
}
