package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// LoadPathPrefix tags loadPath values written by this tool.
const LoadPathPrefix = "[mozsearch]"

// LoadPath builds the provenance identifier of a custom engine declared at
// origin, e.g. `[mozsearch]/profiles.default.search.engines."Nix Packages"`.
func LoadPath(origin, name string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name)
	return fmt.Sprintf("%s/%s.search.engines.\"%s\"", LoadPathPrefix, origin, escaped)
}

// Compiler turns declarations into compiled engines.
type Compiler struct {
	// Origin is the logical location of the declarations, used in loadPath.
	Origin string
	Logger *zap.Logger
}

// Compile classifies spec and, for custom engines, runs the migration chain,
// icon normalization and field mapping.
func (c *Compiler) Compile(name string, spec Spec) (Engine, []Warning, error) {
	if name == "" {
		return nil, nil, fmt.Errorf("%w: engine name is required", ErrInvalidField)
	}
	appProvided, err := IsAppProvided(name, spec)
	if err != nil {
		return nil, nil, err
	}
	meta, err := asMap(name, FieldMetaData, spec[FieldMetaData])
	if err != nil {
		return nil, nil, err
	}
	if appProvided {
		return &AppProvided{Name: name, MetaData: cloneMap(meta)}, nil, nil
	}

	migrated, warnings, err := Migrate(name, spec)
	if err != nil {
		return nil, nil, err
	}
	c.logWarnings(warnings)

	normalized, err := NormalizeIcons(name, migrated)
	if err != nil {
		return nil, warnings, err
	}
	if aliases, ok := normalized[FieldDefinedAliases]; ok {
		deduped, err := dedupeAliases(name, aliases)
		if err != nil {
			return nil, warnings, err
		}
		normalized[FieldDefinedAliases] = deduped
	}
	normalized[FieldName] = name
	normalized[FieldIsAppProvided] = false
	normalized[FieldMetaData] = cloneMap(meta)
	normalized[FieldLoadPath] = LoadPath(c.origin(), name)

	return &Custom{Name: name, Fields: MapFields(normalized)}, warnings, nil
}

func (c *Compiler) origin() string {
	if c.Origin == "" {
		return "engines"
	}
	return c.Origin
}

func (c *Compiler) logWarnings(warnings []Warning) {
	if c.Logger == nil {
		return
	}
	for _, w := range warnings {
		c.Logger.Warn("deprecated engine field migrated",
			zap.String("engine", w.Engine),
			zap.Int("schema", w.Version),
			zap.String("old", w.Old),
			zap.String("new", w.New),
			zap.String("detail", w.Message))
	}
}

// dedupeAliases keeps the first occurrence of each alias.
func dedupeAliases(name string, v any) ([]any, error) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("%w: engine %q field %q must be a list of strings, got %T", ErrInvalidField, name, FieldDefinedAliases, v)
	}
	seen := map[string]struct{}{}
	out := make([]any, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: engine %q alias must be a string, got %T", ErrInvalidField, name, item)
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}
