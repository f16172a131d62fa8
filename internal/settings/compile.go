package settings

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mozsearch/internal/engine"
)

// ErrInvalidOrder marks an order list with duplicate or empty entries.
var ErrInvalidOrder = errors.New("CFG_ORDER_INVALID")

// Input is everything the compiler needs for one settings document.
type Input struct {
	Engines        map[string]engine.Spec
	Default        string
	PrivateDefault string
	Order          []string
}

// ValidateOrder rejects duplicate and empty order entries.
func ValidateOrder(order []string) error {
	seen := make(map[string]struct{}, len(order))
	for i, name := range order {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: order entry %d is empty", ErrInvalidOrder, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: engine %q appears more than once in order", ErrInvalidOrder, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ResolveIdentities returns a copy of engines in which every name in names
// that is not declared maps to an empty spec. Empty specs classify as
// app-provided, so defaults and order entries always resolve.
func ResolveIdentities(engines map[string]engine.Spec, names ...string) map[string]engine.Spec {
	out := make(map[string]engine.Spec, len(engines)+len(names))
	for name, spec := range engines {
		out[name] = spec
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := out[name]; !ok {
			out[name] = engine.Spec{}
		}
	}
	return out
}

// Compile compiles every engine in in and arranges them into a pending
// document.
func Compile(in Input, c *engine.Compiler) (*Pending, error) {
	if c == nil {
		c = &engine.Compiler{}
	}
	if err := ValidateOrder(in.Order); err != nil {
		return nil, err
	}
	names := append([]string{in.Default, in.PrivateDefault}, in.Order...)
	specs := ResolveIdentities(in.Engines, names...)

	compiled := make(map[string]engine.Engine, len(specs))
	var warnings []engine.Warning
	for _, name := range sortedNames(specs) {
		eng, ws, err := c.Compile(name, specs[name])
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, ws...)
		compiled[name] = eng
	}

	doc := Document{
		Version: engine.SchemaVersion,
		Engines: Arrange(compiled, in.Order),
		MetaData: MetaData{
			UseSavedOrder: len(in.Order) > 0,
		},
	}
	if in.Default != "" {
		doc.MetaData.Current = in.Default
		doc.MetaData.Hash = HashPlaceholder
	}
	if in.PrivateDefault != "" {
		doc.MetaData.Private = in.PrivateDefault
		doc.MetaData.PrivateHash = PrivateHashPlaceholder
	}
	return &Pending{doc: doc, warnings: warnings}, nil
}

// Arrange orders compiled engines: names in order come first, in order,
// with metaData.order set to their position; the rest follow sorted by name
// and keep their metaData untouched. Order entries must already resolve to a
// compiled engine.
func Arrange(compiled map[string]engine.Engine, order []string) []engine.Record {
	out := make([]engine.Record, 0, len(compiled))
	placed := make(map[string]struct{}, len(order))
	metaKey := engine.InternalName(engine.FieldMetaData)
	for pos, name := range order {
		eng, ok := compiled[name]
		if !ok {
			eng = &engine.AppProvided{Name: name}
		}
		rec := eng.Record()
		meta, _ := rec[metaKey].(map[string]any)
		if meta == nil {
			meta = map[string]any{}
		}
		meta["order"] = pos
		rec[metaKey] = meta
		out = append(out, rec)
		placed[name] = struct{}{}
	}
	for _, name := range sortedNames(compiled) {
		if _, done := placed[name]; done {
			continue
		}
		out = append(out, compiled[name].Record())
	}
	return out
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
