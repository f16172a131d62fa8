package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMigrateToV11RewritesObjectKeys(t *testing.T) {
	spec := Spec{
		FieldIconMap: map[string]any{
			`{"width":16,"height":16}`: "https://example.com/16.png",
		},
	}
	out, warnings, err := Migrate("Example", spec)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	want := map[string]any{"16": "https://example.com/16.png"}
	if diff := cmp.Diff(want, out[FieldIconMap]); diff != "" {
		t.Fatalf("icon map mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %+v", warnings)
	}
	if warnings[0].Old != `{"width":16,"height":16}` || warnings[0].New != "16" {
		t.Fatalf("warning should name the key pair, got %+v", warnings[0])
	}
}

func TestMigrateToV11KeepsCanonicalKeys(t *testing.T) {
	spec := Spec{FieldIconMap: map[string]any{"16": "a", "32": "b"}}
	out, warnings, err := Migrate("Example", spec)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", warnings)
	}
	if diff := cmp.Diff(map[string]any{"16": "a", "32": "b"}, out[FieldIconMap]); diff != "" {
		t.Fatalf("icon map mismatch (-want +got):\n%s", diff)
	}
}

func TestMigrateToV11CanonicalKeyWinsOverLegacy(t *testing.T) {
	spec := Spec{FieldIconMap: map[string]any{
		"16":                       "canonical",
		`{"width":16,"height":16}`: "legacy",
	}}
	out, warnings, err := Migrate("Example", spec)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if got := out[FieldIconMap].(map[string]any)["16"]; got != "canonical" {
		t.Fatalf("expected canonical value to win, got %v", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning for the legacy key, got %d", len(warnings))
	}
}

func TestMigrateToV11RejectsGarbageKeys(t *testing.T) {
	for _, key := range []string{"small", `{"height":16}`, "-4", "1.5"} {
		t.Run(key, func(t *testing.T) {
			_, _, err := Migrate("Example", Spec{FieldIconMap: map[string]any{key: "x"}})
			if err == nil {
				t.Fatalf("expected error for key %q", key)
			}
		})
	}
}

func TestMigrateToV12RejectsHasPreferredIcon(t *testing.T) {
	for _, value := range []any{true, false, "yes"} {
		spec := Spec{
			FieldURLs:         []any{map[string]any{"template": "https://example.com/?q={searchTerms}"}},
			FieldHasPreferred: value,
		}
		_, _, err := Migrate("Example", spec)
		if !errors.Is(err, ErrSchemaRejected) {
			t.Fatalf("expected ErrSchemaRejected for %v, got %v", value, err)
		}
	}
}

func TestMigrateToV12FoldsLegacyIconFields(t *testing.T) {
	tests := []struct {
		name     string
		spec     Spec
		want     map[string]any
		warnings int
	}{
		{
			name:     "iconURL",
			spec:     Spec{FieldIconURL: "https://example.com/a.png"},
			want:     map[string]any{"16": "https://example.com/a.png"},
			warnings: 1,
		},
		{
			name:     "iconUpdateURL",
			spec:     Spec{FieldIconUpdateURL: "https://example.com/b.png"},
			want:     map[string]any{"16": "https://example.com/b.png"},
			warnings: 1,
		},
		{
			name: "update URL wins",
			spec: Spec{
				FieldIconURL:       "https://example.com/a.png",
				FieldIconUpdateURL: "https://example.com/b.png",
			},
			want:     map[string]any{"16": "https://example.com/b.png"},
			warnings: 2,
		},
		{
			name: "merged with map",
			spec: Spec{
				FieldIconURL: "https://example.com/a.png",
				FieldIconMap: map[string]any{"32": "https://example.com/32.png"},
			},
			want:     map[string]any{"16": "https://example.com/a.png", "32": "https://example.com/32.png"},
			warnings: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, warnings, err := Migrate("Example", tt.spec)
			if err != nil {
				t.Fatalf("migrate failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, out[FieldIconMap]); diff != "" {
				t.Fatalf("icon map mismatch (-want +got):\n%s", diff)
			}
			if len(warnings) != tt.warnings {
				t.Fatalf("expected %d warnings, got %+v", tt.warnings, warnings)
			}
			for _, legacy := range []string{FieldIconURL, FieldIconUpdateURL} {
				if _, ok := out[legacy]; ok {
					t.Fatalf("legacy field %q should be dropped", legacy)
				}
			}
		})
	}
}

func TestMigrateIsNoopOnCurrentSchema(t *testing.T) {
	spec := Spec{
		FieldURLs:           []any{map[string]any{"template": "https://example.com/?q={searchTerms}"}},
		FieldIconMap:        map[string]any{"16": "https://example.com/favicon.png"},
		FieldUpdateInterval: int64(86400000),
		FieldDefinedAliases: []any{"@ex"},
	}
	before, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	once, warnings, err := Migrate("Example", spec)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %+v", warnings)
	}
	twice, _, err := Migrate("Example", once)
	if err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	for _, got := range []Spec{once, twice} {
		after, err := json.Marshal(got)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(before) != string(after) {
			t.Fatalf("migration changed a current record:\nbefore %s\nafter  %s", before, after)
		}
	}
}

func TestMigrateDoesNotMutateInput(t *testing.T) {
	icons := map[string]any{`{"width":32,"height":32}`: "x"}
	spec := Spec{FieldIconMap: icons, FieldIconURL: "y"}
	if _, _, err := Migrate("Example", spec); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if _, ok := spec[FieldIconURL]; !ok {
		t.Fatalf("input spec was modified")
	}
	if _, ok := icons[`{"width":32,"height":32}`]; !ok || len(icons) != 1 {
		t.Fatalf("input icon map was modified: %+v", icons)
	}
}

func TestMigrationsAreOrdered(t *testing.T) {
	for i := 1; i < len(Migrations); i++ {
		if Migrations[i].Version <= Migrations[i-1].Version {
			t.Fatalf("migration %d (v%d) is out of order", i, Migrations[i].Version)
		}
	}
	if last := Migrations[len(Migrations)-1].Version; last != SchemaVersion {
		t.Fatalf("last migration targets v%d, schema is v%d", last, SchemaVersion)
	}
}
