package engine

// SchemaVersion is the search settings schema version produced by the
// migration chain.
const SchemaVersion = 12

// Friendly field names accepted in engine declarations.
const (
	FieldName           = "name"
	FieldIsAppProvided  = "isAppProvided"
	FieldLoadPath       = "loadPath"
	FieldURLs           = "urls"
	FieldIcon           = "icon"
	FieldIconMap        = "iconMapObj"
	FieldIconURL        = "iconURL"
	FieldIconUpdateURL  = "iconUpdateURL"
	FieldHasPreferred   = "hasPreferredIcon"
	FieldUpdateInterval = "updateInterval"
	FieldUpdateURL      = "updateURL"
	FieldDefinedAliases = "definedAliases"
	FieldMetaData       = "metaData"
)

// internalNames maps friendly names to the field names the browser stores in
// search.json. Keep it in lockstep with SchemaVersion.
var internalNames = map[string]string{
	FieldName:           "_name",
	FieldIsAppProvided:  "_isAppProvided",
	FieldLoadPath:       "_loadPath",
	FieldHasPreferred:   "_hasPreferredIcon",
	FieldUpdateInterval: "_updateInterval",
	FieldUpdateURL:      "_updateURL",
	FieldIconUpdateURL:  "_iconUpdateURL",
	FieldIconURL:        "_iconURL",
	FieldIconMap:        "_iconMapObj",
	FieldMetaData:       "_metaData",
	FieldDefinedAliases: "_definedAliases",
	FieldURLs:           "_urls",
	"orderHint":         "_orderHint",
	"telemetryId":       "_telemetryId",
	"filePath":          "_filePath",
	"extensionID":       "_extensionID",
	"locale":            "_locale",
	"searchForm":        "__searchForm",
}

// InternalName returns the stored name for a friendly field name. Unknown
// names are returned unchanged.
func InternalName(field string) string {
	if internal, ok := internalNames[field]; ok {
		return internal
	}
	return field
}

// MapFields renames the top-level keys of spec to their internal names.
func MapFields(spec Spec) Record {
	out := make(Record, len(spec))
	for k, v := range spec {
		out[InternalName(k)] = v
	}
	return out
}
