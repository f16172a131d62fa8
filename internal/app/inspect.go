package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"mozsearch/internal/codec"
	"mozsearch/internal/config"
	"mozsearch/internal/hash"
	"mozsearch/internal/settings"
)

// InspectResult summarizes a settings file found on disk.
type InspectResult struct {
	Path          string          `json:"path"`
	Version       int             `json:"version"`
	Engines       []string        `json:"engines"`
	Current       string          `json:"current,omitempty"`
	Private       string          `json:"private,omitempty"`
	UseSavedOrder bool            `json:"useSavedOrder"`
	AppName       string          `json:"appName,omitempty"`
	HashValid     *bool           `json:"hashValid,omitempty"`
	PrivateValid  *bool           `json:"privateHashValid,omitempty"`
	Document      json.RawMessage `json:"document"`
}

// Inspect decodes a search.json.mozlz4 file. When appName is set, or the
// application can be resolved, the stored hashes are checked against the
// profile directory containing the file.
func (s *Service) Inspect(path, appName string) (InspectResult, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return InspectResult{}, err
	}
	blob, err := os.ReadFile(expanded)
	if err != nil {
		return InspectResult{}, fmt.Errorf("PKG_READ: %w", err)
	}
	raw, err := codec.Decompress(blob)
	if err != nil {
		return InspectResult{}, err
	}
	var doc settings.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return InspectResult{}, fmt.Errorf("DOC_SETTINGS_PARSE: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return InspectResult{}, fmt.Errorf("DOC_SETTINGS_PARSE: %w", err)
	}
	res := InspectResult{
		Path:          expanded,
		Version:       doc.Version,
		Engines:       make([]string, 0, len(doc.Engines)),
		Current:       doc.MetaData.Current,
		Private:       doc.MetaData.Private,
		UseSavedOrder: doc.MetaData.UseSavedOrder,
		Document:      json.RawMessage(pretty.Bytes()),
	}
	for _, rec := range doc.Engines {
		name, _ := rec["_name"].(string)
		res.Engines = append(res.Engines, name)
	}

	if appName == "" {
		if info, err := s.Application(); err == nil {
			appName = info.Name
		}
	}
	if appName == "" || (doc.MetaData.Current == "" && doc.MetaData.Private == "") {
		return res, nil
	}
	res.AppName = appName
	g := &hash.Generator{Digest: s.Digest, AppName: appName}
	location := hash.ProfileLocation(filepath.Dir(expanded))
	if doc.MetaData.Current != "" {
		want, err := g.Hash(location, doc.MetaData.Current)
		if err != nil {
			return InspectResult{}, err
		}
		ok := want == doc.MetaData.Hash
		res.HashValid = &ok
	}
	if doc.MetaData.Private != "" {
		want, err := g.Hash(location, doc.MetaData.Private)
		if err != nil {
			return InspectResult{}, err
		}
		ok := want == doc.MetaData.PrivateHash
		res.PrivateValid = &ok
	}
	return res, nil
}
