// Package settings assembles compiled engines into the search settings
// document and renders it once hash values are known.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"mozsearch/internal/engine"
)

// Placeholder tokens stand in for hash values until Finalize.
const (
	HashPlaceholder        = "@hash@"
	PrivateHashPlaceholder = "@privateHash@"
)

// ErrHashMissing is returned by Finalize when a placeholder has no value.
var ErrHashMissing = errors.New("HASH_MISSING")

// MetaData is the top-level metaData block of the settings document.
type MetaData struct {
	Current       string `json:"current,omitempty"`
	Hash          string `json:"hash,omitempty"`
	Private       string `json:"private,omitempty"`
	PrivateHash   string `json:"privateHash,omitempty"`
	UseSavedOrder bool   `json:"useSavedOrder"`
}

// Document is the search settings document. MetaData is declared last so it
// renders after the engines.
type Document struct {
	Version  int             `json:"version"`
	Engines  []engine.Record `json:"engines"`
	MetaData MetaData        `json:"metaData"`
}

// Hashes carries the computed verification hashes.
type Hashes struct {
	Hash        string
	PrivateHash string
}

// Pending is a document whose hash fields still hold placeholders. It
// cannot be written out; call Finalize.
type Pending struct {
	doc      Document
	warnings []engine.Warning
}

// Document returns a copy of the pending document.
func (p *Pending) Document() Document {
	out := p.doc
	out.Engines = make([]engine.Record, len(p.doc.Engines))
	for i, rec := range p.doc.Engines {
		out.Engines[i] = rec.Clone()
	}
	return out
}

// Warnings returns the deprecation notices raised while compiling.
func (p *Pending) Warnings() []engine.Warning {
	return append([]engine.Warning(nil), p.warnings...)
}

// NeedsHash reports whether the default engine hash must be supplied.
func (p *Pending) NeedsHash() bool { return p.doc.MetaData.Hash == HashPlaceholder }

// NeedsPrivateHash reports whether the private default hash must be supplied.
func (p *Pending) NeedsPrivateHash() bool {
	return p.doc.MetaData.PrivateHash == PrivateHashPlaceholder
}

// Render encodes the document with placeholders still in place.
func (p *Pending) Render() ([]byte, error) {
	return encode(p.doc)
}

// Finalize renders the document and substitutes the placeholder tokens with
// h. When no default is configured there is nothing to substitute and h is
// ignored.
func (p *Pending) Finalize(h Hashes) (*Final, error) {
	blob, err := p.Render()
	if err != nil {
		return nil, err
	}
	if !p.NeedsHash() && !p.NeedsPrivateHash() {
		return &Final{data: blob, engines: len(p.doc.Engines)}, nil
	}
	if p.NeedsHash() {
		if h.Hash == "" {
			return nil, fmt.Errorf("%w: default engine %q has no hash", ErrHashMissing, p.doc.MetaData.Current)
		}
		if blob, err = substitute(blob, "hash", HashPlaceholder, h.Hash); err != nil {
			return nil, err
		}
	}
	if p.NeedsPrivateHash() {
		if h.PrivateHash == "" {
			return nil, fmt.Errorf("%w: private default engine %q has no hash", ErrHashMissing, p.doc.MetaData.Private)
		}
		if blob, err = substitute(blob, "privateHash", PrivateHashPlaceholder, h.PrivateHash); err != nil {
			return nil, err
		}
	}
	return &Final{data: blob, engines: len(p.doc.Engines)}, nil
}

// Final is a fully rendered settings document ready to be packaged.
type Final struct {
	data    []byte
	engines int
}

// Bytes returns the rendered JSON.
func (f *Final) Bytes() []byte { return append([]byte(nil), f.data...) }

// EngineCount is the number of engine records in the document.
func (f *Final) EngineCount() int { return f.engines }

// substitute replaces the last `"key":"placeholder"` occurrence. metaData is
// rendered last, so the last occurrence is always the top-level field.
func substitute(blob []byte, key, placeholder, value string) ([]byte, error) {
	token := []byte(fmt.Sprintf("%q:%q", key, placeholder))
	idx := bytes.LastIndex(blob, token)
	if idx < 0 {
		return nil, fmt.Errorf("%w: placeholder for %q not found in rendered document", ErrHashMissing, key)
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	replacement := append([]byte(fmt.Sprintf("%q:", key)), quoted...)
	out := make([]byte, 0, len(blob)-len(token)+len(replacement))
	out = append(out, blob[:idx]...)
	out = append(out, replacement...)
	out = append(out, blob[idx+len(token):]...)
	return out, nil
}

// encode renders compact JSON without HTML escaping, matching the browser's
// own serializer for URLs containing '&'.
func encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("DOC_SETTINGS_ENCODE: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
