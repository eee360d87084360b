// Package manifest defines the declarative description of the target
// documentation layout and loads it from a bundled JSON asset.
package manifest

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agentmd/agentmd/pkg/safeio"
)

// FileSpec maps a bundled template to a destination file in the target root.
type FileSpec struct {
	Destination  string `json:"destination"`
	TemplateID   string `json:"template"`
	SkipIfExists bool   `json:"skipIfExists"`
}

// SymlinkSpec describes a symlink to maintain. Target is expressed relative
// to the link's own directory.
type SymlinkSpec struct {
	Link   string `json:"link"`
	Target string `json:"target"`
}

// AddonSpec names a bundled subtree that is deep-copied wholesale into the
// target when its destination does not exist yet.
type AddonSpec struct {
	ID          string `json:"id"`
	Destination string `json:"destination"`
}

// Manifest is the desired target layout. It is immutable once loaded;
// callers treat it as read-only for the lifetime of the invocation.
type Manifest struct {
	Version     int           `json:"version"`
	Directories []string      `json:"directories"`
	Files       []FileSpec    `json:"files"`
	Symlinks    []SymlinkSpec `json:"symlinks"`
	Gitignore   []string      `json:"gitignore"`
	Addons      []AddonSpec   `json:"addons"`
}

// Load reads and validates the manifest asset at path inside assetFS.
// Schema violations and invariant violations are configuration errors:
// the caller is expected to abort before any mutation.
func Load(assetFS fs.FS, path string, schema []byte) (*Manifest, error) {
	raw, err := fs.ReadFile(assetFS, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest asset %s: %w", path, err)
	}

	if err := validateSchema(raw, schema); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest JSON: %w", err)
	}

	if err := m.check(); err != nil {
		return nil, err
	}
	return &m, nil
}

func validateSchema(doc, schema []byte) error {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return fmt.Errorf("compiling manifest schema: %w", err)
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validating manifest: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("manifest schema violation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// check enforces the invariants the schema cannot express: unique file
// destinations, unique link paths, and no traversal in any relative path.
func (m *Manifest) check() error {
	seen := make(map[string]struct{})
	for _, f := range m.Files {
		clean, err := safeio.CleanRelPath(f.Destination)
		if err != nil {
			return fmt.Errorf("manifest file %q: %w", f.Destination, err)
		}
		if _, dup := seen[clean]; dup {
			return fmt.Errorf("manifest file destination %q appears more than once", f.Destination)
		}
		seen[clean] = struct{}{}
		if strings.TrimSpace(f.TemplateID) == "" {
			return fmt.Errorf("manifest file %q has an empty template id", f.Destination)
		}
	}

	links := make(map[string]struct{})
	for _, s := range m.Symlinks {
		clean, err := safeio.CleanRelPath(s.Link)
		if err != nil {
			return fmt.Errorf("manifest symlink %q: %w", s.Link, err)
		}
		if _, dup := links[clean]; dup {
			return fmt.Errorf("manifest symlink %q appears more than once", s.Link)
		}
		links[clean] = struct{}{}
	}

	for _, d := range m.Directories {
		if _, err := safeio.CleanRelPath(d); err != nil {
			return fmt.Errorf("manifest directory %q: %w", d, err)
		}
	}
	for _, a := range m.Addons {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("manifest addon with empty id")
		}
		if _, err := safeio.CleanRelPath(a.Destination); err != nil {
			return fmt.Errorf("manifest addon %q: %w", a.ID, err)
		}
	}
	return nil
}

// Paths returns every relative path the manifest describes: directories,
// file destinations, and symlink paths. The prober checks exactly this set.
func (m *Manifest) Paths() []string {
	out := make([]string, 0, len(m.Directories)+len(m.Files)+len(m.Symlinks))
	out = append(out, m.Directories...)
	for _, f := range m.Files {
		out = append(out, f.Destination)
	}
	for _, s := range m.Symlinks {
		out = append(out, s.Link)
	}
	return out
}
