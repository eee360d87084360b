// Package probe inspects a target root and reports which manifest paths
// already exist, which legacy-layout markers are present, and how the root
// classifies overall. Probing never writes.
//
// Symlink semantics: the Exists set uses a link-following stat, so a
// dangling symlink is absent from Exists. Dangling links are reported
// separately in BrokenSymlinks (lstat sees the link, stat cannot resolve
// it), and links that resolve but point somewhere other than the manifest
// target land in WrongTarget. The diff engine needs all three to choose
// between "create", "fix", and "leave alone".
package probe

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentmd/agentmd/pkg/legacy"
	"github.com/agentmd/agentmd/pkg/manifest"
)

// Classification describes what the prober found at the target root.
type Classification int

const (
	// NoFramework means none of the marker paths exist: a fresh scaffold.
	NoFramework Classification = iota
	// CurrentLayout means the framework is present in the current layout.
	CurrentLayout
	// LegacyLayout means at least one legacy move pair is live.
	LegacyLayout
)

func (c Classification) String() string {
	switch c {
	case NoFramework:
		return "no framework"
	case CurrentLayout:
		return "current layout"
	case LegacyLayout:
		return "legacy layout"
	default:
		return "unknown"
	}
}

// TargetState is the prober's read-only snapshot of the target root. It is
// recomputed per invocation and never persisted.
type TargetState struct {
	Root           string
	Exists         map[string]struct{}
	LegacyMarkers  []legacy.Mapping
	BrokenSymlinks map[string]struct{}
	WrongTarget    map[string]string
	Classification Classification
}

// Has reports whether a manifest-relative path was found at probe time.
func (s *TargetState) Has(rel string) bool {
	_, ok := s.Exists[filepath.ToSlash(rel)]
	return ok
}

// Probe builds a TargetState for root against the manifest and legacy table.
// Root must be a readable directory; an empty directory is valid input.
func Probe(root string, m *manifest.Manifest, table *legacy.Table) (*TargetState, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("target root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target root %s is not a directory", root)
	}

	state := &TargetState{
		Root:           root,
		Exists:         make(map[string]struct{}),
		BrokenSymlinks: make(map[string]struct{}),
		WrongTarget:    make(map[string]string),
	}

	for _, rel := range m.Paths() {
		if pathExists(filepath.Join(root, rel)) {
			state.Exists[filepath.ToSlash(rel)] = struct{}{}
		}
	}

	for _, s := range m.Symlinks {
		classifySymlink(state, filepath.Join(root, s.Link), filepath.ToSlash(s.Link), s.Target)
	}

	for _, pair := range table.Moves {
		oldExists := pathExists(filepath.Join(root, pair.Old))
		newExists := pathExists(filepath.Join(root, pair.New))
		if oldExists && !newExists {
			state.LegacyMarkers = append(state.LegacyMarkers, pair)
		}
	}

	state.Classification = classify(root, table, state)
	return state, nil
}

func classify(root string, table *legacy.Table, state *TargetState) Classification {
	anyMarker := false
	for _, marker := range table.Markers {
		if pathExists(filepath.Join(root, marker)) {
			anyMarker = true
			break
		}
	}
	if !anyMarker {
		return NoFramework
	}
	if len(state.LegacyMarkers) > 0 {
		return LegacyLayout
	}
	return CurrentLayout
}

// classifySymlink sorts a manifest link into broken or wrong-target buckets.
// A missing link stays out of both (and out of Exists), which the diff
// engine reads as "create".
func classifySymlink(state *TargetState, abs, rel, wantTarget string) {
	fi, err := os.Lstat(abs)
	if err != nil {
		return // not present at all
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		// A regular file or directory squatting on the link path. Treat as
		// wrong target so the upgrade diff replaces it.
		state.WrongTarget[rel] = ""
		return
	}
	if _, err := os.Stat(abs); err != nil {
		state.BrokenSymlinks[rel] = struct{}{}
		return
	}
	actual, err := os.Readlink(abs)
	if err != nil {
		state.BrokenSymlinks[rel] = struct{}{}
		return
	}
	if filepath.ToSlash(actual) != filepath.ToSlash(wantTarget) {
		state.WrongTarget[rel] = filepath.ToSlash(actual)
	}
}

// pathExists follows symlinks: a dangling link reports false.
func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
