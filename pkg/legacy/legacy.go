// Package legacy holds the migration table that maps the superseded
// directory layout to the current one. The table ships as a bundled YAML
// asset so migration rules stay data, not code.
package legacy

import (
	"fmt"
	"io/fs"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Mapping is one old-to-new move rule. The pair is live when the old path
// exists and the new one does not.
type Mapping struct {
	Old string `yaml:"old"`
	New string `yaml:"new"`
}

// Rewrite is one terminology replacement applied to text-bearing files.
// Pattern is a regular expression; Replacement may reference groups.
type Rewrite struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`

	re *regexp.Regexp
}

// Apply runs the single rewrite against content. A non-matching pattern is a no-op.
func (r *Rewrite) Apply(content string) string {
	return r.re.ReplaceAllString(content, r.Replacement)
}

// Table is the full legacy migration rule set.
type Table struct {
	// Markers are paths whose presence means some version of the framework
	// is installed. None present means no framework.
	Markers []string `yaml:"markers"`

	// Moves are the old-to-new layout pairs.
	Moves []Mapping `yaml:"moves"`

	// Rewrites is the ordered terminology replacement list.
	Rewrites []Rewrite `yaml:"rewrites"`

	// RewriteTargets are the root-relative text files scanned for old-path
	// references.
	RewriteTargets []string `yaml:"rewriteTargets"`

	// QuarantineGlobs match root-level legacy files (doublestar syntax) that
	// get moved under QuarantineDir when they carry old-layout markers.
	QuarantineGlobs []string `yaml:"quarantineGlobs"`

	// QuarantineMarkers are the substrings that mark a quarantine candidate
	// as actually referencing the old layout.
	QuarantineMarkers []string `yaml:"quarantineMarkers"`

	// QuarantineDir is the container legacy files are moved into.
	QuarantineDir string `yaml:"quarantineDir"`
}

// Load reads the table asset at path inside assetFS and compiles its
// rewrite patterns.
func Load(assetFS fs.FS, path string) (*Table, error) {
	raw, err := fs.ReadFile(assetFS, path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy table asset %s: %w", path, err)
	}

	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parsing legacy table: %w", err)
	}

	for i := range t.Rewrites {
		re, err := regexp.Compile(t.Rewrites[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("legacy rewrite pattern %q: %w", t.Rewrites[i].Pattern, err)
		}
		t.Rewrites[i].re = re
	}
	return &t, nil
}

// ApplyRewrites runs every rewrite in table order against content and
// reports whether anything changed. Non-matching patterns are no-ops, so
// re-running the full list is always safe.
func (t *Table) ApplyRewrites(content string) (string, bool) {
	out := content
	for i := range t.Rewrites {
		out = t.Rewrites[i].Apply(out)
	}
	return out, out != content
}

// MatchesAny reports whether any rewrite pattern matches content.
func (t *Table) MatchesAny(content string) bool {
	for i := range t.Rewrites {
		if t.Rewrites[i].re.MatchString(content) {
			return true
		}
	}
	return false
}
