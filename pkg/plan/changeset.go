// Package plan computes change sets: the ordered filesystem operations
// needed to bring a target root to the manifest-described layout. Computing
// a change set reads the filesystem but never writes it; the apply package
// executes the result.
package plan

import "fmt"

// OpKind tags a change-set operation record.
type OpKind string

const (
	OpCreateDir       OpKind = "create-dir"
	OpCreateFile      OpKind = "create-file"
	OpCreateSymlink   OpKind = "create-symlink"
	OpFixSymlink      OpKind = "fix-symlink"
	OpMoveTree        OpKind = "move-tree"
	OpRewriteText     OpKind = "rewrite-text"
	OpAppendGitignore OpKind = "append-gitignore"
	OpCopySubtree     OpKind = "copy-subtree"
	// OpSkip is a no-op marker kept in the change set so previews can show
	// why a manifest entry produced no work.
	OpSkip OpKind = "skip"
)

// Replacement is one regex substitution inside a rewrite operation. The
// applier re-applies the full list unconditionally; a non-matching pattern
// is a no-op.
type Replacement struct {
	Pattern     string
	Replacement string
}

// Op is a single planned filesystem operation. A change set is a pure
// value: every field is frozen at diff time.
type Op struct {
	Kind OpKind

	// Path is the operation's primary target, relative to the root:
	// the directory, file destination, link path, rewrite target, or the
	// source of a move.
	Path string

	// Target is the secondary path: symlink target (relative to the link's
	// directory), move destination, or subtree copy destination.
	Target string

	// CreateFile fields, frozen at diff time. Overwrite records that the
	// diff already saw the destination and the caller forced replacement;
	// without it an existing destination at apply time is skipped or failed
	// per SkipIfExists.
	TemplateID   string
	Variables    map[string]string
	SkipIfExists bool
	Overwrite    bool

	// MoveTree fields.
	PreferGitHistory bool

	// RewriteText fields.
	Replacements []Replacement

	// AppendGitignore fields.
	Lines []string

	// CopySubtree source id.
	SourceID string

	// Reason explains OpSkip entries.
	Reason string
}

// ChangeSet is the ordered operation list handed to the applier. The
// applier executes it exactly in order and never re-sorts.
type ChangeSet struct {
	Ops []Op
}

// Empty reports whether the change set contains no real work (skip markers
// do not count).
func (c *ChangeSet) Empty() bool {
	for _, op := range c.Ops {
		if op.Kind != OpSkip {
			return false
		}
	}
	return true
}

// Counts tallies operations per kind, excluding skip markers.
type Counts struct {
	Dirs      int
	Files     int
	Symlinks  int
	Moves     int
	Rewrites  int
	Gitignore int
	Subtrees  int
	Skipped   int
}

// Count walks the change set once and tallies per-kind totals.
func (c *ChangeSet) Count() Counts {
	var n Counts
	for _, op := range c.Ops {
		switch op.Kind {
		case OpCreateDir:
			n.Dirs++
		case OpCreateFile:
			n.Files++
		case OpCreateSymlink, OpFixSymlink:
			n.Symlinks++
		case OpMoveTree:
			n.Moves++
		case OpRewriteText:
			n.Rewrites++
		case OpAppendGitignore:
			n.Gitignore++
		case OpCopySubtree:
			n.Subtrees++
		case OpSkip:
			n.Skipped++
		}
	}
	return n
}

// Summary renders the single closing line of a preview, e.g.
// "Summary: 3 directories, 7 files, 1 symlink".
func (c *ChangeSet) Summary() string {
	n := c.Count()
	parts := []string{}
	add := func(count int, singular, plural string) {
		if count == 0 {
			return
		}
		name := plural
		if count == 1 {
			name = singular
		}
		parts = append(parts, fmt.Sprintf("%d %s", count, name))
	}
	add(n.Dirs, "directory", "directories")
	add(n.Files, "file", "files")
	add(n.Symlinks, "symlink", "symlinks")
	add(n.Moves, "move", "moves")
	add(n.Rewrites, "rewrite", "rewrites")
	add(n.Gitignore, "gitignore update", "gitignore updates")
	add(n.Subtrees, "addon", "addons")
	if len(parts) == 0 {
		return "Summary: nothing to do"
	}
	out := "Summary: "
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	if n.Skipped > 0 {
		out += fmt.Sprintf(" (%d skipped)", n.Skipped)
	}
	return out
}
