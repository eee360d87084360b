package plan

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agentmd/agentmd/pkg/legacy"
	"github.com/agentmd/agentmd/pkg/manifest"
	"github.com/agentmd/agentmd/pkg/probe"
)

// Options carries caller-supplied policy into the diff. None of it lives in
// the manifest: force and symlink capability are per-invocation decisions.
type Options struct {
	// Force overwrites existing files not marked skip-if-exists.
	Force bool

	// SkipSymlinks omits every symlink operation, for hosts without
	// symlink capability. The capability probe itself happens in the CLI
	// layer.
	SkipSymlinks bool

	// Variables are frozen into each CreateFile record.
	Variables map[string]string
}

// Scaffold computes the additive change set for a fresh target: everything
// the manifest describes that the prober did not find. Operations are
// emitted in canonical order (directories, files, symlinks, gitignore,
// subtrees) so previews are deterministic; the applier still creates parent
// directories on demand.
func Scaffold(m *manifest.Manifest, st *probe.TargetState, opts Options) *ChangeSet {
	cs := &ChangeSet{}

	for _, dir := range m.Directories {
		if !st.Has(dir) {
			cs.Ops = append(cs.Ops, Op{Kind: OpCreateDir, Path: dir})
		}
	}

	for _, f := range m.Files {
		cs.Ops = append(cs.Ops, fileOp(f, st, opts))
	}

	if !opts.SkipSymlinks {
		for _, s := range m.Symlinks {
			if !st.Has(s.Link) {
				cs.Ops = append(cs.Ops, Op{Kind: OpCreateSymlink, Path: s.Link, Target: s.Target})
			}
		}
	}

	appendGitignoreOp(cs, m, st)
	appendSubtreeOps(cs, m, st)
	return cs
}

// Upgrade computes the migratory change set for a target already carrying
// the framework: legacy moves first, then text rewrites against post-move
// paths, then whatever the current layout still misses, and finally the
// quarantine of unmapped legacy files.
func Upgrade(m *manifest.Manifest, table *legacy.Table, st *probe.TargetState, opts Options) *ChangeSet {
	cs := &ChangeSet{}

	for _, pair := range st.LegacyMarkers {
		cs.Ops = append(cs.Ops, Op{
			Kind:             OpMoveTree,
			Path:             pair.Old,
			Target:           pair.New,
			PreferGitHistory: true,
		})
	}

	appendRewriteOps(cs, table, st)

	moveTargets := make(map[string]struct{}, len(st.LegacyMarkers))
	for _, pair := range st.LegacyMarkers {
		moveTargets[filepath.ToSlash(pair.New)] = struct{}{}
	}
	for _, dir := range m.Directories {
		if st.Has(dir) {
			continue
		}
		if _, filledByMove := moveTargets[filepath.ToSlash(dir)]; filledByMove {
			continue
		}
		cs.Ops = append(cs.Ops, Op{Kind: OpCreateDir, Path: dir})
	}

	for _, f := range m.Files {
		if !st.Has(f.Destination) {
			cs.Ops = append(cs.Ops, Op{
				Kind:         OpCreateFile,
				Path:         f.Destination,
				TemplateID:   f.TemplateID,
				Variables:    opts.Variables,
				SkipIfExists: f.SkipIfExists,
			})
		}
	}

	if !opts.SkipSymlinks {
		for _, s := range m.Symlinks {
			link := filepath.ToSlash(s.Link)
			if _, broken := st.BrokenSymlinks[link]; broken {
				cs.Ops = append(cs.Ops, Op{Kind: OpFixSymlink, Path: s.Link, Target: s.Target, Reason: "dangling"})
				continue
			}
			if actual, wrong := st.WrongTarget[link]; wrong {
				cs.Ops = append(cs.Ops, Op{Kind: OpFixSymlink, Path: s.Link, Target: s.Target, Reason: "points at " + displayTarget(actual)})
				continue
			}
			if !st.Has(s.Link) {
				cs.Ops = append(cs.Ops, Op{Kind: OpCreateSymlink, Path: s.Link, Target: s.Target})
			}
		}
	}

	appendGitignoreOp(cs, m, st)
	appendSubtreeOps(cs, m, st)
	appendQuarantineOps(cs, table, st)
	return cs
}

func fileOp(f manifest.FileSpec, st *probe.TargetState, opts Options) Op {
	exists := st.Has(f.Destination)
	create := Op{
		Kind:         OpCreateFile,
		Path:         f.Destination,
		TemplateID:   f.TemplateID,
		Variables:    opts.Variables,
		SkipIfExists: f.SkipIfExists,
	}
	if !exists {
		return create
	}
	if !f.SkipIfExists && opts.Force {
		create.Overwrite = true
		return create
	}
	return Op{Kind: OpSkip, Path: f.Destination, Reason: "already exists"}
}

// appendRewriteOps scans each rewrite-target file that exists in the target
// for legacy terminology. A match emits one rewrite carrying the full fixed
// replacement list (not just the matching subset). When the file itself sits
// under a path being moved, the rewrite records the post-move path: the move
// always precedes the rewrite in the change set.
func appendRewriteOps(cs *ChangeSet, table *legacy.Table, st *probe.TargetState) {
	replacements := make([]Replacement, 0, len(table.Rewrites))
	for _, r := range table.Rewrites {
		replacements = append(replacements, Replacement{Pattern: r.Pattern, Replacement: r.Replacement})
	}

	for _, rel := range table.RewriteTargets {
		content, err := os.ReadFile(filepath.Join(st.Root, rel))
		if err != nil {
			continue
		}
		if !table.MatchesAny(string(content)) {
			continue
		}
		cs.Ops = append(cs.Ops, Op{
			Kind:         OpRewriteText,
			Path:         postMovePath(rel, st.LegacyMarkers),
			Replacements: replacements,
		})
	}
}

// postMovePath rewrites rel to its location after the pending legacy moves.
func postMovePath(rel string, moves []legacy.Mapping) string {
	slashed := filepath.ToSlash(rel)
	for _, pair := range moves {
		old := filepath.ToSlash(pair.Old)
		if slashed == old {
			return pair.New
		}
		if strings.HasPrefix(slashed, old+"/") {
			return filepath.ToSlash(pair.New) + strings.TrimPrefix(slashed, old)
		}
	}
	return rel
}

func appendGitignoreOp(cs *ChangeSet, m *manifest.Manifest, st *probe.TargetState) {
	if len(m.Gitignore) == 0 {
		return
	}
	existing := ""
	if raw, err := os.ReadFile(filepath.Join(st.Root, ".gitignore")); err == nil {
		existing = string(raw)
	}
	var missing []string
	for _, line := range m.Gitignore {
		if !strings.Contains(existing, line) {
			missing = append(missing, line)
		}
	}
	if len(missing) > 0 {
		cs.Ops = append(cs.Ops, Op{Kind: OpAppendGitignore, Path: ".gitignore", Lines: missing})
	}
}

func appendSubtreeOps(cs *ChangeSet, m *manifest.Manifest, st *probe.TargetState) {
	for _, a := range m.Addons {
		if pathPresent(filepath.Join(st.Root, a.Destination)) {
			continue
		}
		cs.Ops = append(cs.Ops, Op{Kind: OpCopySubtree, SourceID: a.ID, Target: a.Destination})
	}
}

// appendQuarantineOps moves allowlisted root-level legacy files into the
// quarantine container. Content is untouched; this is relocation, not
// migration.
func appendQuarantineOps(cs *ChangeSet, table *legacy.Table, st *probe.TargetState) {
	entries, err := os.ReadDir(st.Root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !matchesAnyGlob(table.QuarantineGlobs, name) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(st.Root, name))
		if err != nil {
			continue
		}
		if !containsAny(string(content), table.QuarantineMarkers) {
			continue
		}
		cs.Ops = append(cs.Ops, Op{
			Kind:             OpMoveTree,
			Path:             name,
			Target:           filepath.ToSlash(filepath.Join(table.QuarantineDir, name)),
			PreferGitHistory: true,
		})
	}
}

func matchesAnyGlob(globs []string, name string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

func containsAny(content string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return true
		}
	}
	return false
}

func displayTarget(actual string) string {
	if actual == "" {
		return "a non-link path"
	}
	return actual
}

func pathPresent(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
