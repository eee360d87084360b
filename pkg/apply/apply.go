// Package apply executes a previously computed change set against the real
// filesystem. Operations run strictly in change-set order; each failure is
// isolated into the report and the run continues. Only precondition
// failures (unreadable root, unresolvable template id) abort before any
// mutation.
package apply

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentmd/agentmd/pkg/logger"
	"github.com/agentmd/agentmd/pkg/plan"
	"github.com/agentmd/agentmd/pkg/render"
	"github.com/agentmd/agentmd/pkg/safeio"
)

// gitignoreHeader introduces the block of lines agentmd appends.
const gitignoreHeader = "# managed by agentmd"

// Applier executes change sets against a target root. Template and addon
// sources are injected so the core carries no implicit asset paths.
type Applier struct {
	root      string
	templates fs.FS
	addons    fs.FS
}

// New builds an Applier for the target root.
func New(root string, templates, addons fs.FS) *Applier {
	return &Applier{root: root, templates: templates, addons: addons}
}

// Apply runs every operation in order and reports per-operation outcomes.
// It returns an error only for precondition failures, before any mutation.
func (a *Applier) Apply(cs *plan.ChangeSet) (*Report, error) {
	if err := a.preflight(cs); err != nil {
		return nil, err
	}

	gctx := detectGit(a.root)
	report := &Report{}

	for _, op := range cs.Ops {
		switch op.Kind {
		case plan.OpSkip:
			report.add(op, Skipped, op.Reason)
		case plan.OpCreateDir:
			a.applyCreateDir(report, op)
		case plan.OpCreateFile:
			a.applyCreateFile(report, op)
		case plan.OpCreateSymlink, plan.OpFixSymlink:
			a.applySymlink(report, op)
		case plan.OpMoveTree:
			a.applyMoveTree(report, gctx, op)
		case plan.OpRewriteText:
			a.applyRewrite(report, op)
		case plan.OpAppendGitignore:
			a.applyGitignore(report, op)
		case plan.OpCopySubtree:
			a.applyCopySubtree(report, op)
		default:
			report.add(op, Failed, fmt.Sprintf("unknown operation kind %q", op.Kind))
		}
	}
	return report, nil
}

// preflight verifies the target root is a writable directory and that every
// referenced template id resolves to a bundled asset. A miss here is a
// configuration error and nothing has been mutated yet.
func (a *Applier) preflight(cs *plan.ChangeSet) error {
	info, err := os.Stat(a.root)
	if err != nil {
		return fmt.Errorf("target root %s: %w", a.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target root %s is not a directory", a.root)
	}

	for _, op := range cs.Ops {
		if op.Kind != plan.OpCreateFile {
			continue
		}
		if _, err := fs.ReadFile(a.templates, op.TemplateID+".md"); err != nil {
			return fmt.Errorf("template %q referenced by %s is not bundled: %w", op.TemplateID, op.Path, err)
		}
	}
	return nil
}

func (a *Applier) applyCreateDir(report *Report, op plan.Op) {
	abs := filepath.Join(a.root, op.Path)
	if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
		report.add(op, Skipped, "already exists")
		return
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	report.add(op, Succeeded, "")
}

func (a *Applier) applyCreateFile(report *Report, op plan.Op) {
	abs := filepath.Join(a.root, op.Path)

	// Re-check existence at apply time: the diff's decision is frozen into
	// the record, and a race since then must not flip skip into overwrite.
	if _, err := os.Lstat(abs); err == nil && !op.Overwrite {
		if op.SkipIfExists {
			report.add(op, Skipped, "already exists")
		} else {
			report.add(op, Failed, "destination already exists")
		}
		return
	}

	body, err := fs.ReadFile(a.templates, op.TemplateID+".md")
	if err != nil {
		report.add(op, Failed, fmt.Sprintf("template %q: %v", op.TemplateID, err))
		return
	}
	content := render.Render(string(body), op.Variables)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	report.add(op, Succeeded, "")
}

// applySymlink replaces whatever sits at the link path with a fresh link.
// The remove and create are adjacent with nothing between them; symlink
// rejection (permissions, platform) fails this operation only.
func (a *Applier) applySymlink(report *Report, op plan.Op) {
	abs := filepath.Join(a.root, op.Path)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		report.add(op, Failed, err.Error())
		return
	}

	if fi, err := os.Lstat(abs); err == nil {
		if fi.Mode()&os.ModeSymlink != 0 {
			if actual, err := os.Readlink(abs); err == nil && filepath.ToSlash(actual) == filepath.ToSlash(op.Target) {
				report.add(op, Skipped, "already correct")
				return
			}
		}
		// Removes files, links, and empty directories; a non-empty
		// directory squatting on the link path is a failure, not a purge.
		if err := os.Remove(abs); err != nil {
			report.add(op, Failed, fmt.Sprintf("cannot clear link path: %v", err))
			return
		}
	}

	if err := os.Symlink(op.Target, abs); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	report.add(op, Succeeded, "")
}

func (a *Applier) applyMoveTree(report *Report, gctx *gitContext, op plan.Op) {
	primitive, err := moveTree(a.root, gctx, op.Path, op.Target, op.PreferGitHistory)
	if err != nil {
		report.add(op, Failed, err.Error())
		logger.Warn("move failed", logger.String("from", op.Path), logger.Err(err))
		return
	}
	report.add(op, Succeeded, primitive)
}

func (a *Applier) applyRewrite(report *Report, op plan.Op) {
	abs := filepath.Join(a.root, op.Path)
	raw, err := os.ReadFile(abs)
	if err != nil {
		report.add(op, Failed, err.Error())
		return
	}

	content := string(raw)
	for _, rep := range op.Replacements {
		re, err := regexp.Compile(rep.Pattern)
		if err != nil {
			report.add(op, Failed, fmt.Sprintf("pattern %q: %v", rep.Pattern, err))
			return
		}
		content = re.ReplaceAllString(content, rep.Replacement)
	}

	if content == string(raw) {
		report.add(op, Skipped, "no changes")
		return
	}
	if err := safeio.WriteFilePreservePerms(abs, []byte(content)); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	report.add(op, Succeeded, "")
}

// applyGitignore appends missing lines under a single managed block. Lines
// are re-checked against the file at apply time so a concurrent edit never
// produces duplicates; content before the block is untouched.
func (a *Applier) applyGitignore(report *Report, op plan.Op) {
	abs := filepath.Join(a.root, op.Path)

	existing := ""
	if raw, err := os.ReadFile(abs); err == nil {
		existing = string(raw)
	}

	var missing []string
	for _, line := range op.Lines {
		if !strings.Contains(existing, line) {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		report.add(op, Skipped, "all lines present")
		return
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString("\n")
	}
	if !strings.Contains(existing, gitignoreHeader) {
		if existing != "" {
			b.WriteString("\n")
		}
		b.WriteString(gitignoreHeader + "\n")
	}
	for _, line := range missing {
		b.WriteString(line + "\n")
	}

	if err := safeio.WriteFilePreservePerms(abs, []byte(b.String())); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	report.add(op, Succeeded, fmt.Sprintf("+%d lines", len(missing)))
}

func (a *Applier) applyCopySubtree(report *Report, op plan.Op) {
	destAbs := filepath.Join(a.root, op.Target)
	if _, err := os.Stat(destAbs); err == nil {
		// Existing destination means "already handled"; never merge.
		report.add(op, Skipped, "destination already exists")
		return
	}

	if err := copySubtree(a.addons, op.SourceID, destAbs); err != nil {
		report.add(op, Failed, err.Error())
		return
	}
	report.add(op, Succeeded, "")
}

// copySubtree deep-copies the bundled subtree named id into destAbs.
func copySubtree(addons fs.FS, id, destAbs string) error {
	sub, err := fs.Sub(addons, id)
	if err != nil {
		return fmt.Errorf("addon %q not bundled: %w", id, err)
	}
	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(destAbs, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(sub, path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
