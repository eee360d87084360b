package apply

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	git "github.com/go-git/go-git/v5"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// gitContext captures what the applier needs to know about version control
// at the target root: whether a working tree is present and which paths the
// project already ignores. Detection is best-effort; a nil context means
// plain filesystem moves.
type gitContext struct {
	worktreeRoot string
	matcher      gitignore.Matcher
}

// detectGit opens the repository containing root, if any. Prefers go-git
// for detection; the actual history-preserving move still shells out to the
// git CLI because that is the primitive that records renames.
func detectGit(root string) *gitContext {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil
	}

	ctx := &gitContext{worktreeRoot: wt.Filesystem.Root()}

	// Ignored paths are untracked by definition, so git mv would fail on
	// them; knowing the patterns lets the applier skip straight to a plain
	// rename.
	if patterns, err := gitignore.ReadPatterns(osfs.New(ctx.worktreeRoot), nil); err == nil && len(patterns) > 0 {
		ctx.matcher = gitignore.NewMatcher(patterns)
	}
	return ctx
}

// ignored reports whether rel (slash-separated, relative to the worktree
// root) matches the project's gitignore patterns.
func (g *gitContext) ignored(rel string, isDir bool) bool {
	if g == nil || g.matcher == nil {
		return false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	return g.matcher.Match(parts, isDir)
}

// moveTree relocates oldPath to newPath (both relative to root). Inside a
// working tree it tries `git mv` first so history follows the rename, then
// falls back to a plain rename. Returns the primitive used ("git mv" or
// "rename").
func moveTree(root string, g *gitContext, oldPath, newPath string, preferGit bool) (string, error) {
	oldAbs := filepath.Join(root, oldPath)
	newAbs := filepath.Join(root, newPath)

	if _, err := os.Lstat(oldAbs); err != nil {
		return "", fmt.Errorf("move source %s no longer exists", oldPath)
	}
	if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
		return "", fmt.Errorf("creating parent for %s: %w", newPath, err)
	}

	if preferGit && g != nil {
		isDir := false
		if fi, err := os.Stat(oldAbs); err == nil {
			isDir = fi.IsDir()
		}
		relToWT, err := filepath.Rel(g.worktreeRoot, oldAbs)
		if err == nil && !g.ignored(relToWT, isDir) {
			if err := runGitMv(g.worktreeRoot, oldAbs, newAbs); err == nil {
				return "git mv", nil
			}
			// Untracked path or CLI missing: fall through to plain rename.
		}
	}

	if err := os.Rename(oldAbs, newAbs); err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", oldPath, newPath, err)
	}
	return "rename", nil
}

func runGitMv(worktreeRoot, oldAbs, newAbs string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return err
	}
	oldRel, err := filepath.Rel(worktreeRoot, oldAbs)
	if err != nil {
		return err
	}
	newRel, err := filepath.Rel(worktreeRoot, newAbs)
	if err != nil {
		return err
	}
	cmd := exec.Command("git", "mv", oldRel, newRel)
	cmd.Dir = worktreeRoot
	return cmd.Run()
}
