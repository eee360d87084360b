package plan

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// labels for the grouped preview, in display order.
var previewGroups = []struct {
	kind  OpKind
	title string
}{
	{OpMoveTree, "Move"},
	{OpRewriteText, "Rewrite"},
	{OpCreateDir, "Create directory"},
	{OpCreateFile, "Create file"},
	{OpCreateSymlink, "Create symlink"},
	{OpFixSymlink, "Fix symlink"},
	{OpAppendGitignore, "Update gitignore"},
	{OpCopySubtree, "Install addon"},
	{OpSkip, "Skip"},
}

// Preview renders the change set for human review: one line per operation,
// grouped by kind, with a closing summary line. The applier output never
// depends on this rendering.
func Preview(cs *ChangeSet) string {
	var b strings.Builder

	labelWidth := 0
	for _, g := range previewGroups {
		if w := runewidth.StringWidth(g.title); w > labelWidth {
			labelWidth = w
		}
	}

	for _, g := range previewGroups {
		for _, op := range cs.Ops {
			if op.Kind != g.kind {
				continue
			}
			label := runewidth.FillRight(g.title, labelWidth)
			b.WriteString(fmt.Sprintf("  %s  %s\n", label, describe(op)))
		}
	}

	b.WriteString(cs.Summary())
	b.WriteString("\n")
	return b.String()
}

func describe(op Op) string {
	switch op.Kind {
	case OpCreateDir:
		return op.Path + "/"
	case OpCreateFile:
		return fmt.Sprintf("%s (template %s)", op.Path, op.TemplateID)
	case OpCreateSymlink:
		return fmt.Sprintf("%s -> %s", op.Path, op.Target)
	case OpFixSymlink:
		return fmt.Sprintf("%s -> %s (%s)", op.Path, op.Target, op.Reason)
	case OpMoveTree:
		return fmt.Sprintf("%s -> %s", op.Path, op.Target)
	case OpRewriteText:
		return fmt.Sprintf("%s (%d replacements)", op.Path, len(op.Replacements))
	case OpAppendGitignore:
		return fmt.Sprintf("%s (+%d lines)", op.Path, len(op.Lines))
	case OpCopySubtree:
		return fmt.Sprintf("%s -> %s", op.SourceID, op.Target)
	case OpSkip:
		return fmt.Sprintf("%s (%s)", op.Path, op.Reason)
	default:
		return op.Path
	}
}
