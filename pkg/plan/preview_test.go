package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreviewGroupsAndSummarizes(t *testing.T) {
	cs := &ChangeSet{Ops: []Op{
		{Kind: OpCreateFile, Path: "AGENTS.md", TemplateID: "agents-md"},
		{Kind: OpCreateDir, Path: "agents"},
		{Kind: OpMoveTree, Path: "agents/tools", Target: "agents/skills"},
		{Kind: OpSkip, Path: "README.md", Reason: "already exists"},
	}}

	out := Preview(cs)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Moves render before creates regardless of change-set order.
	assert.Contains(t, lines[0], "Move")
	assert.Contains(t, lines[0], "agents/tools -> agents/skills")
	assert.Contains(t, lines[1], "agents/")
	assert.Contains(t, lines[2], "AGENTS.md (template agents-md)")
	assert.Contains(t, lines[3], "README.md (already exists)")
	assert.Equal(t, "Summary: 1 directory, 1 file, 1 move (1 skipped)", lines[len(lines)-1])
}

func TestPreviewEmptyChangeSet(t *testing.T) {
	out := Preview(&ChangeSet{})
	assert.Equal(t, "Summary: nothing to do\n", out)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		op       Op
		expected string
	}{
		{Op{Kind: OpCreateDir, Path: "agents"}, "agents/"},
		{Op{Kind: OpCreateSymlink, Path: ".claude/skills", Target: "../agents/skills"}, ".claude/skills -> ../agents/skills"},
		{Op{Kind: OpFixSymlink, Path: ".claude/skills", Target: "../agents/skills", Reason: "dangling"}, ".claude/skills -> ../agents/skills (dangling)"},
		{Op{Kind: OpRewriteText, Path: "AGENTS.md", Replacements: []Replacement{{}, {}}}, "AGENTS.md (2 replacements)"},
		{Op{Kind: OpAppendGitignore, Path: ".gitignore", Lines: []string{"a", "b"}}, ".gitignore (+2 lines)"},
		{Op{Kind: OpCopySubtree, SourceID: "code-review", Target: "agents/addons/code-review"}, "code-review -> agents/addons/code-review"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, describe(tt.op))
	}
}
