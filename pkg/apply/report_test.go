package apply

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentmd/agentmd/internal/assets"
	"github.com/agentmd/agentmd/pkg/plan"
)

func migrationReport() *Report {
	r := &Report{}
	r.add(plan.Op{Kind: plan.OpMoveTree, Path: "agents/tools", Target: "agents/skills"}, Succeeded, "git mv")
	r.add(plan.Op{Kind: plan.OpMoveTree, Path: "tasks", Target: "agents/plans"}, Succeeded, "rename")
	r.add(plan.Op{Kind: plan.OpRewriteText, Path: "AGENTS.md"}, Succeeded, "")
	r.add(plan.Op{Kind: plan.OpCreateFile, Path: "README.md"}, Skipped, "already exists")
	r.add(plan.Op{Kind: plan.OpCreateSymlink, Path: ".claude/skills"}, Failed, "operation not permitted")
	return r
}

func TestCounts(t *testing.T) {
	ok, skip, fail := migrationReport().Counts()
	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, skip)
	assert.Equal(t, 1, fail)
}

func TestFailures(t *testing.T) {
	failures := migrationReport().Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, ".claude/skills", failures[0].Op.Path)
	assert.Equal(t, "operation not permitted", failures[0].Detail)
}

func TestMarkdownRendersBundledTemplate(t *testing.T) {
	tmpl, err := fs.ReadFile(assets.GetTemplatesFS(), "migration-report.md.hbs")
	require.NoError(t, err)

	out, err := migrationReport().Markdown(string(tmpl), "Demo", "2.0.0", "2026-03-14", "Summary: 2 moves, 1 rewrite")
	require.NoError(t, err)

	assert.Contains(t, out, "Demo")
	assert.Contains(t, out, "2026-03-14")
	assert.Contains(t, out, "agents/tools")
	assert.Contains(t, out, "agents/skills")
	assert.Contains(t, out, "AGENTS.md")
	assert.Contains(t, out, ".claude/skills: operation not permitted")
}

func TestMarkdownEmptyReport(t *testing.T) {
	tmpl := "# Report\n{{#each moved}}- {{from}}\n{{else}}Nothing moved.\n{{/each}}"
	out, err := (&Report{}).Markdown(tmpl, "Demo", "2.0.0", "2026-03-14", "Summary: nothing to do")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing moved.")
}

func TestMarkdownBadTemplate(t *testing.T) {
	_, err := (&Report{}).Markdown("{{#each", "p", "v", "d", "s")
	assert.Error(t, err)
}
