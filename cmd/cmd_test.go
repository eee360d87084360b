package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI against an isolated command tree. HOME is
// redirected and the update check disabled so tests never touch the network
// or the developer's real config.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AGENTMD_UPDATE_ENABLED", "false")

	root := newRootCommand()
	registerSubcommands(root)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitScaffoldsFreshTarget(t *testing.T) {
	target := t.TempDir()

	out, err := runCommand(t, "", "init", "-y", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Applied:")
	assert.Contains(t, out, "0 failed")

	body, err := os.ReadFile(filepath.Join(target, "AGENTS.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(body), "{{")

	link, err := os.Readlink(filepath.Join(target, ".claude", "skills"))
	require.NoError(t, err)
	assert.Equal(t, "../agents/skills", filepath.ToSlash(link))

	gi, err := os.ReadFile(filepath.Join(target, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gi), "agents/plans/local/")

	_, err = os.Stat(filepath.Join(target, "agents", "addons", "code-review", "README.md"))
	assert.NoError(t, err)
}

func TestInitDryRunWritesNothing(t *testing.T) {
	target := t.TempDir()

	out, err := runCommand(t, "", "init", "--dry-run", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Create file")
	assert.Contains(t, out, "Summary:")
	assert.NotContains(t, out, "Applied:")

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInitRefusesScaffoldedTarget(t *testing.T) {
	target := t.TempDir()
	_, err := runCommand(t, "", "init", "-y", target)
	require.NoError(t, err)

	out, err := runCommand(t, "", "init", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Framework already present")
	assert.Contains(t, out, "agentmd upgrade")
}

func TestInitDeclinedConfirmation(t *testing.T) {
	target := t.TempDir()

	out, err := runCommand(t, "n\n", "init", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Apply these changes?")
	assert.Contains(t, out, "Aborted.")

	_, statErr := os.Stat(filepath.Join(target, "AGENTS.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInitIsIdempotentUnderRepeat(t *testing.T) {
	target := t.TempDir()
	_, err := runCommand(t, "", "init", "-y", target)
	require.NoError(t, err)

	custom := filepath.Join(target, "AGENTS.md")
	require.NoError(t, os.WriteFile(custom, []byte("my own notes"), 0o644))

	out, err := runCommand(t, "", "init", "--force", "-y", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Summary: nothing to do")

	// skip-if-exists content survives even a forced re-run.
	body, err := os.ReadFile(custom)
	require.NoError(t, err)
	assert.Equal(t, "my own notes", string(body))
}

func TestPlanOnFreshTarget(t *testing.T) {
	target := t.TempDir()

	out, err := runCommand(t, "", "plan", target)
	require.NoError(t, err)
	assert.Contains(t, out, "scaffold plan")
	assert.Contains(t, out, "no framework")

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries, "plan must not write anything")
}

func TestPlanOnLegacyTarget(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(target, "agents", "tools"), 0o755))

	out, err := runCommand(t, "", "plan", target)
	require.NoError(t, err)
	assert.Contains(t, out, "upgrade plan")
	assert.Contains(t, out, "agents/tools -> agents/skills")
}

func TestUpgradeRequiresFramework(t *testing.T) {
	target := t.TempDir()

	out, err := runCommand(t, "", "upgrade", target)
	require.NoError(t, err)
	assert.Contains(t, out, "No framework detected")
	assert.Contains(t, out, "agentmd init")
}

func TestUpgradeMigratesLegacyLayout(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(target, "agents", "tools"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "agents", "tools", "fmt.md"),
		[]byte("formatting skill"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(target, "AGENTS.md"),
		[]byte("Skills are documented under agents/tools/.\n"), 0o644))

	out, err := runCommand(t, "", "upgrade", "-y", target)
	require.NoError(t, err)
	assert.Contains(t, out, "0 failed")

	// The legacy tree moved and its content survived.
	body, err := os.ReadFile(filepath.Join(target, "agents", "skills", "fmt.md"))
	require.NoError(t, err)
	assert.Equal(t, "formatting skill", string(body))
	_, statErr := os.Stat(filepath.Join(target, "agents", "tools"))
	assert.True(t, os.IsNotExist(statErr))

	// References were rewritten in place.
	agents, err := os.ReadFile(filepath.Join(target, "AGENTS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(agents), "agents/skills/")
	assert.NotContains(t, string(agents), "agents/tools/")

	// Migration report written because something moved.
	report, err := os.ReadFile(filepath.Join(target, "agents", "MIGRATION.md"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "agents/tools")
	assert.Contains(t, out, "Migration report:")

	// The upgrade also filled in the missing current-layout pieces.
	_, statErr = os.Stat(filepath.Join(target, "agents", "personas", "INDEX.md"))
	assert.NoError(t, statErr)
}

func TestUpgradeQuarantinesLegacyFile(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(target, "agents", "tools"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "TOOLS.md"),
		[]byte("index of agents/tools entries\n"), 0o644))

	_, err := runCommand(t, "", "upgrade", "-y", target)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(target, "agents", "legacy", "TOOLS.md"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(target, "TOOLS.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStatusOnFreshTarget(t *testing.T) {
	target := t.TempDir()

	out, err := runCommand(t, "", "status", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Classification: no framework")
	assert.Contains(t, out, "missing  AGENTS.md")
}

func TestStatusAfterInit(t *testing.T) {
	target := t.TempDir()
	_, err := runCommand(t, "", "init", "-y", target)
	require.NoError(t, err)

	out, err := runCommand(t, "", "status", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Classification: current layout")
	assert.NotContains(t, out, "missing")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "agentmd")
	assert.Contains(t, out, "framework layout")
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 2, exitCodeFor(&configError{assert.AnError}))
	assert.Equal(t, 1, exitCodeFor(assert.AnError))
}
