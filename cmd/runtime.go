package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentmd/agentmd/internal/assets"
	"github.com/agentmd/agentmd/pkg/apply"
	"github.com/agentmd/agentmd/pkg/buildinfo"
	"github.com/agentmd/agentmd/pkg/config"
	"github.com/agentmd/agentmd/pkg/legacy"
	"github.com/agentmd/agentmd/pkg/manifest"
	"github.com/agentmd/agentmd/pkg/plan"
	"github.com/agentmd/agentmd/pkg/probe"
)

// configError marks failures that are configuration problems (bad bundled
// assets, invalid manifest) rather than runtime ones; they map to a
// distinct exit code and always precede mutation.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func isConfigErr(err error) bool {
	var ce *configError
	return errors.As(err, &ce)
}

// invocation bundles everything a command needs for one plan/apply run:
// the loaded manifest and legacy table, the probed target state, and the
// effective configuration.
type invocation struct {
	Root     string
	Config   *config.Config
	Manifest *manifest.Manifest
	Table    *legacy.Table
	State    *probe.TargetState
}

// loadInvocation resolves the target root and loads assets fresh for this
// invocation (nothing is cached across runs), then probes the target.
func loadInvocation(args []string) (*invocation, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving target root: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, &configError{err}
	}

	m, err := manifest.Load(assets.GetManifestFS(), assets.ManifestPath, assets.ManifestSchema())
	if err != nil {
		return nil, &configError{err}
	}

	table, err := legacy.Load(assets.GetLegacyFS(), assets.LegacyTablePath)
	if err != nil {
		return nil, &configError{err}
	}

	state, err := probe.Probe(root, m, table)
	if err != nil {
		return nil, err
	}

	return &invocation{Root: root, Config: cfg, Manifest: m, Table: table, State: state}, nil
}

// diffOptions assembles the caller-supplied policy for the diff engine,
// resolving template variables once so they freeze into the change set.
func (inv *invocation) diffOptions(force, skipSymlinks bool) plan.Options {
	return plan.Options{
		Force:        force,
		SkipSymlinks: skipSymlinks || inv.Config.SkipSymlinks || !symlinksSupported(),
		Variables:    plan.ResolveVariables(inv.Root, buildinfo.FrameworkVersion, time.Now()),
	}
}

// applier builds the Applier with the bundled asset sources injected.
func (inv *invocation) applier() *apply.Applier {
	return apply.New(inv.Root, assets.GetTemplatesFS(), assets.GetAddonsFS())
}

// symlinksSupported probes whether the host can create symlinks at all.
// On Unix this is always true; on Windows it depends on developer mode.
func symlinksSupported() bool {
	dir, err := os.MkdirTemp("", "agentmd-symlink-*")
	if err != nil {
		return false
	}
	defer func() { _ = os.RemoveAll(dir) }()
	link := filepath.Join(dir, "probe")
	if err := os.Symlink(dir, link); err != nil {
		return false
	}
	return true
}

// confirm asks a y/N question on out and reads the answer from in.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s (y/N): ", prompt)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// printReport writes the post-apply outcome lines: succeeded silently
// counted, skips and failures listed individually.
func printReport(out io.Writer, report *apply.Report) {
	ok, skipped, failed := report.Counts()
	for _, e := range report.Entries {
		switch e.Status {
		case apply.Skipped:
			fmt.Fprintf(out, "  skip  %s (%s)\n", e.Op.Path, e.Detail)
		case apply.Failed:
			fmt.Fprintf(out, "  FAIL  %s: %s\n", e.Op.Path, e.Detail)
		}
	}
	fmt.Fprintf(out, "Applied: %d succeeded, %d skipped, %d failed\n", ok, skipped, failed)
}
