package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentmd/agentmd/internal/assets"
	"github.com/agentmd/agentmd/pkg/apply"
	"github.com/agentmd/agentmd/pkg/buildinfo"
	"github.com/agentmd/agentmd/pkg/logger"
	"github.com/agentmd/agentmd/pkg/plan"
	"github.com/agentmd/agentmd/pkg/probe"
)

// migrationReportFile is written into the target after an upgrade that
// moved or rewrote anything.
const migrationReportFile = "agents/MIGRATION.md"

func newUpgradeCommand() *cobra.Command {
	var (
		skipSymlinks bool
		autoConfirm  bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade [target]",
		Short: "Migrate a project from the legacy layout to the current one",
		Long: `Upgrade moves legacy directories to their current locations (preserving
git history when the project is a working tree), rewrites old path
references in documentation, quarantines unmapped legacy files, and fills
in anything the current layout is missing. A migration report is written
to ` + migrationReportFile + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInvocation(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if inv.State.Classification == probe.NoFramework {
				fmt.Fprintln(out, "No framework detected. Run 'agentmd init' first.")
				return nil
			}

			cs := plan.Upgrade(inv.Manifest, inv.Table, inv.State, inv.diffOptions(false, skipSymlinks))
			fmt.Fprint(out, plan.Preview(cs))
			if cs.Empty() {
				return nil
			}
			if dryRun {
				return nil
			}

			if !autoConfirm && !inv.Config.AutoConfirm {
				if !confirm(cmd.InOrStdin(), out, "Apply these changes?") {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			report, err := inv.applier().Apply(cs)
			if err != nil {
				return &configError{err}
			}
			printReport(out, report)

			if err := writeMigrationReport(inv.Root, report, cs); err != nil {
				// The upgrade itself succeeded; a missing report is a warning.
				logger.Warn("could not write migration report", logger.Err(err))
			} else {
				fmt.Fprintf(out, "Migration report: %s\n", migrationReportFile)
			}

			maybePrintUpdateBanner(cmd, out, inv.Config)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipSymlinks, "skip-symlinks", false, "Do not create or fix symlinks")
	cmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without applying it")
	return cmd
}

// writeMigrationReport renders the handlebars report template from the
// apply outcomes. Only written when the upgrade actually moved or rewrote
// something.
func writeMigrationReport(root string, report *apply.Report, cs *plan.ChangeSet) error {
	counts := cs.Count()
	if counts.Moves == 0 && counts.Rewrites == 0 {
		return nil
	}

	tmpl, err := fs.ReadFile(assets.GetTemplatesFS(), "migration-report.md.hbs")
	if err != nil {
		return err
	}
	doc, err := report.Markdown(
		string(tmpl),
		filepath.Base(root),
		buildinfo.FrameworkVersion,
		time.Now().Format("2006-01-02"),
		cs.Summary(),
	)
	if err != nil {
		return err
	}

	dest := filepath.Join(root, migrationReportFile)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(doc), 0o644)
}
