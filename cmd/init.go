package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentmd/agentmd/pkg/logger"
	"github.com/agentmd/agentmd/pkg/plan"
	"github.com/agentmd/agentmd/pkg/probe"
)

func newInitCommand() *cobra.Command {
	var (
		force        bool
		skipSymlinks bool
		autoConfirm  bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "init [target]",
		Short: "Scaffold the agent documentation framework into a project",
		Long: `Init computes what the target project is missing relative to the bundled
layout manifest, shows the plan, and applies it. Existing files marked
skip-if-exists are never touched; --force overwrites the rest.

Examples:
  agentmd init                 # Scaffold into the current directory
  agentmd init path/to/proj    # Scaffold into another directory
  agentmd init --dry-run       # Show the plan without applying it
  agentmd init --force         # Overwrite non-protected existing files`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInvocation(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if inv.State.Classification != probe.NoFramework && !force {
				fmt.Fprintf(out, "Framework already present (%s). Run 'agentmd upgrade' to migrate, or 'agentmd init --force' to re-scaffold.\n",
					inv.State.Classification)
				return nil
			}

			cs := plan.Scaffold(inv.Manifest, inv.State, inv.diffOptions(force, skipSymlinks))
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
			logger.Info("scaffold complete", logger.String("root", inv.Root))

			maybePrintUpdateBanner(cmd, out, inv.Config)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files not marked skip-if-exists")
	cmd.Flags().BoolVar(&skipSymlinks, "skip-symlinks", false, "Do not create symlinks")
	cmd.Flags().BoolVarP(&autoConfirm, "yes", "y", false, "Apply without asking for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without applying it")
	return cmd
}
