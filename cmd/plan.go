package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentmd/agentmd/pkg/plan"
	"github.com/agentmd/agentmd/pkg/probe"
)

func newPlanCommand() *cobra.Command {
	var (
		force        bool
		skipSymlinks bool
	)

	cmd := &cobra.Command{
		Use:   "plan [target]",
		Short: "Show what init or upgrade would do without changing anything",
		Long: `Plan probes the target, picks the scaffold or upgrade diff based on how
the target classifies, and prints the resulting change set. Nothing is
written: computing a change set only reads the filesystem.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInvocation(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			opts := inv.diffOptions(force, skipSymlinks)

			var cs *plan.ChangeSet
			if inv.State.Classification == probe.NoFramework {
				fmt.Fprintf(out, "Target: %s (%s), scaffold plan\n", inv.Root, inv.State.Classification)
				cs = plan.Scaffold(inv.Manifest, inv.State, opts)
			} else {
				fmt.Fprintf(out, "Target: %s (%s), upgrade plan\n", inv.Root, inv.State.Classification)
				cs = plan.Upgrade(inv.Manifest, inv.Table, inv.State, opts)
			}
			fmt.Fprint(out, plan.Preview(cs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Plan as if --force were passed to init")
	cmd.Flags().BoolVar(&skipSymlinks, "skip-symlinks", false, "Plan without symlink operations")
	return cmd
}
