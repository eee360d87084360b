package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [target]",
		Short: "Report how the target classifies against the expected layout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := loadInvocation(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := inv.State

			fmt.Fprintf(out, "Target:         %s\n", st.Root)
			fmt.Fprintf(out, "Classification: %s\n", st.Classification)

			var missing []string
			for _, rel := range inv.Manifest.Paths() {
				if !st.Has(rel) {
					missing = append(missing, rel)
				}
			}
			sort.Strings(missing)
			fmt.Fprintf(out, "Present:        %d of %d manifest paths\n",
				len(inv.Manifest.Paths())-len(missing), len(inv.Manifest.Paths()))
			for _, rel := range missing {
				fmt.Fprintf(out, "  missing  %s\n", rel)
			}

			for _, pair := range st.LegacyMarkers {
				fmt.Fprintf(out, "  legacy   %s (current location: %s)\n", pair.Old, pair.New)
			}
			for link := range st.BrokenSymlinks {
				fmt.Fprintf(out, "  broken   %s (dangling symlink)\n", link)
			}
			for link, actual := range st.WrongTarget {
				if actual == "" {
					fmt.Fprintf(out, "  wrong    %s (not a symlink)\n", link)
				} else {
					fmt.Fprintf(out, "  wrong    %s -> %s\n", link, actual)
				}
			}
			return nil
		},
	}
	return cmd
}
