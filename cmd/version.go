package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentmd/agentmd/internal/updater"
	"github.com/agentmd/agentmd/pkg/buildinfo"
	"github.com/agentmd/agentmd/pkg/config"
)

func newVersionCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "agentmd %s\n", buildinfo.BinaryVersion)
			fmt.Fprintf(out, "framework layout %s\n", buildinfo.FrameworkVersion)
			if mv := buildinfo.ModuleVersion(); mv != "" {
				fmt.Fprintf(out, "module %s\n", mv)
			}

			if check {
				cfg, err := config.Load(".")
				if err != nil {
					return err
				}
				checker := updater.NewChecker(cfg.Update.Timeout)
				latest := checker.Check(context.Background(), buildinfo.BinaryVersion)
				if latest == "" {
					fmt.Fprintln(out, "No newer release found.")
				} else {
					fmt.Fprintln(out, updater.Banner(buildinfo.BinaryVersion, latest))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check the release registry for a newer version")
	return cmd
}

// maybePrintUpdateBanner runs the best-effort release check after a
// successful command. Disabled by config or --no-update-check; every
// failure is silent and the wait is bounded by the configured timeout.
func maybePrintUpdateBanner(cmd *cobra.Command, out io.Writer, cfg *config.Config) {
	if skip, _ := cmd.Flags().GetBool("no-update-check"); skip {
		return
	}
	if !cfg.Update.Enabled {
		return
	}
	checker := updater.NewChecker(cfg.Update.Timeout)
	if latest := checker.Check(context.Background(), buildinfo.BinaryVersion); latest != "" {
		fmt.Fprintln(out, updater.Banner(buildinfo.BinaryVersion, latest))
	}
}
