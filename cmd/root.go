package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentmd/agentmd/pkg/buildinfo"
	"github.com/agentmd/agentmd/pkg/exitcode"
	"github.com/agentmd/agentmd/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agentmd",
		Short: "Scaffold and upgrade agent documentation in a project",
		Long: `Agentmd installs the agent documentation framework (AGENTS.md, the
agents/ tree, and editor symlinks) into a project, and migrates projects
from the legacy layout to the current one.

Examples:
   agentmd init             # Scaffold the framework into the current directory
   agentmd upgrade          # Migrate a legacy layout and fill in what is missing
   agentmd plan             # Show what init/upgrade would do, change nothing
   agentmd status           # Report how the current directory classifies`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Accept underscore spellings of flags (log_level) for config parity
	cmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-update-check", false, "Skip the release update check")

	// Wire Cobra's built-in --version using the binary version
	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("agentmd {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newUpgradeCommand())
	cmd.AddCommand(newPlanCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newVersionCommand())
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "agentmd",
	}

	if err := logger.Initialize(config); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
}

// exitCodeFor maps fatal command errors onto the exit code taxonomy.
// Configuration and precondition failures happen before any mutation.
func exitCodeFor(err error) int {
	switch {
	case isConfigErr(err):
		return exitcode.ConfigError
	default:
		return exitcode.GeneralError
	}
}
