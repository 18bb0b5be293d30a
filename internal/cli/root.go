package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/worktrunk/worktrunk/internal/logx"
	"github.com/worktrunk/worktrunk/internal/render"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo records build metadata for `wt version` (set from
// main, mirroring the teacher's SetVersionInfo pattern).
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:           "wt",
	Short:         "Turn git worktrees into first-class, branch-addressed working copies",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := logx.Quiet
		switch {
		case flags.verbosity >= 2:
			v = logx.Debug
		case flags.verbosity == 1:
			v = logx.Verbose
		}
		noColor := os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stderr)
		if os.Getenv("CLICOLOR_FORCE") != "" {
			noColor = false
		}
		logx.Configure(v, noColor)

		render.Init(&render.Context{
			Directives: directiveWriter(flags),
			Color:      !noColor,
		})
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return render.Flush()
	},
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Execute runs the command tree, translating any returned error into
// the taxonomy exit code via render.Error (spec §7).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return int(render.Error(err))
	}
	return 0
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.chdir, "C", "C", "", "run as if started in PATH")
	pf.StringVar(&flags.configPath, "config", "", "path to the user config file")
	pf.CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")
	pf.StringVar(&flags.internalShell, "internal", "", "internal: requesting shell wrapper name")
	_ = pf.MarkHidden("internal")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "auto-approve project-scoped hooks")
	pf.BoolVar(&flags.noVerify, "no-verify", false, "skip hook execution")

	rootCmd.AddCommand(versionCmd, switchCmd, mergeCmd, removeCmd, listCmd, stepCmd, hookCmd, configCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wt version %s (commit %s, built %s)\n", version, commit, date)
	},
}
