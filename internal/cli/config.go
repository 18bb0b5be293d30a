package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/worktrunk/worktrunk/internal/lifecycle"
	"github.com/worktrunk/worktrunk/internal/render"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

var configCmd = &cobra.Command{
	Use:   "config {shell|create|show|state}",
	Short: "Inspect or scaffold worktrunk's configuration",
}

var configShellCmd = &cobra.Command{
	Use:   "shell {init} [bash|zsh|fish]",
	Short: "Print the shell integration snippet",
}

var configShellInitCmd = &cobra.Command{
	Use:   "init [bash|zsh|fish]",
	Short: "Print the `wt` wrapper function for the given shell (default: $SHELL)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := ""
		if len(args) == 1 {
			shell = args[0]
		}
		if shell == "" {
			shell = filepath.Base(os.Getenv("SHELL"))
		}
		script, err := shellWrapper(shell)
		if err != nil {
			return err
		}
		render.EmitDirective(lifecycle.Directive{Kind: lifecycle.DirectiveRaw, Raw: script})
		return nil
	},
}

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write a starter user config file if one doesn't already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flags.configPath
		if path == "" {
			path = wtconfig.UserConfigPath()
		}
		if _, err := os.Stat(path); err == nil {
			render.Info("%s already exists, leaving it alone", path)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := toml.NewEncoder(f).Encode(wtconfig.DefaultUserConfig()); err != nil {
			return err
		}
		render.Success("wrote %s", path)
		return nil
	},
}

var configShowWatch bool

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}
		if err := printMergedConfig(app.Config); err != nil {
			return err
		}
		if !configShowWatch {
			return nil
		}

		userPath := flags.configPath
		if userPath == "" {
			userPath = wtconfig.UserConfigPath()
		}
		projectPath := wtconfig.ProjectConfigPath(app.Pipeline.RepoPath)

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		stop := wtconfig.WatchReload(userPath, projectPath, func() {
			cfg, err := wtconfig.Load(userPath, projectPath)
			if err != nil {
				render.Warning("config reload: %s", err)
				return
			}
			fmt.Println("\n# reloaded")
			if err := printMergedConfig(cfg); err != nil {
				render.Warning("config reload: %s", err)
			}
		}, os.Stderr)
		defer stop()

		<-ctx.Done()
		return nil
	},
}

func printMergedConfig(cfg wtconfig.Merged) error {
	enc := toml.NewEncoder(os.Stdout)
	fmt.Println("# user scope")
	if err := enc.Encode(cfg.User); err != nil {
		return err
	}
	fmt.Println("\n# project scope")
	return enc.Encode(cfg.Project)
}

var configStateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print resolved per-repo state (project id, default branch, cache paths)",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(flags)
		if err != nil {
			return err
		}
		fmt.Printf("repo_path: %s\n", app.Pipeline.RepoPath)
		fmt.Printf("git_common_dir: %s\n", app.Pipeline.GitCommonDir)
		fmt.Printf("default_branch: %s\n", app.Pipeline.DefaultBranch)
		fmt.Printf("project_id: %s\n", app.Pipeline.ProjectID)
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowWatch, "watch", false, "keep running, reprinting the config on every edit")

	configShellCmd.AddCommand(configShellInitCmd)
	configCmd.AddCommand(configShellCmd, configCreateCmd, configShowCmd, configStateCmd)
}
