// Package wtconfig loads and merges worktrunk's two TOML config files
// (spec §6): the user-scope ~/.config/worktrunk/config.toml and the
// project-scope <repo>/.config/wt.toml. Parsed with
// github.com/BurntSushi/toml, the library already present in the
// example pack (julianknutsen-gascity); config parsing itself is
// scoped out of the core per spec.md §1 ("specified only by the
// contracts §6 requires"), so this package implements exactly that
// contract and nothing more.
package wtconfig

// HookSet is one lifecycle hook type's resolved definitions, in
// declaration order. A bare `post-create = "npm ci"` produces a single
// entry with Name == "". A table `[post-create] lint = "..."`
// produces one entry per key, in the order the keys appear in the file.
type HookSet []HookEntry

// HookEntry is one named (or unnamed) hook command.
type HookEntry struct {
	Name    string
	Command string
}

// HookSections holds every lifecycle hook type named in spec §4.5/§6.
type HookSections struct {
	PostCreate HookSet
	PostStart  HookSet
	PostSwitch HookSet
	PreCommit  HookSet
	PreMerge   HookSet
	PostMerge  HookSet
	PreRemove  HookSet
	PostRemove HookSet
}

// CommitGeneration configures the external commit-message command
// (spec §6 [commit-generation]).
type CommitGeneration struct {
	Command            string   `toml:"command"`
	Args               []string `toml:"args"`
	Template           string   `toml:"template"`
	TemplateFile       string   `toml:"template-file"`
	SquashTemplate     string   `toml:"squash-template"`
	SquashTemplateFile string   `toml:"squash-template-file"`
}

// ListDefaults configures `wt list` defaults (spec §6 [list]).
type ListDefaults struct {
	Full     bool   `toml:"full"`
	Branches bool   `toml:"branches"`
	Remotes  bool   `toml:"remotes"`
	URL      string `toml:"url"`
}

// MergeDefaults configures `wt merge` flag defaults (spec §6 [merge]).
// All default true per spec.md.
type MergeDefaults struct {
	Squash bool `toml:"squash"`
	Commit bool `toml:"commit"`
	Rebase bool `toml:"rebase"`
	Remove bool `toml:"remove"`
	Verify bool `toml:"verify"`
}

// DefaultMergeDefaults returns the spec-mandated all-true defaults.
func DefaultMergeDefaults() MergeDefaults {
	return MergeDefaults{Squash: true, Commit: true, Rebase: true, Remove: true, Verify: true}
}

// SelectConfig configures the `select` TUI's external pager (out of
// scope for implementation; only the config field is carried).
type SelectConfig struct {
	Pager string `toml:"pager"`
}

// CIConfig names the CI platform (spec §6 [ci]).
type CIConfig struct {
	Platform string `toml:"platform"` // "github" | "gitlab"
}

// ProjectApprovals is one project's approved-command set (spec §4.4),
// keyed by project identifier in the user config's [projects."<id>"].
type ProjectApprovals struct {
	ApprovedCommands []string `toml:"approved-commands"`
}

// UserConfig is ~/.config/worktrunk/config.toml (spec §6).
type UserConfig struct {
	WorktreePath     string                      `toml:"worktree-path"`
	List             ListDefaults                `toml:"list"`
	Commit           CommitStage                 `toml:"commit"`
	Merge            MergeDefaults                `toml:"merge"`
	Select           SelectConfig                `toml:"select"`
	CommitGeneration CommitGeneration            `toml:"commit-generation"`
	CI               CIConfig                    `toml:"ci"`
	Projects         map[string]ProjectApprovals `toml:"projects"`

	Hooks HookSections `toml:"-"`
}

// CommitStage configures `[commit] stage` (spec §6).
type CommitStage struct {
	Stage string `toml:"stage"` // "all" | "tracked" | "none"
}

// ProjectConfig is <repo>/.config/wt.toml (spec §6).
type ProjectConfig struct {
	List  ProjectListOverrides `toml:"list"`
	CI    CIConfig             `toml:"ci"`
	Hooks HookSections         `toml:"-"`
}

// ProjectListOverrides is the project-scope subset of [list]: only
// `url` is project-scoped per spec.md §6.
type ProjectListOverrides struct {
	URL string `toml:"url"`
}

// DefaultWorktreePath is the template used when no config overrides it.
const DefaultWorktreePath = `../{{ repo }}.{{ branch | sanitize }}`

// DefaultUserConfig returns a config with spec.md's documented defaults.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		WorktreePath: DefaultWorktreePath,
		Merge:        DefaultMergeDefaults(),
		Commit:       CommitStage{Stage: "all"},
		Projects:     map[string]ProjectApprovals{},
	}
}
