package wtconfig

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// hookFieldNames maps the eight lifecycle hook TOML keys (spec §4.5)
// to the HookSections field they populate, in the order spec §6 lists
// them. Kept as a slice, not a map, so decode order is deterministic.
var hookFieldNames = []struct {
	key string
	set func(*HookSections, HookSet)
}{
	{"post-create", func(h *HookSections, v HookSet) { h.PostCreate = v }},
	{"post-start", func(h *HookSections, v HookSet) { h.PostStart = v }},
	{"post-switch", func(h *HookSections, v HookSet) { h.PostSwitch = v }},
	{"pre-commit", func(h *HookSections, v HookSet) { h.PreCommit = v }},
	{"pre-merge", func(h *HookSections, v HookSet) { h.PreMerge = v }},
	{"post-merge", func(h *HookSections, v HookSet) { h.PostMerge = v }},
	{"pre-remove", func(h *HookSections, v HookSet) { h.PreRemove = v }},
	{"post-remove", func(h *HookSections, v HookSet) { h.PostRemove = v }},
}

// LoadUser reads ~/.config/worktrunk/config.toml. A missing file
// yields DefaultUserConfig with no error.
//
// The hook sections (post-create, pre-merge, ...) are decoded in a
// second pass via toml.Primitive, since each is legally either a bare
// string or a table of name->command and that ambiguity can't be
// expressed as a single static Go field.
func LoadUser(path string) (UserConfig, error) {
	cfg := DefaultUserConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Projects == nil {
		cfg.Projects = map[string]ProjectApprovals{}
	}

	var raw map[string]toml.Primitive
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cfg, err
	}
	hooks, err := decodeHookSections(md, raw)
	if err != nil {
		return cfg, err
	}
	cfg.Hooks = hooks
	return cfg, nil
}

// LoadProject reads <repo>/.config/wt.toml. A missing file yields a
// zero ProjectConfig with no error.
func LoadProject(path string) (ProjectConfig, error) {
	var cfg ProjectConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	var raw map[string]toml.Primitive
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cfg, err
	}
	hooks, err := decodeHookSections(md, raw)
	if err != nil {
		return cfg, err
	}
	cfg.Hooks = hooks
	return cfg, nil
}

func decodeHookSections(md toml.MetaData, raw map[string]toml.Primitive) (HookSections, error) {
	var out HookSections
	for _, f := range hookFieldNames {
		prim, ok := raw[f.key]
		if !ok {
			continue
		}
		set, err := decodeHookSection(md, prim, f.key)
		if err != nil {
			return out, err
		}
		f.set(&out, set)
	}
	return out, nil
}

// decodeHookSection decodes one hook TOML value as either a bare
// string (producing one unnamed HookEntry) or a table of
// name->command (producing one entry per key). The decoded map is
// unordered, so entries follow the key order md.Keys() reports for
// the document; any key it does not list follows, sorted by name.
func decodeHookSection(md toml.MetaData, prim toml.Primitive, key string) (HookSet, error) {
	var asString string
	if err := md.PrimitiveDecode(prim, &asString); err == nil && asString != "" {
		return HookSet{{Name: "", Command: asString}}, nil
	}

	var asTable map[string]string
	if err := md.PrimitiveDecode(prim, &asTable); err != nil {
		return nil, err
	}
	set := make(HookSet, 0, len(asTable))
	for _, k := range md.Keys() {
		if len(k) == 2 && k[0] == key {
			if command, ok := asTable[k[1]]; ok {
				set = append(set, HookEntry{Name: k[1], Command: command})
				delete(asTable, k[1])
			}
		}
	}
	rest := make([]string, 0, len(asTable))
	for name := range asTable {
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		set = append(set, HookEntry{Name: name, Command: asTable[name]})
	}
	return set, nil
}

// UserConfigPath returns the default user config path, honoring
// XDG_CONFIG_HOME per the teacher's config-path convention.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "worktrunk", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "worktrunk", "config.toml")
	}
	return filepath.Join(home, ".config", "worktrunk", "config.toml")
}

// ProjectConfigPath returns <repoRoot>/.config/wt.toml.
func ProjectConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".config", "wt.toml")
}

// ApplyEnvOverrides mutates cfg in place per spec §6's
// WORKTRUNK_<KEY> environment override rule: environment variables of
// the form WORKTRUNK_SECTION__FIELD override the matching TOML field,
// with "__" separating nesting levels and names case-insensitively
// matched against the kebab-case TOML key with "-" read as "_".
func ApplyEnvOverrides(cfg *UserConfig, environ []string) {
	for _, kv := range environ {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "WORKTRUNK_") {
			continue
		}
		path := strings.Split(strings.TrimPrefix(key, "WORKTRUNK_"), "__")
		applyOverride(cfg, path, val)
	}
}

func applyOverride(cfg *UserConfig, path []string, val string) {
	if len(path) == 0 {
		return
	}
	field := strings.ToLower(path[0])
	switch {
	case len(path) == 1 && field == "worktree_path":
		cfg.WorktreePath = val
	case len(path) == 2 && field == "list":
		applyBoolOrString(path[1], val, &cfg.List.Full, &cfg.List.Branches, &cfg.List.Remotes, &cfg.List.URL)
	case len(path) == 2 && field == "commit" && strings.ToLower(path[1]) == "stage":
		cfg.Commit.Stage = val
	case len(path) == 2 && field == "merge":
		applyMergeOverride(cfg, strings.ToLower(path[1]), val)
	case len(path) == 2 && field == "ci" && strings.ToLower(path[1]) == "platform":
		cfg.CI.Platform = val
	case len(path) == 2 && field == "select" && strings.ToLower(path[1]) == "pager":
		cfg.Select.Pager = val
	case len(path) == 2 && field == "commit_generation":
		applyCommitGenOverride(cfg, strings.ToLower(path[1]), val)
	}
}

func applyBoolOrString(field, val string, full, branches, remotes *bool, url *string) {
	b, err := strconv.ParseBool(val)
	switch strings.ToLower(field) {
	case "full":
		if err == nil {
			*full = b
		}
	case "branches":
		if err == nil {
			*branches = b
		}
	case "remotes":
		if err == nil {
			*remotes = b
		}
	case "url":
		*url = val
	}
}

func applyMergeOverride(cfg *UserConfig, field, val string) {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return
	}
	switch field {
	case "squash":
		cfg.Merge.Squash = b
	case "commit":
		cfg.Merge.Commit = b
	case "rebase":
		cfg.Merge.Rebase = b
	case "remove":
		cfg.Merge.Remove = b
	case "verify":
		cfg.Merge.Verify = b
	}
}

func applyCommitGenOverride(cfg *UserConfig, field, val string) {
	switch field {
	case "command":
		cfg.CommitGeneration.Command = val
	case "template":
		cfg.CommitGeneration.Template = val
	case "template_file":
		cfg.CommitGeneration.TemplateFile = val
	case "squash_template":
		cfg.CommitGeneration.SquashTemplate = val
	case "squash_template_file":
		cfg.CommitGeneration.SquashTemplateFile = val
	}
}
