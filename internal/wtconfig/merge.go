package wtconfig

// Merged is the effective configuration for one invocation: the user
// config plus any project overrides, kept separate rather than
// flattened because hook resolution and the approval store need to
// know which scope a hook came from (spec §4.4: only project hooks
// require approval).
type Merged struct {
	User    UserConfig
	Project ProjectConfig
}

// Load reads both config files and merges them. userPath/projectPath
// may point at nonexistent files; both loaders tolerate that.
func Load(userPath, projectPath string) (Merged, error) {
	user, err := LoadUser(userPath)
	if err != nil {
		return Merged{}, err
	}
	project, err := LoadProject(projectPath)
	if err != nil {
		return Merged{}, err
	}
	return Merged{User: user, Project: project}, nil
}

// ListURL returns the effective remote URL template for `wt list`:
// project scope wins over user scope (spec §6: url is project-scoped).
func (m Merged) ListURL() string {
	if m.Project.List.URL != "" {
		return m.Project.List.URL
	}
	return m.User.List.URL
}

// CIPlatform returns the effective CI platform, project scope winning.
func (m Merged) CIPlatform() string {
	if m.Project.CI.Platform != "" {
		return m.Project.CI.Platform
	}
	return m.User.CI.Platform
}

// HookSource identifies which config scope a resolved hook came from.
type HookSource int

const (
	HookSourceUser HookSource = iota
	HookSourceProject
)

func (s HookSource) String() string {
	if s == HookSourceProject {
		return "project"
	}
	return "user"
}

// ResolvedHook pairs a hook entry with the scope it was declared in.
type ResolvedHook struct {
	HookEntry
	Source HookSource
}

// HookType names one of the eight lifecycle hook points (spec §4.5).
type HookType string

const (
	HookPostCreate HookType = "post-create"
	HookPostStart  HookType = "post-start"
	HookPostSwitch HookType = "post-switch"
	HookPreCommit  HookType = "pre-commit"
	HookPreMerge   HookType = "pre-merge"
	HookPostMerge  HookType = "post-merge"
	HookPreRemove  HookType = "pre-remove"
	HookPostRemove HookType = "post-remove"
)

func hookSet(h HookSections, t HookType) HookSet {
	switch t {
	case HookPostCreate:
		return h.PostCreate
	case HookPostStart:
		return h.PostStart
	case HookPostSwitch:
		return h.PostSwitch
	case HookPreCommit:
		return h.PreCommit
	case HookPreMerge:
		return h.PreMerge
	case HookPostMerge:
		return h.PostMerge
	case HookPreRemove:
		return h.PreRemove
	case HookPostRemove:
		return h.PostRemove
	default:
		return nil
	}
}

// ResolveHooks returns every hook registered for t, user-scope hooks
// first then project-scope hooks, in declaration order within each
// scope (spec §4.5: "user hooks run, then project hooks, in
// declaration order").
func (m Merged) ResolveHooks(t HookType) []ResolvedHook {
	var out []ResolvedHook
	for _, e := range hookSet(m.User.Hooks, t) {
		out = append(out, ResolvedHook{HookEntry: e, Source: HookSourceUser})
	}
	for _, e := range hookSet(m.Project.Hooks, t) {
		out = append(out, ResolvedHook{HookEntry: e, Source: HookSourceProject})
	}
	return out
}
