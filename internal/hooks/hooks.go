// Package hooks is the hook runner (spec §4.5): it resolves the
// lifecycle hooks registered for a hook type across user and project
// config scope, renders each command through the template engine,
// gates project-scope hooks on the approval store, and executes them
// either blocking-and-streaming or detached-and-logged per the
// execution-mode table spec.md defines for each hook type.
//
// Grounded on the teacher's internal/git/templates/templates.go for
// "render a command string, then run it" and internal/recovery for
// background-goroutine safety; the execution modes themselves (which
// hook types block vs. background, fail-fast vs. warn-and-continue)
// have no teacher analogue and come straight from spec.md §4.5.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/worktrunk/worktrunk/internal/approvalstore"
	"github.com/worktrunk/worktrunk/internal/envkeys"
	"github.com/worktrunk/worktrunk/internal/logx"
	"github.com/worktrunk/worktrunk/internal/template"
	"github.com/worktrunk/worktrunk/internal/wterr"
	"github.com/worktrunk/worktrunk/internal/wtconfig"
)

// Mode describes one hook type's execution semantics (spec §4.5 table).
type Mode struct {
	Blocking bool
	FailFast bool
}

// modes is the execution-mode table from spec §4.5, keyed by hook type.
var modes = map[wtconfig.HookType]Mode{
	wtconfig.HookPostCreate: {Blocking: true, FailFast: false},
	wtconfig.HookPostStart:  {Blocking: false, FailFast: false},
	wtconfig.HookPostSwitch: {Blocking: false, FailFast: false},
	wtconfig.HookPreCommit:  {Blocking: true, FailFast: true},
	wtconfig.HookPreMerge:   {Blocking: true, FailFast: true},
	wtconfig.HookPostMerge:  {Blocking: true, FailFast: false},
	wtconfig.HookPreRemove:  {Blocking: true, FailFast: true},
	wtconfig.HookPostRemove: {Blocking: false, FailFast: false},
}

// Options configures one Run call.
type Options struct {
	NoVerify bool // skip hook execution entirely (caller's --no-verify)
	Yes      bool // auto-approve project hooks without prompting
}

// Prompter asks the user whether to approve every not-yet-approved
// project hook command in the batch, returning true to approve all of
// them (spec §4.4: "Prompts list every not-yet-approved command in the
// upcoming batch once; a single affirmative approves all of them for
// this run"). The CLI layer supplies the real terminal-prompting
// implementation; tests supply a canned answer.
type Prompter func(commands []string) (bool, error)

// Runner executes lifecycle hooks for one repository.
type Runner struct {
	Config       wtconfig.Merged
	Template     *template.Engine
	Approvals    *approvalstore.Store
	ProjectID    string
	GitCommonDir string
	Prompt       Prompter
}

// Result is one hook's outcome.
type Result struct {
	wtconfig.ResolvedHook
	HookType wtconfig.HookType
	Skipped  bool // not approved, or rendering failed
	Err      error
	LogPath  string // set for background hooks
}

// Run resolves and executes every hook registered for hookType. For
// blocking fail-fast hook types, the first failure stops the run and
// is returned as the error (wrapped in wterr.HookFailed); non-fail-fast
// failures are recorded in the returned results but do not stop later
// hooks. Background hooks are spawned and appear in the results with
// LogPath set; Run does not wait for them.
func (r *Runner) Run(ctx context.Context, hookType wtconfig.HookType, vars template.Context, opts Options) ([]Result, error) {
	return r.RunFiltered(ctx, hookType, vars, opts, nil, "")
}

// RunFiltered is Run narrowed to hooks matching sourceFilter (nil
// means both scopes) and nameFilter (empty means any name); `wt hook
// <TYPE> [user:|project:][NAME]` uses this to invoke the exact same
// resolution/render/approve/execute path the pipeline itself uses, for
// one hook at a time (spec §4.5, scenario "hook <type> called with the
// same inputs as the pipeline invokes the same hooks").
func (r *Runner) RunFiltered(ctx context.Context, hookType wtconfig.HookType, vars template.Context, opts Options, sourceFilter *wtconfig.HookSource, nameFilter string) ([]Result, error) {
	if opts.NoVerify {
		return nil, nil
	}
	mode := modes[hookType]
	resolved := r.Config.ResolveHooks(hookType)
	if sourceFilter != nil || nameFilter != "" {
		filtered := resolved[:0:0]
		for _, h := range resolved {
			if sourceFilter != nil && h.Source != *sourceFilter {
				continue
			}
			if nameFilter != "" && h.Name != nameFilter {
				continue
			}
			filtered = append(filtered, h)
		}
		resolved = filtered
	}

	commands := make([]string, len(resolved))
	results := make([]Result, len(resolved))
	for i, h := range resolved {
		results[i] = Result{ResolvedHook: h, HookType: hookType}
		command, err := r.Template.Render(h.Command, vars, true)
		if err != nil {
			results[i].Skipped = true
			results[i].Err = err
			logx.Logger.Warn().Err(err).Str("hook", h.Name).Msg("hook command failed to render, skipping")
			continue
		}
		commands[i] = command
	}

	approved, err := r.ensureBatchApproved(ctx, resolved, commands, opts)
	if err != nil {
		return results, err
	}

	out := make([]Result, 0, len(resolved))
	for i, h := range resolved {
		res := results[i]
		if res.Err != nil {
			out = append(out, res)
			continue
		}
		command := commands[i]

		if h.Source == wtconfig.HookSourceProject && !approved[command] {
			res.Skipped = true
			out = append(out, res)
			continue
		}

		stdin, err := hookStdin(vars, hookType, h.Name)
		if err != nil {
			res.Err = err
			out = append(out, res)
			continue
		}

		if mode.Blocking {
			err := r.runBlocking(ctx, command, stdin)
			res.Err = err
			out = append(out, res)
			if err != nil {
				if mode.FailFast {
					return out, wterr.HookFailed{
						Source: h.Source.String(), Name: h.Name, Exit: exitCodeOf(err),
					}
				}
				logx.Logger.Warn().Err(err).Str("hook", h.Name).Msg("hook failed, continuing")
			}
			continue
		}

		logPath := r.logPath(vars["branch"], h.Source.String(), string(hookType), h.Name)
		res.LogPath = logPath
		out = append(out, res)
		r.runBackground(command, stdin, logPath)
	}
	return out, nil
}

// ensureBatchApproved implements spec §4.4's batched prompt: every
// not-yet-approved project-scope command in this resolution is listed
// once, and a single affirmative approves (and persists) all of them.
// A negative answer aborts the whole run via ApprovalDenied. Returns
// the set of commands cleared to run, keyed by rendered command line.
func (r *Runner) ensureBatchApproved(ctx context.Context, resolved []wtconfig.ResolvedHook, commands []string, opts Options) (map[string]bool, error) {
	approved := make(map[string]bool, len(resolved))
	if r.Approvals == nil {
		for _, c := range commands {
			approved[c] = true
		}
		return approved, nil
	}

	var pending []string
	seen := make(map[string]bool)
	for i, h := range resolved {
		if h.Source != wtconfig.HookSourceProject || commands[i] == "" {
			continue
		}
		command := commands[i]
		ok, err := r.Approvals.IsApproved(r.ProjectID, command)
		if err != nil {
			return nil, err
		}
		if ok {
			approved[command] = true
			continue
		}
		if !seen[command] {
			seen[command] = true
			pending = append(pending, command)
		}
	}
	if len(pending) == 0 {
		return approved, nil
	}

	if !opts.Yes {
		if r.Prompt == nil {
			return nil, wterr.ApprovalDenied{Command: pending[0]}
		}
		ok, err := r.Prompt(pending)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, wterr.ApprovalDenied{Command: pending[0]}
		}
	}

	for _, command := range pending {
		if err := r.Approvals.Approve(ctx, r.ProjectID, command); err != nil {
			return nil, err
		}
		approved[command] = true
	}
	return approved, nil
}

// runBlocking streams the child's stdout/stderr straight to the
// process's own, matching spec §4.5's "no buffering" requirement.
func (r *Runner) runBlocking(ctx context.Context, command string, stdin []byte) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = envkeys.StripDirectiveFile(os.Environ())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = bytes.NewReader(stdin)
	return cmd.Run()
}

// runBackground detaches the child into its own process group and
// redirects both streams to logPath, overwriting any prior run's log.
func (r *Runner) runBackground(command string, stdin []byte, logPath string) {
	jobID := uuid.New().String()
	safeGo("hook:"+jobID, func() {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			logx.Logger.Error().Err(err).Str("job", jobID).Msg("could not create hook log directory")
			return
		}
		f, err := os.Create(logPath)
		if err != nil {
			logx.Logger.Error().Err(err).Str("job", jobID).Msg("could not create hook log file")
			return
		}
		defer f.Close()

		cmd := exec.Command("sh", "-c", command)
		cmd.Env = envkeys.StripDirectiveFile(os.Environ())
		cmd.Stdout = f
		cmd.Stderr = f
		cmd.Stdin = bytes.NewReader(stdin)
		setDetached(cmd)

		logx.Logger.Debug().Str("job", jobID).Str("log", logPath).Msg("spawned background hook")
		if err := cmd.Run(); err != nil {
			logx.Logger.Warn().Err(err).Str("job", jobID).Str("log", logPath).Msg("background hook failed")
		}
	})
}

func (r *Runner) logPath(branch, source, hookType, name string) string {
	key := fmt.Sprintf("%s-%s-%s", branch, source, hookType)
	if name != "" {
		key += "-" + name
	}
	return filepath.Join(r.GitCommonDir, "wt-logs", key+".log")
}

// hookStdin is the JSON context document every hook receives on
// stdin: every template variable plus hook_type/hook_name (spec §4.5).
func hookStdin(vars template.Context, hookType wtconfig.HookType, hookName string) ([]byte, error) {
	doc := make(map[string]string, len(vars)+2)
	for k, v := range vars {
		doc[k] = v
	}
	doc["hook_type"] = string(hookType)
	doc["hook_name"] = hookName
	return json.Marshal(doc)
}

func exitCodeOf(err error) int {
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}
