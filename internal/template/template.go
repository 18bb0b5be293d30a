// Package template implements worktrunk's fixed-vocabulary templating
// contract (spec §4.3). This is deliberately not a general Jinja-style
// engine — spec.md scopes the general template engine out of the core
// and specifies only the closed variable/function/filter vocabulary
// the contract requires, so we hand-write a small regex-based
// renderer for exactly that vocabulary rather than pulling in a full
// templating library.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/worktrunk/worktrunk/internal/wterr"
)

// Context is the closed set of variables a template may reference
// (spec §4.3). Unset fields are represented by their absence from the
// map — referencing one directly is an error; referencing one inside
// a conditional is silently false.
type Context map[string]string

// Known is the closed vocabulary of variable names. Referencing a name
// outside this set is always an error, set or not.
var Known = map[string]bool{
	"repo": true, "repo_path": true, "branch": true, "worktree_name": true,
	"worktree_path": true, "primary_worktree_path": true, "commit": true,
	"short_commit": true, "default_branch": true, "remote": true,
	"remote_url": true, "upstream": true, "target": true, "base": true,
	"base_worktree_path": true, "hook_type": true, "hook_name": true,
}

// WorktreePathResolver looks up the worktree path bound to a branch,
// backing the worktree_path_of_branch(name) function.
type WorktreePathResolver func(branch string) string

// Engine renders templates against a Context. It is pure: identical
// (template, context) pairs always render identically (spec §8
// invariant 3).
type Engine struct {
	Resolve WorktreePathResolver
}

var exprRe = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)
var condRe = regexp.MustCompile(`(?s)\{%\s*if\s+(.*?)\s*%\}(.*?)\{%\s*endif\s*%\}`)

// Render expands a template string against ctx. escape, when true,
// shell-escapes every substituted value (spec §4.3: "values that reach
// an executed command are shell-escaped"); filenames/log names should
// pass escape=false.
func (e *Engine) Render(tmpl string, ctx Context, escape bool) (string, error) {
	// Conditionals first: {% if var %}...{% endif %} — referencing an
	// unset variable here is silently false, never an error.
	var condErr error
	out := condRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		sub := condRe.FindStringSubmatch(m)
		cond, body := sub[1], sub[2]
		if e.truthy(cond, ctx) {
			rendered, err := e.Render(body, ctx, escape)
			if err != nil && condErr == nil {
				condErr = err
			}
			return rendered
		}
		return ""
	})
	if condErr != nil {
		return "", condErr
	}

	var renderErr error
	out = exprRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := exprRe.FindStringSubmatch(m)
		val, err := e.evalExpr(sub[1], ctx)
		if err != nil {
			if renderErr == nil {
				renderErr = err
			}
			return ""
		}
		if escape {
			return ShellEscape(val)
		}
		return val
	})
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}

// truthy evaluates a bare variable reference as a boolean: unset -> false.
func (e *Engine) truthy(name string, ctx Context) bool {
	name = strings.TrimSpace(name)
	v, ok := ctx[name]
	return ok && v != ""
}

// evalExpr evaluates "var", "var | filter", or "func(args)".
func (e *Engine) evalExpr(expr string, ctx Context) (string, error) {
	parts := strings.Split(expr, "|")
	base := strings.TrimSpace(parts[0])

	value, err := e.evalBase(base, ctx)
	if err != nil {
		return "", err
	}
	for _, f := range parts[1:] {
		value, err = applyFilter(strings.TrimSpace(f), value)
		if err != nil {
			return "", err
		}
	}
	return value, nil
}

var funcCallRe = regexp.MustCompile(`^(\w+)\(\s*"?([^")]*)"?\s*\)$`)

func (e *Engine) evalBase(base string, ctx Context) (string, error) {
	if m := funcCallRe.FindStringSubmatch(base); m != nil {
		fn, arg := m[1], m[2]
		switch fn {
		case "worktree_path_of_branch":
			if e.Resolve == nil {
				return "", nil
			}
			return e.Resolve(arg), nil
		default:
			return "", wterr.RenderError{Detail: "unknown function " + fn}
		}
	}

	if !Known[base] {
		return "", wterr.RenderError{Detail: "unknown variable " + base}
	}
	v, ok := ctx[base]
	if !ok {
		return "", wterr.UndefinedVariable{Name: base}
	}
	return v, nil
}

func applyFilter(name, value string) (string, error) {
	switch {
	case name == "sanitize":
		return Sanitize(value), nil
	case name == "sanitize_db":
		return SanitizeDB(value), nil
	case name == "hash_port":
		return strconv.Itoa(HashPort(value)), nil
	default:
		return "", wterr.RenderError{Detail: "unknown filter " + name}
	}
}

// Sanitize replaces path separators with "-", for filesystem-safe
// branch-name derivation (spec §3, §8 boundary behavior).
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	return s
}

var dbUnsafe = regexp.MustCompile(`[^a-z0-9_]`)
var dbLeadingDigit = regexp.MustCompile(`^[0-9]`)

// SanitizeDB lowercases, replaces non [a-z0-9_] with "_", guarantees no
// leading digit, truncates to 63 bytes, and appends a 3-char hash of
// the original string so distinct inputs that collide after truncation
// still differ (spec §4.3).
func SanitizeDB(s string) string {
	lower := strings.ToLower(s)
	cleaned := dbUnsafe.ReplaceAllString(lower, "_")
	if dbLeadingDigit.MatchString(cleaned) {
		cleaned = "_" + cleaned
	}
	suffix := fmt.Sprintf("%03x", xxhash.Sum64String(s)%0xfff)
	const maxLen = 63
	budget := maxLen - len(suffix) - 1
	if budget < 0 {
		budget = 0
	}
	if len(cleaned) > budget {
		cleaned = cleaned[:budget]
	}
	return cleaned + "_" + suffix
}

// HashPort deterministically maps s into [10000, 19999] using xxhash,
// matching spec §4.3 and §8 invariant 4 ("hash_port(s) == hash_port(s)
// across processes" — guaranteed since xxhash has no process-local
// seed).
func HashPort(s string) int {
	return int(xxhash.Sum64String(s)%10000) + 10000
}

// ShellEscape performs POSIX single-quote escaping: wraps the value in
// single quotes, doubling any internal single quote via '\'' (spec
// §4.8's directive-channel escaping rule, reused here since the
// template engine and the shell directive channel share the same
// escaping contract).
func ShellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
