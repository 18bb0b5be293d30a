package gitgw

import (
	"context"
	"strings"

	"github.com/worktrunk/worktrunk/internal/wterr"
)

// ListWorktrees parses `git worktree list --porcelain`, grounded on the
// teacher's internal/git/operations_impl.go ListWorktrees.
func (g *Gateway) ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	out, err := g.Run(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreePorcelain(out), nil
}

func parseWorktreePorcelain(out string) []Worktree {
	var result []Worktree
	var cur *Worktree
	flush := func() {
		if cur != nil {
			result = append(result, *cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case cur == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "detached":
			cur.Detached = true
		case line == "bare":
			cur.Bare = true
		case strings.HasPrefix(line, "locked"):
			cur.Locked = true
			cur.LockedMsg = strings.TrimSpace(strings.TrimPrefix(line, "locked"))
		case line == "prunable":
			cur.Prunable = true
		case line == "":
			flush()
		}
	}
	flush()
	return result
}

// WorktreeAdd runs `git worktree add -b branch path base`. When branch
// already exists, the -b flag is omitted and base is ignored (switch
// semantics delegate the "already exists" case to the caller before
// reaching here).
func (g *Gateway) WorktreeAdd(ctx context.Context, repoPath, path, branch, base string) error {
	args := []string{"worktree", "add"}
	if !g.BranchExists(ctx, repoPath, branch) {
		args = append(args, "-b", branch, path, base)
	} else {
		args = append(args, path, branch)
	}
	_, err := g.Run(ctx, repoPath, args...)
	return err
}

// WorktreeRemove removes a worktree directory's git registration.
func (g *Gateway) WorktreeRemove(ctx context.Context, repoPath, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	_, err := g.Run(ctx, repoPath, args...)
	return err
}

// IsDirty reports whether a worktree has any uncommitted changes
// (staged, unstaged, or untracked), per `status --porcelain=v2`.
func (g *Gateway) IsDirty(ctx context.Context, wtPath string) (bool, error) {
	out, err := g.Run(ctx, wtPath, "status", "--porcelain=v2")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// WorkingTreeFlags classifies the kinds of local changes present, per
// spec §3's working-tree flag set.
type WorkingTreeFlags struct {
	Untracked bool
	Modified  bool
	Staged    bool
	Renamed   bool
	Deleted   bool
}

// StatusFlags parses `status --porcelain=v2` into WorkingTreeFlags.
// Grounded on the teacher's internal/git/status.go GetWorktreeStatus,
// generalized from the older --porcelain (v1) two-column format to v2's
// "1 <xy> ..." / "2 <xy> ..." / "? <path>" record kinds.
func (g *Gateway) StatusFlags(ctx context.Context, wtPath string) (WorkingTreeFlags, error) {
	var flags WorkingTreeFlags
	out, err := g.Run(ctx, wtPath, "status", "--porcelain=v2")
	if err != nil {
		return flags, err
	}
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case '?':
			flags.Untracked = true
		case '2':
			flags.Renamed = true
			fallthrough
		case '1':
			fields := strings.SplitN(line, " ", 3)
			if len(fields) < 2 || len(fields[1]) < 2 {
				continue
			}
			xy := fields[1]
			if xy[0] != '.' {
				flags.Staged = true
			}
			if xy[1] != '.' {
				if xy[1] == 'D' {
					flags.Deleted = true
				} else {
					flags.Modified = true
				}
			}
		}
	}
	return flags, nil
}

// HasOperationInProgress detects an in-progress rebase/merge/conflict
// state by presence of .git bookkeeping files, matching spec §4.7's
// "Operation state" fast-tier check and the teacher's
// internal/git/status.go HasConflicts.
func HasOperationInProgress(gitDir string) (op string) {
	for name, state := range map[string]string{
		"rebase-merge": "rebase",
		"rebase-apply": "rebase",
		"MERGE_HEAD":   "merge",
	} {
		if fileExists(gitDir + "/" + name) {
			return state
		}
	}
	return "none"
}

// DiffStat returns the file/line summary of refA..refB.
func (g *Gateway) DiffStat(ctx context.Context, repoPath, refA, refB string) (DiffStat, error) {
	out, err := g.Run(ctx, repoPath, "diff", "--shortstat", refA+".."+refB)
	if err != nil {
		return DiffStat{}, err
	}
	return parseShortstat(out), nil
}

func parseShortstat(s string) DiffStat {
	var d DiffStat
	s = strings.TrimSpace(s)
	if s == "" {
		return d
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		n := atoi(fields[0])
		switch {
		case strings.Contains(part, "file"):
			d.Files = n
		case strings.Contains(part, "insertion"):
			d.Added = n
		case strings.Contains(part, "deletion"):
			d.Deleted = n
		}
	}
	return d
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// MergeTree predicts whether merging head into base would conflict,
// without touching any worktree (spec §4.1, §4.7 would_conflict).
func (g *Gateway) MergeTree(ctx context.Context, repoPath, base, head string) (MergeTreeResult, error) {
	mergeBase, err := g.MergeBase(ctx, repoPath, base, head)
	if err != nil {
		return MergeTreeResult{}, err
	}
	out, _, err := g.RunCombined(ctx, repoPath, "merge-tree", mergeBase, base, head)
	if err != nil {
		return MergeTreeResult{}, err
	}
	conflict := strings.Contains(out, "<<<<<<<") || strings.Contains(out, "CONFLICT")
	return MergeTreeResult{Conflict: conflict, Summary: firstLine(out)}, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// RebaseOnto rebases the current branch onto target.
func (g *Gateway) RebaseOnto(ctx context.Context, wtPath, target string) error {
	_, stderr, err := g.RunCombined(ctx, wtPath, "rebase", target)
	if err != nil {
		_, _, _ = g.RunCombined(ctx, wtPath, "rebase", "--abort")
		if strings.Contains(stderr, "CONFLICT") || strings.Contains(stderr, "conflict") {
			return wterr.RebaseConflict{Target: target}
		}
		return err
	}
	return nil
}

// FastForward moves localRef to tip iff that's a fast-forward.
func (g *Gateway) FastForward(ctx context.Context, repoPath, localRef, tip string) error {
	if !g.IsAncestor(ctx, repoPath, "refs/heads/"+localRef, tip) {
		return wterr.FastForwardRejected{Target: localRef, Tip: tip}
	}
	_, err := g.Run(ctx, repoPath, "update-ref", "refs/heads/"+localRef, tip)
	return err
}

// PushFF pushes ref to remote, rejecting non-fast-forwards (no --force).
func (g *Gateway) PushFF(ctx context.Context, repoPath, remote, ref string) error {
	_, stderr, err := g.RunCombined(ctx, repoPath, "push", remote, ref)
	if err != nil {
		if strings.Contains(stderr, "non-fast-forward") || strings.Contains(stderr, "fetch first") {
			return wterr.FastForwardRejected{Target: ref}
		}
		return err
	}
	return nil
}

// ListIgnoredFiles lists paths under wtPath that git ignores, per
// `ls-files --others --ignored --exclude-standard` (used by `wt step
// copy-ignored` to carry untracked local config like `.env` into a new
// worktree).
func (g *Gateway) ListIgnoredFiles(ctx context.Context, wtPath string) ([]string, error) {
	out, err := g.Run(ctx, wtPath, "ls-files", "--others", "--ignored", "--exclude-standard", "-z")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// StashPush stashes the current worktree's changes under a label.
func (g *Gateway) StashPush(ctx context.Context, wtPath, label string) (bool, error) {
	out, err := g.Run(ctx, wtPath, "stash", "push", "-u", "-m", label)
	if err != nil {
		return false, err
	}
	return !strings.Contains(out, "No local changes to save"), nil
}

// StashPop pops the most recent stash whose message contains label; it
// returns nil without popping anything if no stash matches.
func (g *Gateway) StashPop(ctx context.Context, wtPath, label string) error {
	out, err := g.Run(ctx, wtPath, "stash", "list")
	if err != nil {
		return err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, label) {
			ref := strings.SplitN(line, ":", 2)[0]
			_, err := g.Run(ctx, wtPath, "stash", "pop", ref)
			return err
		}
	}
	return nil
}
