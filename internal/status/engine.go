package status

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/worktrunk/worktrunk/internal/gitgw"
	"github.com/worktrunk/worktrunk/internal/logx"
	"github.com/worktrunk/worktrunk/internal/repocache"
)

// DefaultWorkerLimit bounds the slow-tier's concurrent git subprocesses
// (spec §4.7, §5: "one for git subprocesses, default cap 32").
const DefaultWorkerLimit = 32

// CILimit bounds concurrent CI subprocess calls (spec §5: default cap 8).
const CILimit = 8

// LocalTimeout and CITimeout bound individual slow-tier tasks (spec §5).
const (
	LocalTimeout = 3 * time.Second
	CITimeout    = 5 * time.Second
)

// CIChecker queries a branch's CI/PR state via an external CLI
// (gh/glab). Implementations live outside this package since they
// shell out to a platform-specific tool; the engine only needs the
// interface to stay platform-agnostic.
type CIChecker interface {
	Check(ctx context.Context, branch string) (CIStatus, error)
}

// Engine runs the two-tier status pipeline (spec §4.7) over a set of
// targets, reporting each row's fast-tier values immediately and
// patching in slow-tier values as they complete.
type Engine struct {
	GW            *gitgw.Gateway
	Cache         *repocache.Cache
	RepoPath      string
	DefaultBranch string
	CI            CIChecker // nil disables CI status entirely
	WorkerLimit   int
}

// OnUpdate is called once per row each time new fields are filled:
// first with the fast-tier snapshot, then again whenever a slow-tier
// field transitions out of CellPending. Implementations must not
// block — the engine calls it from worker goroutines and the caller
// owns synchronizing with a renderer (spec §4.7 progressive rendering).
type OnUpdate func(row int, rec Record)

// row pairs a record with the mutex guarding it, since the three
// slow-tier tasks for one target run concurrently and each patches a
// different subset of fields.
type row struct {
	mu  sync.Mutex
	rec Record
}

func (r *row) patch(fn func(*Record)) Record {
	r.mu.Lock()
	fn(&r.rec)
	snapshot := r.rec
	r.mu.Unlock()
	return snapshot
}

// Run executes the fast tier synchronously for every target, then
// fans the slow tier out across a bounded worker pool. It blocks until
// every task has either completed or hit its timeout.
func (e *Engine) Run(ctx context.Context, targets []Target, onUpdate OnUpdate) []Record {
	limit := e.WorkerLimit
	if limit <= 0 {
		limit = DefaultWorkerLimit
	}

	rows := make([]*row, len(targets))
	for i, t := range targets {
		rows[i] = &row{rec: e.fastTier(ctx, t)}
		if onUpdate != nil {
			onUpdate(i, rows[i].rec)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, t := range targets {
		i, t := i, t
		if t.WorktreePath == "" && !t.HasUpstream {
			continue // remote-only branches with no upstream get no slow-tier queries
		}
		r := rows[i]
		g.Go(func() error {
			snap := e.slowTierAheadBehind(gctx, t, r)
			if onUpdate != nil {
				onUpdate(i, snap)
			}
			return nil
		})
		g.Go(func() error {
			snap := e.slowTierClassification(gctx, t, r)
			if onUpdate != nil {
				onUpdate(i, snap)
			}
			return nil
		})
		if e.CI != nil {
			g.Go(func() error {
				snap := e.slowTierCI(gctx, t, r)
				if onUpdate != nil {
					onUpdate(i, snap)
				}
				return nil
			})
		}
	}
	_ = g.Wait() // tasks never return non-nil; timeouts degrade cells instead of failing the run

	records := make([]Record, len(rows))
	for i, r := range rows {
		r.mu.Lock()
		records[i] = r.rec
		r.mu.Unlock()
	}
	return records
}

func (e *Engine) fastTier(ctx context.Context, t Target) Record {
	rec := Record{Branch: t.Branch, WorktreePath: t.WorktreePath}

	if t.WorktreePath == "" {
		return rec
	}

	if flags, err := e.GW.StatusFlags(ctx, t.WorktreePath); err == nil {
		rec.Dirty = flags.Untracked || flags.Modified || flags.Staged || flags.Deleted
	}

	if gitDir, err := e.Cache.GitCommonDir(ctx); err == nil {
		rec.Operation = gitgw.HasOperationInProgress(gitDir)
		if rec.Operation == "none" {
			rec.Operation = ""
		}
	}

	if info, err := e.GW.HeadInfo(ctx, t.WorktreePath); err == nil {
		rec.HeadSha = info.Sha
		rec.ShortSha = info.ShortSha
		rec.Message = info.Message
		if ts, err := time.Parse(time.RFC3339, info.Timestamp); err == nil {
			rec.Age = ts
		}
	}

	return rec
}

func (e *Engine) slowTierAheadBehind(ctx context.Context, t Target, r *row) Record {
	ctx, cancel := context.WithTimeout(ctx, LocalTimeout)
	defer cancel()

	ab, err := e.Cache.AheadBehind(ctx, e.DefaultBranch, t.Branch)
	if err != nil {
		logx.Logger.Debug().Err(err).Str("branch", t.Branch).Msg("ahead/behind failed")
		state := CellError
		if ctx.Err() == context.DeadlineExceeded {
			state = CellUnknown
		}
		return r.patch(func(rec *Record) { rec.LocalAheadBehind = AheadBehindCell{State: state} })
	}
	return r.patch(func(rec *Record) {
		rec.LocalAheadBehind = AheadBehindCell{State: CellReady, Ahead: ab.Ahead, Behind: ab.Behind}
	})
}

func (e *Engine) slowTierClassification(ctx context.Context, t Target, r *row) Record {
	ctx, cancel := context.WithTimeout(ctx, LocalTimeout)
	defer cancel()

	r.mu.Lock()
	dirty := r.rec.Dirty
	r.mu.Unlock()

	class, err := Classify(ctx, e.GW, e.Cache, e.RepoPath, e.DefaultBranch, t.Branch, dirty)
	if err != nil {
		state := CellError
		if ctx.Err() == context.DeadlineExceeded {
			state = CellUnknown
		}
		return r.patch(func(rec *Record) { rec.ClassState = state })
	}
	return r.patch(func(rec *Record) {
		rec.Classification = class
		rec.ClassState = CellReady
	})
}

func (e *Engine) slowTierCI(ctx context.Context, t Target, r *row) Record {
	ctx, cancel := context.WithTimeout(ctx, CITimeout)
	defer cancel()

	r.mu.Lock()
	headSha := r.rec.HeadSha
	r.mu.Unlock()

	if cached, ok := e.cachedCI(ctx, t.Branch, headSha); ok {
		return r.patch(func(rec *Record) { rec.CI = cached })
	}

	st, err := e.CI.Check(ctx, t.Branch)
	if err != nil {
		state := CellError
		warning := err.Error()
		if ctx.Err() == context.DeadlineExceeded {
			state = CellUnknown
			warning = ""
		}
		return r.patch(func(rec *Record) { rec.CI = CIStatus{State: state, Warning: warning} })
	}
	st.State = CellReady
	e.storeCachedCI(ctx, t.Branch, headSha, st)
	return r.patch(func(rec *Record) { rec.CI = st })
}

// cachedCI reads worktrunk.state.<branch>.ci-status.* from git config
// (spec §4.7 CI status caching, 30-60s TTL keyed on branch+sha).
func (e *Engine) cachedCI(ctx context.Context, branch, sha string) (CIStatus, bool) {
	prefix := "worktrunk.state." + branch + ".ci-status"
	cachedSha, ok := e.GW.Config(ctx, e.RepoPath, prefix+".sha")
	if !ok || cachedSha != sha {
		return CIStatus{}, false
	}
	ts, ok := e.GW.Config(ctx, e.RepoPath, prefix+".time")
	if !ok {
		return CIStatus{}, false
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || time.Since(time.Unix(unix, 0)) > 60*time.Second {
		return CIStatus{}, false
	}
	state, _ := e.GW.Config(ctx, e.RepoPath, prefix+".state")
	url, _ := e.GW.Config(ctx, e.RepoPath, prefix+".url")
	return CIStatus{State: CellReady, Status: state, URL: url}, true
}

func (e *Engine) storeCachedCI(ctx context.Context, branch, sha string, st CIStatus) {
	prefix := "worktrunk.state." + branch + ".ci-status"
	_ = e.GW.SetConfig(ctx, e.RepoPath, prefix+".sha", sha)
	_ = e.GW.SetConfig(ctx, e.RepoPath, prefix+".time", strconv.FormatInt(time.Now().Unix(), 10))
	_ = e.GW.SetConfig(ctx, e.RepoPath, prefix+".state", st.Status)
	_ = e.GW.SetConfig(ctx, e.RepoPath, prefix+".url", st.URL)
}
