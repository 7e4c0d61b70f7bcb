// Package scan drives the walker, prober, and classifier across all
// enabled scan directories and persists the results.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/classify"
	"github.com/colonyops/roost/internal/core/discover"
	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/probe"
	"github.com/colonyops/roost/internal/core/repo"
)

// Recoverable precondition failures, reported to the caller as messages
// rather than crashes.
var (
	ErrScanInProgress = errors.New("a scan is already in progress")
	ErrCooldown       = errors.New("scan requested too soon after the previous one")
	ErrNoScanDirs     = errors.New("no enabled scan directories configured")
)

const (
	// defaultCooldown is the minimum gap between scan starts.
	defaultCooldown = 5 * time.Second
	// defaultDirTimeout bounds the walk of a single scan directory. A
	// directory that exceeds it is abandoned; the scan continues. It is
	// a soft bound: an in-flight filesystem call on a hung network mount
	// is not interrupted.
	defaultDirTimeout = 60 * time.Second
	// defaultMaxDepth bounds the discovery walk.
	defaultMaxDepth = 5
)

// Summary reports the outcome of one scan run.
type Summary struct {
	TotalScanned int `json:"totalScanned"`
	NewRepos     int `json:"newRepos"`
	UpdatedRepos int `json:"updatedRepos"`
	SkippedDirs  int `json:"skippedDirs"`
}

// Options tune a scan Orchestrator.
type Options struct {
	Cooldown   time.Duration
	DirTimeout time.Duration
	MaxDepth   int
}

func (o Options) withDefaults() Options {
	if o.Cooldown == 0 {
		o.Cooldown = defaultCooldown
	}
	if o.DirTimeout == 0 {
		o.DirTimeout = defaultDirTimeout
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = defaultMaxDepth
	}
	return o
}

// Orchestrator runs scans one at a time. The in-progress rejection is the
// actual concurrency control: directories are walked strictly
// sequentially and the tracker has no concurrent writers.
type Orchestrator struct {
	dirs    repo.DirStore
	repos   repo.Store
	walker  *discover.Walker
	prober  *probe.Prober
	tracker *Tracker
	opts    Options
	log     zerolog.Logger

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	lastStart time.Time
}

// NewOrchestrator wires a scan orchestrator.
func NewOrchestrator(
	dirs repo.DirStore,
	repos repo.Store,
	walker *discover.Walker,
	prober *probe.Prober,
	tracker *Tracker,
	opts Options,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		dirs:    dirs,
		repos:   repos,
		walker:  walker,
		prober:  prober,
		tracker: tracker,
		opts:    opts.withDefaults(),
		log:     log,
	}
}

// Tracker exposes the progress state for subscription and snapshots.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}

// Stop requests cooperative cancellation of the running scan. The flag is
// polled at directory and per-repository granularity; in-flight
// filesystem calls are not aborted.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// Run executes a full scan: walk every enabled directory, probe and
// classify each discovered repository, deduplicate by normalized path,
// and upsert into the store. It blocks until the scan finishes.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	release, err := o.acquire(ctx)
	if err != nil {
		return Summary{}, err
	}

	scanCtx := release.ctx
	defer release.done()

	// Precondition failures leave the progress state alone, like the
	// cooldown and in-progress rejections: the machine only moves once a
	// scan actually starts.
	dirs, err := o.dirs.ListEnabled(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list scan directories: %w", err)
	}
	if len(dirs) == 0 {
		return Summary{}, ErrNoScanDirs
	}

	o.tracker.begin()

	// Dedupe across all directories by normalized path, first
	// occurrence wins.
	found := make(map[string]probe.Signals)
	var order []string
	skippedDirs := 0

	for i, dir := range dirs {
		if scanCtx.Err() != nil {
			o.tracker.finish(StatusCancelled, "")
			return Summary{}, scanCtx.Err()
		}

		if err := o.scanDir(scanCtx, dir.Path, found, &order); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				o.log.Warn().Str("dir", dir.Path).Dur("timeout", o.opts.DirTimeout).Msg("scan directory timed out, abandoning")
				skippedDirs++
			} else if scanCtx.Err() != nil {
				o.tracker.finish(StatusCancelled, "")
				return Summary{}, scanCtx.Err()
			} else {
				o.log.Warn().Err(err).Str("dir", dir.Path).Msg("scan directory failed, continuing")
				skippedDirs++
			}
		}

		o.tracker.update(i, dir.Path, len(found))
	}

	summary := Summary{TotalScanned: len(found), SkippedDirs: skippedDirs}

	for _, path := range order {
		if scanCtx.Err() != nil {
			o.tracker.finish(StatusCancelled, "")
			return Summary{}, scanCtx.Err()
		}

		isNew, err := o.persist(ctx, found[path])
		if err != nil {
			o.log.Error().Err(err).Str("path", path).Msg("persisting repository failed")
			continue
		}
		if isNew {
			summary.NewRepos++
		} else {
			summary.UpdatedRepos++
		}
	}

	o.tracker.finish(StatusCompleted, "")
	return summary, nil
}

// releaseHandle carries the scan context plus the cleanup closure out of
// acquire.
type releaseHandle struct {
	ctx  context.Context
	done func()
}

// acquire enforces the single-scan and cooldown rules and installs the
// cancellation hook.
func (o *Orchestrator) acquire(ctx context.Context) (releaseHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return releaseHandle{}, ErrScanInProgress
	}
	if !o.lastStart.IsZero() && time.Since(o.lastStart) < o.opts.Cooldown {
		return releaseHandle{}, fmt.Errorf("%w: retry in %s", ErrCooldown, (o.opts.Cooldown - time.Since(o.lastStart)).Round(time.Second))
	}

	scanCtx, cancel := context.WithCancel(ctx)
	o.running = true
	o.lastStart = time.Now()
	o.cancel = cancel

	return releaseHandle{
		ctx: scanCtx,
		done: func() {
			cancel()
			o.mu.Lock()
			o.running = false
			o.cancel = nil
			o.mu.Unlock()
		},
	}, nil
}

// scanDir walks one directory under its soft timeout, probing every
// discovered repository.
func (o *Orchestrator) scanDir(ctx context.Context, dir string, found map[string]probe.Signals, order *[]string) error {
	dirCtx, cancel := context.WithTimeout(ctx, o.opts.DirTimeout)
	defer cancel()

	return o.walker.Walk(dirCtx, dir, o.opts.MaxDepth, func(ev discover.Event) {
		if ev.Kind != discover.KindRepo {
			return
		}
		// Cancellation is also checked between individual probes.
		if dirCtx.Err() != nil {
			return
		}

		normalized := pathutil.Normalize(ev.Path)
		if _, seen := found[normalized]; seen {
			return
		}

		sig := o.prober.Probe(dirCtx, ev.Path)
		found[normalized] = sig
		*order = append(*order, normalized)
	})
}

// persist upserts one probed repository keyed on its normalized original
// path. Existing records get their volatile fields refreshed; the theme
// suggestion is applied by the store only when no theme is set. New
// records start pending with the classifier's suggestion seeded.
func (o *Orchestrator) persist(ctx context.Context, sig probe.Signals) (isNew bool, err error) {
	suggestion := classify.Suggest(sig)
	var suggested *string
	if suggestion != classify.ThemeUnclassified {
		suggested = &suggestion
	}

	existing, err := o.repos.FindByOriginalPath(ctx, sig.Path)
	switch {
	case err == nil:
		update := repo.ProbeUpdate{
			RemoteURL:      sig.RemoteURL,
			LastCommitSHA:  sig.LastCommitSHA,
			IsDirty:        sig.IsDirty,
			SuggestedTheme: suggested,
		}
		if err := o.repos.Refresh(ctx, existing.ID, update); err != nil {
			return false, fmt.Errorf("refresh %s: %w", sig.Path, err)
		}
		return false, nil

	case errors.Is(err, repo.ErrNotFound):
		_, err := o.repos.Create(ctx, repo.Repository{
			Name:          sig.Name,
			OriginalPath:  sig.Path,
			RemoteURL:     sig.RemoteURL,
			LastCommitSHA: sig.LastCommitSHA,
			IsDirty:       sig.IsDirty,
			Theme:         suggested,
			TriageStatus:  repo.StatusPending,
		})
		if err != nil {
			return false, fmt.Errorf("create %s: %w", sig.Path, err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("lookup %s: %w", sig.Path, err)
	}
}
