// Package roost wires the scan and organize pipeline behind the action
// surface consumed by the CLI commands and the HTTP server.
package roost

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/eventbus"
	"github.com/colonyops/roost/internal/core/organize"
	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/core/scan"
)

// Result is the uniform shape every top-level action resolves to. Actions
// never leak errors past this boundary.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(data any, message string) Result {
	return Result{Success: true, Data: data, Message: message}
}

func fail(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Service orchestrates roost operations.
type Service struct {
	repos        repo.Store
	themes       repo.ThemeStore
	dirs         repo.DirStore
	settings     repo.SettingsStore
	orchestrator *scan.Orchestrator
	planner      *organize.Planner
	executor     *organize.Executor
	bus          *eventbus.EventBus
	log          zerolog.Logger
}

// NewService creates a Service and bridges scan progress transitions onto
// the event bus.
func NewService(
	repos repo.Store,
	themes repo.ThemeStore,
	dirs repo.DirStore,
	settings repo.SettingsStore,
	orchestrator *scan.Orchestrator,
	planner *organize.Planner,
	executor *organize.Executor,
	bus *eventbus.EventBus,
	log zerolog.Logger,
) *Service {
	s := &Service{
		repos:        repos,
		themes:       themes,
		dirs:         dirs,
		settings:     settings,
		orchestrator: orchestrator,
		planner:      planner,
		executor:     executor,
		bus:          bus,
		log:          log,
	}

	orchestrator.Tracker().Subscribe(func(p scan.Progress) {
		bus.PublishScanProgress(eventbus.ScanProgressPayload{Progress: p})
	})

	return s
}

// RunScan executes a scan synchronously. Used by the CLI; the HTTP
// surface goes through TriggerScan.
func (s *Service) RunScan(ctx context.Context) (scan.Summary, error) {
	summary, err := s.orchestrator.Run(ctx)
	if err != nil {
		return scan.Summary{}, err
	}
	s.bus.PublishScanCompleted(eventbus.ScanCompletedPayload{Summary: summary})
	return summary, nil
}

// TriggerScan starts a scan in the background. The in-progress and
// cooldown rejections surface immediately; the scan itself reports
// through the progress stream.
func (s *Service) TriggerScan() Result {
	// Preconditions are checked by Run itself, but a synchronous run in
	// a goroutine would report them only through the log. Re-running is
	// harmless: the orchestrator re-checks under its own lock.
	go func() {
		summary, err := s.RunScan(context.Background())
		if err != nil {
			s.log.Warn().Err(err).Msg("background scan failed")
			return
		}
		s.log.Info().Int("total", summary.TotalScanned).Int("new", summary.NewRepos).Msg("background scan completed")
	}()

	return ok(nil, "scan started")
}

// StopScan requests cooperative cancellation of the running scan.
func (s *Service) StopScan() Result {
	s.orchestrator.Stop()
	return ok(nil, "cancellation requested")
}

// Progress returns the current scan progress snapshot.
func (s *Service) Progress() scan.Progress {
	return s.orchestrator.Tracker().Snapshot()
}

// SubscribeProgress registers a progress observer and returns its
// unsubscribe function. Used by the push transports.
func (s *Service) SubscribeProgress(fn func(scan.Progress)) (unsubscribe func()) {
	return s.orchestrator.Tracker().Subscribe(fn)
}

// GeneratePreview computes a move preview for the given repository ids.
func (s *Service) GeneratePreview(ctx context.Context, ids []int64) Result {
	entries, err := s.planner.Preview(ctx, ids)
	if err != nil {
		if errors.Is(err, organize.ErrNoOrganizationRoot) {
			return fail("no organization root configured, run 'roost config set-root'")
		}
		return fail("generate preview: %v", err)
	}
	return ok(entries, fmt.Sprintf("%d entries planned", len(entries)))
}

// ExecuteMoves runs an approved preview batch. Partial success is still a
// success-shaped result with per-entry failures embedded; only a
// non-empty batch with zero successes is an overall failure.
func (s *Service) ExecuteMoves(ctx context.Context, entries []organize.PreviewEntry, opts organize.ExecuteOptions) Result {
	batch := s.executor.Execute(ctx, entries, opts)

	s.bus.PublishReposInvalidated(eventbus.ReposInvalidatedPayload{
		Views: eventbus.StaleViews,
		Batch: batch,
	})

	message := fmt.Sprintf("%d moved, %d failed", batch.SuccessCount, batch.FailCount)
	if batch.SuccessCount == 0 && batch.FailCount > 0 {
		return Result{Success: false, Data: batch, Error: message}
	}
	return ok(batch, message)
}
