package organize

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/repo"
)

// ConflictMode controls what happens when a destination exists at
// execution time even though the planner resolved it.
type ConflictMode string

const (
	// ConflictSuffix trusts the planner's pre-resolved target and
	// proceeds. The destination re-check below is advisory only in this
	// mode; the window between planning and execution is a known,
	// documented race.
	ConflictSuffix ConflictMode = "suffix"
	// ConflictSkip records a failure for the entry and continues.
	ConflictSkip ConflictMode = "skip"
	// ConflictFail records a failure for the entry and continues; it
	// differs from skip only in the reported message.
	ConflictFail ConflictMode = "fail"
)

// ExecuteOptions tune a move batch.
type ExecuteOptions struct {
	// HandleConflicts defaults to ConflictSuffix.
	HandleConflicts ConflictMode `json:"handleConflicts"`
	// CreateBackup is accepted and threaded through for external backup
	// collaborators; the executor itself does not snapshot.
	CreateBackup bool `json:"createBackup"`
}

// MoveResult is the per-entry outcome.
type MoveResult struct {
	RepoID  int64  `json:"repoId"`
	Name    string `json:"name"`
	From    string `json:"from"`
	To      string `json:"to"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult aggregates a move batch. Entries excluded by a blocking
// conflict or an empty target do not appear in Results at all.
type BatchResult struct {
	SuccessCount int          `json:"successCount"`
	FailCount    int          `json:"failCount"`
	Results      []MoveResult `json:"results"`
}

// Executor performs approved move batches. Entries are processed strictly
// sequentially: concurrent moves would race the destination-existence
// check that keeps target paths unique.
type Executor struct {
	repos repo.Store
	log   zerolog.Logger
}

// NewExecutor creates a move executor.
func NewExecutor(repos repo.Store, log zerolog.Logger) *Executor {
	return &Executor{repos: repos, log: log}
}

// Execute relocates each proceedable entry, isolating failures so one bad
// entry never aborts the batch.
func (e *Executor) Execute(ctx context.Context, entries []PreviewEntry, opts ExecuteOptions) BatchResult {
	if opts.HandleConflicts == "" {
		opts.HandleConflicts = ConflictSuffix
	}

	var batch BatchResult
	for _, entry := range entries {
		if len(entry.Conflicts) > 0 || entry.To == "" {
			// Not attempted, not failed: conflicted entries are outside
			// the batch entirely.
			continue
		}

		result := e.moveOne(ctx, entry, opts)
		if result.Success {
			batch.SuccessCount++
		} else {
			batch.FailCount++
		}
		batch.Results = append(batch.Results, result)
	}

	return batch
}

func (e *Executor) moveOne(ctx context.Context, entry PreviewEntry, opts ExecuteOptions) MoveResult {
	result := MoveResult{
		RepoID: entry.RepoID,
		Name:   entry.Name,
		From:   entry.From,
		To:     entry.To,
	}

	fail := func(format string, args ...any) MoveResult {
		result.Error = fmt.Sprintf(format, args...)
		e.log.Warn().Str("name", entry.Name).Str("from", entry.From).Str("to", entry.To).Msg(result.Error)
		return result
	}

	if err := os.MkdirAll(pathutil.Parent(entry.To), 0o755); err != nil {
		return fail("create destination parent: %v", err)
	}

	if _, err := os.Stat(entry.From); err != nil {
		return fail("source not found: %v", err)
	}

	// State may have changed since planning; re-check the destination.
	if _, err := os.Stat(entry.To); err == nil {
		switch opts.HandleConflicts {
		case ConflictSkip:
			return fail("destination already exists, skipped")
		case ConflictFail:
			return fail("destination already exists")
		case ConflictSuffix:
			// Trust the plan. The planner resolved naming against the
			// state it saw; if the destination appeared since, the move
			// below reports the failure.
		}
	}

	if pathutil.SameVolume(entry.From, entry.To) {
		if err := os.Rename(entry.From, entry.To); err != nil {
			return fail("rename: %v", err)
		}
	} else {
		// Copy fully before deleting anything; the source is only
		// removed once the copy has succeeded.
		if err := copyTree(entry.From, entry.To); err != nil {
			return fail("copy: %v", err)
		}
		if err := os.RemoveAll(entry.From); err != nil {
			return fail("remove source after copy: %v", err)
		}
	}

	if err := e.repos.MarkOrganized(ctx, entry.RepoID, pathutil.Normalize(entry.To)); err != nil {
		return fail("record move: %v", err)
	}

	result.Success = true
	e.log.Info().Str("name", entry.Name).Str("from", entry.From).Str("to", entry.To).Msg("repository moved")
	return result
}
