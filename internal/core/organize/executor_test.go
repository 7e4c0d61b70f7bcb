package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/repo"
)

func TestExecutorExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("moves and records organization", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "web-shop", strptr("nextjs"), false)

		// A file and a relative symlink that must survive the move intact.
		src := r.OriginalPath
		if err := os.WriteFile(filepath.Join(src, "main.js"), []byte("export {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink("main.js", filepath.Join(src, "index.js")); err != nil {
			t.Fatal(err)
		}

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		batch := f.executor.Execute(ctx, entries, ExecuteOptions{})
		if batch.SuccessCount != 1 || batch.FailCount != 0 {
			t.Fatalf("got batch %+v", batch)
		}

		dest := entries[0].To
		if _, err := os.Stat(filepath.Join(dest, "main.js")); err != nil {
			t.Errorf("moved file missing: %v", err)
		}
		if _, err := os.Stat(src); !os.IsNotExist(err) {
			t.Errorf("source should be gone, stat err = %v", err)
		}

		// Symlinks are recreated as links, never dereferenced.
		target, err := os.Readlink(filepath.Join(dest, "index.js"))
		if err != nil {
			t.Fatalf("Readlink: %v", err)
		}
		if target != "main.js" {
			t.Errorf("symlink target = %q, want main.js", target)
		}

		got, err := f.repos.Get(ctx, r.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.TriageStatus != repo.StatusAuto {
			t.Errorf("status = %q, want auto", got.TriageStatus)
		}
		if got.PhysicalPath == nil || *got.PhysicalPath != pathutil.Normalize(dest) {
			t.Errorf("physical path = %v, want %q", got.PhysicalPath, dest)
		}
		if got.CurrentPath() != pathutil.Normalize(dest) {
			t.Errorf("CurrentPath = %q, want the new location", got.CurrentPath())
		}
	})

	t.Run("conflicted entries are excluded entirely", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "ok-repo", strptr("go"), false)

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		entries = append(entries,
			PreviewEntry{RepoID: 999, Name: "broken", Conflicts: []string{"no theme assigned"}},
			PreviewEntry{RepoID: 998, Name: "empty-target"},
		)

		batch := f.executor.Execute(ctx, entries, ExecuteOptions{})
		if len(batch.Results) != 1 {
			t.Fatalf("conflicted and targetless entries must not appear in results, got %d", len(batch.Results))
		}
		if batch.SuccessCount != 1 || batch.FailCount != 0 {
			t.Errorf("got batch %+v", batch)
		}
	})

	t.Run("missing source fails the entry only", func(t *testing.T) {
		f := newPlanFixture(t)
		gone := f.seedRepo(t, "gone", strptr("go"), false)
		ok := f.seedRepo(t, "still-here", strptr("go"), false)

		if err := os.RemoveAll(gone.OriginalPath); err != nil {
			t.Fatal(err)
		}

		entries, err := f.planner.Preview(ctx, []int64{gone.ID, ok.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		batch := f.executor.Execute(ctx, entries, ExecuteOptions{})
		if batch.SuccessCount != 1 || batch.FailCount != 1 {
			t.Fatalf("got batch %+v", batch)
		}

		for _, result := range batch.Results {
			if result.Name == "gone" && result.Success {
				t.Error("entry with missing source must fail")
			}
			if result.Name == "still-here" && !result.Success {
				t.Errorf("unrelated entry failed: %s", result.Error)
			}
		}
	})

	t.Run("skip mode refuses a destination that appeared after planning", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "late", strptr("go"), false)

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		// Simulate the race: the target appears between plan and execute.
		if err := os.MkdirAll(entries[0].To, 0o755); err != nil {
			t.Fatal(err)
		}

		batch := f.executor.Execute(ctx, entries, ExecuteOptions{HandleConflicts: ConflictSkip})
		if batch.FailCount != 1 || batch.SuccessCount != 0 {
			t.Fatalf("got batch %+v", batch)
		}

		// The record must be untouched.
		got, err := f.repos.Get(ctx, r.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.TriageStatus == repo.StatusAuto {
			t.Error("skipped entry must not be marked organized")
		}
	})
}
