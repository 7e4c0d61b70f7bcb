package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/discover"
	"github.com/colonyops/roost/internal/core/probe"
	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/data/db"
	"github.com/colonyops/roost/internal/data/stores"
)

// fakeGit serves deterministic signals for any repository path.
type fakeGit struct {
	dirtyPaths map[string]bool
}

func (f *fakeGit) RemoteURL(_ context.Context, dir string) (string, error) {
	return "https://github.com/acme/" + filepath.Base(dir), nil
}

func (f *fakeGit) HeadSHA(_ context.Context, _ string) (string, error) {
	return "abc1234def5678", nil
}

func (f *fakeGit) IsDirty(_ context.Context, dir string) (bool, error) {
	return f.dirtyPaths[filepath.Base(dir)], nil
}

func (f *fakeGit) Branch(_ context.Context, _ string) (string, error) {
	return "main", nil
}

type fixture struct {
	orchestrator *Orchestrator
	repos        *stores.RepoStore
	dirs         *stores.DirStore
	tracker      *Tracker
}

func newFixture(t *testing.T, git *fakeGit, opts Options) *fixture {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	log := zerolog.Nop()
	repoStore := stores.NewRepoStore(database)
	dirStore := stores.NewDirStore(database)
	tracker := NewTracker(log)

	orchestrator := NewOrchestrator(
		dirStore,
		repoStore,
		discover.New(log, nil),
		probe.New(git, log),
		tracker,
		opts,
		log,
	)

	return &fixture{orchestrator: orchestrator, repos: repoStore, dirs: dirStore, tracker: tracker}
}

// mkRepo creates a fake repository directory with a .git marker and the
// given extra files.
func mkRepo(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	for fname, content := range files {
		if err := os.WriteFile(filepath.Join(dir, fname), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func addDir(t *testing.T, f *fixture, path string) {
	t.Helper()
	if _, err := f.dirs.Create(context.Background(), repo.ScanDirectory{Path: path, Enabled: true}); err != nil {
		t.Fatalf("add scan dir: %v", err)
	}
}

func findRepo(t *testing.T, f *fixture, name string) repo.Repository {
	t.Helper()
	repos, err := f.repos.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, r := range repos {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("repository %q not found in store", name)
	return repo.Repository{}
}

func TestOrchestratorRun(t *testing.T) {
	ctx := context.Background()
	quick := Options{Cooldown: time.Millisecond, DirTimeout: time.Minute, MaxDepth: 5}

	t.Run("discovers classifies and persists", func(t *testing.T) {
		f := newFixture(t, &fakeGit{dirtyPaths: map[string]bool{"web-shop": true}}, quick)

		root1, root2 := t.TempDir(), t.TempDir()
		mkRepo(t, root1, "web-shop", map[string]string{
			"package.json": `{"name":"web-shop","dependencies":{"next":"14.0.0"}}`,
		})
		mkRepo(t, root2, "scraper", map[string]string{
			"requirements.txt": "requests==2.31\n",
		})
		// Plain directory, not a repository.
		if err := os.MkdirAll(filepath.Join(root1, "notes"), 0o755); err != nil {
			t.Fatal(err)
		}

		addDir(t, f, root1)
		addDir(t, f, root2)

		summary, err := f.orchestrator.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if summary.TotalScanned != 2 || summary.NewRepos != 2 || summary.UpdatedRepos != 0 {
			t.Errorf("got summary %+v", summary)
		}

		shop := findRepo(t, f, "web-shop")
		if shop.Theme == nil || *shop.Theme != "nextjs" {
			t.Errorf("web-shop theme = %v, want nextjs", shop.Theme)
		}
		if !shop.IsDirty {
			t.Error("web-shop should be dirty")
		}
		if shop.TriageStatus != repo.StatusPending {
			t.Errorf("web-shop status = %q, want pending", shop.TriageStatus)
		}
		if shop.RemoteURL == nil || *shop.RemoteURL != "https://github.com/acme/web-shop" {
			t.Errorf("web-shop remote = %v", shop.RemoteURL)
		}

		scraper := findRepo(t, f, "scraper")
		if scraper.Theme == nil || *scraper.Theme != "python" {
			t.Errorf("scraper theme = %v, want python", scraper.Theme)
		}

		if got := f.tracker.Snapshot().Status; got != StatusCompleted {
			t.Errorf("tracker status = %q, want completed", got)
		}
	})

	t.Run("rescan refreshes without duplicating", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, quick)

		root := t.TempDir()
		mkRepo(t, root, "scraper", map[string]string{"requirements.txt": "flask\n"})
		addDir(t, f, root)

		if _, err := f.orchestrator.Run(ctx); err != nil {
			t.Fatalf("first Run: %v", err)
		}

		// Manual triage between scans must survive the rescan.
		scraper := findRepo(t, f, "scraper")
		if err := f.repos.SetTheme(ctx, scraper.ID, "experimental"); err != nil {
			t.Fatalf("SetTheme: %v", err)
		}

		time.Sleep(5 * time.Millisecond)
		summary, err := f.orchestrator.Run(ctx)
		if err != nil {
			t.Fatalf("second Run: %v", err)
		}
		if summary.NewRepos != 0 || summary.UpdatedRepos != 1 {
			t.Errorf("got summary %+v, want 0 new 1 updated", summary)
		}

		scraper = findRepo(t, f, "scraper")
		if scraper.Theme == nil || *scraper.Theme != "experimental" {
			t.Errorf("theme = %v, manual assignment must survive rescan", scraper.Theme)
		}
		if scraper.TriageStatus != repo.StatusManual {
			t.Errorf("status = %q, want manual", scraper.TriageStatus)
		}
	})

	t.Run("no scan directories", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, quick)

		_, err := f.orchestrator.Run(ctx)
		if !errors.Is(err, ErrNoScanDirs) {
			t.Fatalf("got %v, want ErrNoScanDirs", err)
		}

		// A scan that never started must not move the progress machine
		// off idle.
		snapshot := f.tracker.Snapshot()
		if snapshot.Status != StatusIdle {
			t.Errorf("tracker status = %q, want idle", snapshot.Status)
		}
		if snapshot.StartedAt != nil || snapshot.EndedAt != nil {
			t.Errorf("timestamps set without a scan: %+v", snapshot)
		}
	})

	t.Run("cooldown rejects rapid rescans", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, Options{Cooldown: time.Hour, DirTimeout: time.Minute, MaxDepth: 5})

		root := t.TempDir()
		mkRepo(t, root, "solo", nil)
		addDir(t, f, root)

		if _, err := f.orchestrator.Run(ctx); err != nil {
			t.Fatalf("first Run: %v", err)
		}
		if _, err := f.orchestrator.Run(ctx); !errors.Is(err, ErrCooldown) {
			t.Fatalf("got %v, want ErrCooldown", err)
		}
	})

	t.Run("single scan at a time", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, quick)

		release, err := f.orchestrator.acquire(ctx)
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		defer release.done()

		if _, err := f.orchestrator.Run(ctx); !errors.Is(err, ErrScanInProgress) {
			t.Fatalf("got %v, want ErrScanInProgress", err)
		}
	})

	t.Run("cancelled before walking", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, quick)

		root := t.TempDir()
		mkRepo(t, root, "solo", nil)
		addDir(t, f, root)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := f.orchestrator.Run(cancelled); !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want context.Canceled", err)
		}
		if got := f.tracker.Snapshot().Status; got != StatusCancelled {
			t.Errorf("tracker status = %q, want cancelled", got)
		}
	})

	t.Run("observers see directory progress", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, quick)

		root := t.TempDir()
		mkRepo(t, root, "solo", nil)
		addDir(t, f, root)

		var statuses []Status
		unsubscribe := f.tracker.Subscribe(func(p Progress) {
			statuses = append(statuses, p.Status)
		})
		defer unsubscribe()

		if _, err := f.orchestrator.Run(ctx); err != nil {
			t.Fatalf("Run: %v", err)
		}

		if len(statuses) < 3 {
			t.Fatalf("expected begin, update, and finish notifications, got %d", len(statuses))
		}
		if statuses[0] != StatusScanning {
			t.Errorf("first status = %q, want scanning", statuses[0])
		}
		if statuses[len(statuses)-1] != StatusCompleted {
			t.Errorf("last status = %q, want completed", statuses[len(statuses)-1])
		}
	})

	t.Run("duplicate path across directories counted once", func(t *testing.T) {
		f := newFixture(t, &fakeGit{}, quick)

		root := t.TempDir()
		mkRepo(t, root, "shared", nil)
		addDir(t, f, root)
		addDir(t, f, fmt.Sprintf("%s%c", root, os.PathSeparator))

		summary, err := f.orchestrator.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if summary.TotalScanned != 1 || summary.NewRepos != 1 {
			t.Errorf("got summary %+v, want exactly one repository", summary)
		}
	})
}
