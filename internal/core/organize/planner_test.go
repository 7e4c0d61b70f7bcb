package organize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/pathutil"
	"github.com/colonyops/roost/internal/core/repo"
	"github.com/colonyops/roost/internal/data/db"
	"github.com/colonyops/roost/internal/data/stores"
)

type planFixture struct {
	planner  *Planner
	executor *Executor
	repos    *stores.RepoStore
	settings *stores.SettingsStore
	root     string
}

func newPlanFixture(t *testing.T) *planFixture {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	log := zerolog.Nop()
	repoStore := stores.NewRepoStore(database)
	settingsStore := stores.NewSettingsStore(database)

	root := pathutil.Normalize(t.TempDir())
	settings, err := settingsStore.Get(context.Background())
	if err != nil {
		t.Fatalf("Get settings: %v", err)
	}
	settings.OrganizationRoot = root
	if err := settingsStore.Save(context.Background(), settings); err != nil {
		t.Fatalf("Save settings: %v", err)
	}

	return &planFixture{
		planner:  NewPlanner(repoStore, settingsStore, log),
		executor: NewExecutor(repoStore, log),
		repos:    repoStore,
		settings: settingsStore,
		root:     root,
	}
}

func strptr(s string) *string { return &s }

// seedRepo creates a repository record plus its on-disk source directory.
func (f *planFixture) seedRepo(t *testing.T, name string, theme *string, dirty bool) repo.Repository {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(filepath.Join(src, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	created, err := f.repos.Create(context.Background(), repo.Repository{
		Name:         name,
		OriginalPath: pathutil.Normalize(src),
		Theme:        theme,
		IsDirty:      dirty,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func TestPlannerPreview(t *testing.T) {
	ctx := context.Background()

	t.Run("plain entry", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "web-shop", strptr("nextjs"), false)

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries", len(entries))
		}

		e := entries[0]
		if len(e.Conflicts) != 0 {
			t.Fatalf("unexpected conflicts %v", e.Conflicts)
		}
		want := f.root + "/nextjs/web-shop"
		if e.To != want {
			t.Errorf("To = %q, want %q", e.To, want)
		}
		if e.From != r.OriginalPath {
			t.Errorf("From = %q, want %q", e.From, r.OriginalPath)
		}
	})

	t.Run("no organization root", func(t *testing.T) {
		f := newPlanFixture(t)
		settings, _ := f.settings.Get(ctx)
		settings.OrganizationRoot = ""
		if err := f.settings.Save(ctx, settings); err != nil {
			t.Fatal(err)
		}

		_, err := f.planner.Preview(ctx, []int64{1})
		if !errors.Is(err, ErrNoOrganizationRoot) {
			t.Fatalf("got %v, want ErrNoOrganizationRoot", err)
		}
	})

	t.Run("missing repository is a blocking conflict", func(t *testing.T) {
		f := newPlanFixture(t)

		entries, err := f.planner.Preview(ctx, []int64{999})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		if len(entries) != 1 || len(entries[0].Conflicts) == 0 {
			t.Fatalf("expected a conflicted entry, got %+v", entries)
		}
		if entries[0].To != "" {
			t.Errorf("conflicted entry must have empty target, got %q", entries[0].To)
		}
	})

	t.Run("no theme is a blocking conflict", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "drifter", nil, false)

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		if len(entries[0].Conflicts) != 1 || entries[0].Conflicts[0] != "no theme assigned" {
			t.Errorf("got conflicts %v", entries[0].Conflicts)
		}
	})

	t.Run("existing target gets suffixed with warning", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "api", strptr("go"), false)

		if err := os.MkdirAll(filepath.Join(f.root, "go", "api"), 0o755); err != nil {
			t.Fatal(err)
		}

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		e := entries[0]
		if want := f.root + "/go/api-2"; e.To != want {
			t.Errorf("To = %q, want %q", e.To, want)
		}
		if len(e.Warnings) == 0 || !strings.Contains(e.Warnings[0], "api-2") {
			t.Errorf("expected rename warning, got %v", e.Warnings)
		}
		if len(e.Conflicts) != 0 {
			t.Errorf("suffixed targets must not be conflicts, got %v", e.Conflicts)
		}
	})

	t.Run("batch entries avoid colliding with each other", func(t *testing.T) {
		f := newPlanFixture(t)
		// Two distinct sources that both want <root>/go/tool.
		a := f.seedRepo(t, "tool", strptr("go"), false)
		b := f.seedRepo(t, "tool", strptr("go"), false)

		entries, err := f.planner.Preview(ctx, []int64{a.ID, b.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		if entries[0].To == entries[1].To {
			t.Fatalf("batch targets collide: %q", entries[0].To)
		}
		if want := f.root + "/go/tool-2"; entries[1].To != want {
			t.Errorf("second target = %q, want %q", entries[1].To, want)
		}
	})

	t.Run("organized repository is not planned against itself", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "web-shop", strptr("nextjs"), false)

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}
		batch := f.executor.Execute(ctx, entries, ExecuteOptions{})
		if batch.SuccessCount != 1 {
			t.Fatalf("setup move failed: %+v", batch)
		}
		organized := entries[0].To

		// A re-request must report the organized state, not suffix the
		// target against the repository's own directory.
		entries, err = f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("second Preview: %v", err)
		}
		e := entries[0]
		if len(e.Conflicts) != 1 || !strings.Contains(e.Conflicts[0], "already organized") {
			t.Errorf("got conflicts %v, want already-organized report", e.Conflicts)
		}
		if e.To != "" {
			t.Errorf("To = %q, want empty for an organized repository", e.To)
		}

		// Executing the re-request batch must leave the tree untouched.
		batch = f.executor.Execute(ctx, entries, ExecuteOptions{})
		if len(batch.Results) != 0 {
			t.Errorf("re-request produced results %+v", batch.Results)
		}
		if _, err := os.Stat(organized); err != nil {
			t.Errorf("organized directory disturbed: %v", err)
		}
		if _, err := os.Stat(organized + "-2"); !os.IsNotExist(err) {
			t.Error("re-request created a suffixed copy")
		}

		got, err := f.repos.Get(ctx, r.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.PhysicalPath == nil || *got.PhysicalPath != organized {
			t.Errorf("physical path = %v, want %q", got.PhysicalPath, organized)
		}
	})

	t.Run("dirty source warns", func(t *testing.T) {
		f := newPlanFixture(t)
		r := f.seedRepo(t, "scratch", strptr("python"), true)

		entries, err := f.planner.Preview(ctx, []int64{r.ID})
		if err != nil {
			t.Fatalf("Preview: %v", err)
		}

		found := false
		for _, w := range entries[0].Warnings {
			if strings.Contains(w, "uncommitted") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected dirty warning, got %v", entries[0].Warnings)
		}
	})
}
