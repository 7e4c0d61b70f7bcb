package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/roost/internal/core/probe"
)

func strptr(s string) *string { return &s }

func TestSuggest(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		assert.Equal(t, ThemeUnclassified, Suggest(probe.Signals{}))
	})

	t.Run("archived remote url wins over framework", func(t *testing.T) {
		sig := probe.Signals{
			RemoteURL: strptr("https://github.com/acme/archived-stuff"),
			Manifest:  &probe.Manifest{Dependencies: map[string]string{"next": "14"}},
		}
		assert.Equal(t, ThemeArchived, Suggest(sig))
	})

	t.Run("two archival keywords in text", func(t *testing.T) {
		sig := probe.Signals{Readme: "This project is deprecated and no longer maintained."}
		assert.Equal(t, ThemeArchived, Suggest(sig))
	})

	t.Run("one archival keyword is not enough", func(t *testing.T) {
		sig := probe.Signals{Readme: "Some functions are deprecated."}
		assert.Equal(t, ThemeUnclassified, Suggest(sig))
	})

	t.Run("next dependency", func(t *testing.T) {
		sig := probe.Signals{Manifest: &probe.Manifest{Dependencies: map[string]string{"next": "14"}}}
		assert.Equal(t, ThemeNextJS, Suggest(sig))
	})

	t.Run("next as dev dependency", func(t *testing.T) {
		sig := probe.Signals{Manifest: &probe.Manifest{DevDependencies: map[string]string{"next": "14"}}}
		assert.Equal(t, ThemeNextJS, Suggest(sig))
	})

	t.Run("react without next groups into same theme", func(t *testing.T) {
		sig := probe.Signals{Manifest: &probe.Manifest{Dependencies: map[string]string{"react": "18"}}}
		assert.Equal(t, ThemeNextJS, Suggest(sig))
	})

	t.Run("file markers", func(t *testing.T) {
		assert.Equal(t, "go", Suggest(probe.Signals{Files: []string{"go.mod", "main.go"}}))
		assert.Equal(t, "python", Suggest(probe.Signals{Files: []string{"requirements.txt"}}))
		assert.Equal(t, "rust", Suggest(probe.Signals{Files: []string{"Cargo.toml", "src"}}))
	})

	t.Run("extension markers", func(t *testing.T) {
		assert.Equal(t, "python", Suggest(probe.Signals{Files: []string{"script.py", "notes.txt"}}))
	})

	t.Run("file markers beat secondary framework", func(t *testing.T) {
		sig := probe.Signals{
			Files:    []string{"go.mod"},
			Manifest: &probe.Manifest{Dependencies: map[string]string{"vue": "3"}},
		}
		assert.Equal(t, "go", Suggest(sig))
	})

	t.Run("secondary framework buckets into experimental", func(t *testing.T) {
		sig := probe.Signals{Manifest: &probe.Manifest{Dependencies: map[string]string{"vue": "3"}}}
		assert.Equal(t, ThemeExperimental, Suggest(sig))
	})

	t.Run("keyword scoring needs two hits", func(t *testing.T) {
		assert.Equal(t, ThemeUnclassified, Suggest(probe.Signals{Readme: "a rust mention"}))
		assert.Equal(t, "rust", Suggest(probe.Signals{Readme: "a rust project built with cargo"}))
	})

	t.Run("keyword tie goes to first declared theme", func(t *testing.T) {
		// Two hits each for nextjs (react, frontend) and python (python,
		// django); nextjs is declared first.
		sig := probe.Signals{Readme: "react frontend alongside a python django api"}
		assert.Equal(t, ThemeNextJS, Suggest(sig))
	})
}
