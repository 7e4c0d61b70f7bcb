package probe

import (
	"encoding/json"
	"os"

	"github.com/colonyops/roost/internal/core/pathutil"
)

// Manifest is the subset of package.json the classifier cares about.
type Manifest struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// HasDependency reports whether name appears as a direct or dev
// dependency.
func (m *Manifest) HasDependency(name string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	_, ok := m.DevDependencies[name]
	return ok
}

// ReadManifest parses dir/package.json. Best effort: absence or a parse
// failure yields nil, never an error.
func ReadManifest(dir string) *Manifest {
	data, err := os.ReadFile(pathutil.Join(dir, "package.json"))
	if err != nil {
		return nil
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return &m
}
