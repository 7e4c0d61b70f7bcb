package probe

import (
	"os"

	"github.com/colonyops/roost/internal/core/pathutil"
)

// maxReadmeBytes caps the excerpt so a pathological readme cannot balloon
// scan memory.
const maxReadmeBytes = 4096

// readmeNames are tried in order; the first that exists wins.
var readmeNames = []string{
	"README.md",
	"README.MD",
	"readme.md",
	"Readme.md",
	"README.txt",
	"README",
	"readme",
}

// ReadmeExcerpt returns the first readme variant's content capped to
// maxReadmeBytes, or "" when no readme is readable.
func ReadmeExcerpt(dir string) string {
	for _, name := range readmeNames {
		data, err := os.ReadFile(pathutil.Join(dir, name))
		if err != nil {
			continue
		}
		if len(data) > maxReadmeBytes {
			data = data[:maxReadmeBytes]
		}
		return string(data)
	}
	return ""
}
