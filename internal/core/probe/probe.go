// Package probe extracts version-control and content signals from a
// repository directory. Every probe fails soft: a single unreadable
// repository must never abort a multi-repository scan, so failures resolve
// to nil fields and a conservative dirty=true rather than errors.
package probe

import (
	"context"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/roost/internal/core/git"
	"github.com/colonyops/roost/internal/core/pathutil"
)

// contentCacheSize bounds the per-process content-signal cache.
const contentCacheSize = 512

// Signals is everything the classifier and scan pipeline needs to know
// about a single repository directory.
type Signals struct {
	Name string
	Path string

	RemoteURL     *string
	LastCommitSHA *string

	// IsDirty is true when the working tree has uncommitted changes, and
	// also when the dirty check itself failed. Unknown is never clean.
	IsDirty bool

	Files    []string
	Manifest *Manifest
	Readme   string
}

// Description returns the manifest description, or "" when there is none.
func (s Signals) Description() string {
	if s.Manifest == nil {
		return ""
	}
	return s.Manifest.Description
}

// contentSignals are the filesystem-derived signals cached between scans.
// They only change when the working tree does, so a clean repository whose
// HEAD has not moved can skip the re-read.
type contentSignals struct {
	sha      string
	files    []string
	manifest *Manifest
	readme   string
}

// Prober gathers repository signals through the git CLI and the filesystem.
type Prober struct {
	git   git.Git
	log   zerolog.Logger
	cache *lru.Cache[string, contentSignals]
}

// New creates a Prober backed by the given git client.
func New(g git.Git, log zerolog.Logger) *Prober {
	// NewLRU only fails on a non-positive size.
	cache, _ := lru.New[string, contentSignals](contentCacheSize)
	return &Prober{git: g, log: log, cache: cache}
}

// IsRepoRoot reports whether dir contains a version-control marker
// directory.
func IsRepoRoot(dir string) bool {
	info, err := os.Stat(pathutil.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// Probe gathers all signals for dir. The three git probes run
// concurrently and are joined before the content signals are read.
func (p *Prober) Probe(ctx context.Context, dir string) Signals {
	sig := Signals{
		Name:    pathutil.LastSegment(dir),
		Path:    pathutil.Normalize(dir),
		IsDirty: true,
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		url, err := p.git.RemoteURL(ctx, dir)
		if err != nil {
			p.log.Debug().Err(err).Str("path", dir).Msg("remote probe failed")
			return
		}
		sig.RemoteURL = &url
	}()

	go func() {
		defer wg.Done()
		sha, err := p.git.HeadSHA(ctx, dir)
		if err != nil {
			p.log.Debug().Err(err).Str("path", dir).Msg("head probe failed")
			return
		}
		sig.LastCommitSHA = &sha
	}()

	go func() {
		defer wg.Done()
		dirty, err := p.git.IsDirty(ctx, dir)
		if err != nil {
			p.log.Debug().Err(err).Str("path", dir).Msg("dirty probe failed, assuming dirty")
			return
		}
		sig.IsDirty = dirty
	}()

	wg.Wait()

	// Content signals are reused from the cache when the repository is
	// clean and HEAD has not moved since the last probe. Volatile git
	// fields above are always fresh.
	if sig.LastCommitSHA != nil && !sig.IsDirty {
		if cached, ok := p.cache.Get(sig.Path); ok && cached.sha == *sig.LastCommitSHA {
			sig.Files = cached.files
			sig.Manifest = cached.manifest
			sig.Readme = cached.readme
			return sig
		}
	}

	sig.Files = ListTopLevel(dir)
	sig.Manifest = ReadManifest(dir)
	sig.Readme = ReadmeExcerpt(dir)

	if sig.LastCommitSHA != nil && !sig.IsDirty {
		p.cache.Add(sig.Path, contentSignals{
			sha:      *sig.LastCommitSHA,
			files:    sig.Files,
			manifest: sig.Manifest,
			readme:   sig.Readme,
		})
	}

	return sig
}

// ListTopLevel returns the names of the entries directly under dir.
// Unreadable directories yield nil.
func ListTopLevel(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
