// Package vcs reads commit activity from git repositories, feeding the
// churn half of hotspot scoring.
package vcs

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/seerlab/seer/pkg/models"
)

// DefaultChurnDays is the history window when none is configured.
const DefaultChurnDays = 30

// Churn aggregates per-file commit counts over a time window. The repo log
// is walked once, lazily, and cached for the lifetime of the instance.
type Churn struct {
	repoPath string
	days     int

	mu     sync.Mutex
	loaded bool
	files  map[string]*models.FileChurnMetrics
}

// ChurnOption configures a Churn reader.
type ChurnOption func(*Churn)

// WithDays sets the history window in days.
func WithDays(days int) ChurnOption {
	return func(c *Churn) {
		if days > 0 {
			c.days = days
		}
	}
}

// NewChurn creates a churn reader rooted at repoPath.
func NewChurn(repoPath string, opts ...ChurnOption) *Churn {
	c := &Churn{repoPath: repoPath, days: DefaultChurnDays}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FileCommits returns the number of commits touching path inside the
// window. Paths are matched relative to the repository root.
func (c *Churn) FileCommits(ctx context.Context, path string) (int, error) {
	files, err := c.snapshot(ctx)
	if err != nil {
		return 0, err
	}

	rel := path
	if abs, err := filepath.Abs(path); err == nil {
		if r, err := filepath.Rel(c.repoPath, abs); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	if m, ok := files[rel]; ok {
		return m.Commits, nil
	}
	if m, ok := files[filepath.ToSlash(path)]; ok {
		return m.Commits, nil
	}
	return 0, nil
}

// Files returns churn metrics for every file changed inside the window.
func (c *Churn) Files(ctx context.Context) ([]models.FileChurnMetrics, error) {
	files, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.FileChurnMetrics, 0, len(files))
	for _, m := range files {
		out = append(out, *m)
	}
	return out, nil
}

// snapshot walks the commit log once and caches per-file totals.
func (c *Churn) snapshot(ctx context.Context) (map[string]*models.FileChurnMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.files, nil
	}

	repo, err := git.PlainOpenWithOptions(c.repoPath, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(c.repoPath)
	if err != nil {
		abs = c.repoPath
	}

	cutoff := time.Now().AddDate(0, 0, -c.days)
	iter, err := repo.Log(&git.LogOptions{Since: &cutoff})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	files := make(map[string]*models.FileChurnMetrics)
	err = iter.ForEach(func(commit *object.Commit) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stats, err := commit.Stats()
		if err != nil {
			// Merge commits and odd objects are skipped, not fatal.
			return nil
		}
		for _, s := range stats {
			m, ok := files[s.Name]
			if !ok {
				m = &models.FileChurnMetrics{
					Path:         filepath.Join(abs, s.Name),
					RelativePath: s.Name,
				}
				files[s.Name] = m
			}
			m.Commits++
			m.LinesAdded += s.Addition
			m.LinesDeleted += s.Deletion
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.files = files
	c.loaded = true
	return files, nil
}
