package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepoWithCommits creates a repository with n commits touching name.
func initRepoWithCommits(t *testing.T, name string, n int) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		content := []byte(time.Now().String() + string(rune('a'+i)) + "\n")
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0o644))
		_, err = wt.Add(name)
		require.NoError(t, err)
		_, err = wt.Commit("change", &git.CommitOptions{
			Author: &object.Signature{
				Name:  "dev",
				Email: "dev@example.com",
				When:  time.Now(),
			},
		})
		require.NoError(t, err)
	}
	return dir
}

func TestChurnFileCommits(t *testing.T) {
	dir := initRepoWithCommits(t, "main.go", 3)
	churn := NewChurn(dir)

	commits, err := churn.FileCommits(context.Background(), filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, 3, commits)

	commits, err = churn.FileCommits(context.Background(), filepath.Join(dir, "other.go"))
	require.NoError(t, err)
	assert.Equal(t, 0, commits)
}

func TestChurnFiles(t *testing.T) {
	dir := initRepoWithCommits(t, "main.go", 2)
	churn := NewChurn(dir, WithDays(7))

	files, err := churn.Files(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].RelativePath)
	assert.Equal(t, 2, files[0].Commits)
	assert.Greater(t, files[0].LinesAdded, 0)
}

func TestChurnMissingRepo(t *testing.T) {
	churn := NewChurn(filepath.Join(t.TempDir(), "nope"))
	_, err := churn.FileCommits(context.Background(), "x.go")
	assert.Error(t, err)
}
