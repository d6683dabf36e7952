package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHashFromPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "", computeHashFromPath(dir))

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	// no commits yet, HEAD is unborn
	assert.Equal(t, "", computeHashFromPath(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.ic"), []byte("99\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("prog.ic")
	require.NoError(t, err)
	commit, err := wt.Commit("add program", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Unix(0, 0)},
	})
	require.NoError(t, err)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.Equal(t, commit.String(), computeHashFromPath(sub))
	assert.Equal(t, commit.String()[:8], shortHash(commit.String()))
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", shortHash("abc"))
	assert.Equal(t, "01234567", shortHash("0123456789abcdef"))
}

func TestColorize(t *testing.T) {
	assert.Equal(t, "HALT", Colorize(false, ColorCyan, "HALT"))
	assert.Equal(t, "\033[36mHALT\033[0m", Colorize(true, ColorCyan, "HALT"))
	assert.Equal(t, "", Colorize(true, ColorRed, ""))
}
