package flatfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/marketplace/pkg/pathutil"
)

func newRepo(t *testing.T) (*FileSystemRepository, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "database")
	return NewFileSystemRepository(pathutil.New(pathutil.Config{DataDir: dir})), dir
}

func TestReadMissingFile(t *testing.T) {
	repo, dir := newRepo(t)

	content, exists, err := repo.ReadRecordFile(pathutil.BuyersFile)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, content)
	assert.False(t, repo.Exists())
	assert.NoDirExists(t, dir, "reading does not create the data directory")
}

func TestReplaceRecordFile(t *testing.T) {
	repo, dir := newRepo(t)

	require.NoError(t, repo.ReplaceRecordFile(pathutil.AccountsFile, "1|Alice|50\n"))
	require.NoError(t, repo.ReplaceRecordFile(pathutil.AccountsFile, "2|Bob|0\n"))

	content, exists, err := repo.ReadRecordFile(pathutil.AccountsFile)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "2|Bob|0\n", content)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, pathutil.AccountsFile, entries[0].Name())
}

func TestUnknownRecordFile(t *testing.T) {
	repo, _ := newRepo(t)

	assert.Error(t, repo.ReplaceRecordFile("notes.txt", "x"))
	_, _, err := repo.ReadRecordFile("notes.txt")
	assert.Error(t, err)
}

func TestLock(t *testing.T) {
	repo, dir := newRepo(t)

	assert.False(t, repo.Exists())
	unlock, err := repo.Lock()
	require.NoError(t, err)
	assert.True(t, repo.Exists())
	assert.FileExists(t, filepath.Join(dir, ".lock"))

	_, err = repo.Lock()
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = repo.Lock()
	require.NoError(t, err)
	require.NoError(t, unlock())
}
