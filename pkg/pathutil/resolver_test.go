package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	p := New(Config{DataDir: "/srv/market"})
	assert.Equal(t, "/srv/market", p.GetDataDir())
	assert.Equal(t, filepath.Join("/srv/market", ".journal", "journal.db"), p.GetJournalPath())
	assert.Equal(t, filepath.Join("/srv/market", ".lock"), p.GetLockPath())

	p = New(Config{DataDir: "/srv/market", JournalPath: "/var/lib/journal.db"})
	assert.Equal(t, "/var/lib/journal.db", p.GetJournalPath())
}

func TestGetRecordPath(t *testing.T) {
	p := New(Config{DataDir: "data"})

	tests := []struct {
		name      string
		file      string
		expected  string
		expectErr bool
	}{
		{"accounts", AccountsFile, filepath.Join("data", "accounts.txt"), false},
		{"line items", TransactionItemsFile, filepath.Join("data", "transaction_items.txt"), false},
		{"unknown", "passwords.txt", "", true},
		{"traversal", "../accounts.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.GetRecordPath(tt.file)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	p := New(Config{DataDir: dir})

	assert.NoDirExists(t, dir)
	require.NoError(t, p.EnsureDataDir())
	assert.DirExists(t, dir)

	file := filepath.Join(dir, "x", "y.txt")
	require.NoError(t, p.EnsureParentDir(file))
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.FileExists(t, file)
}
