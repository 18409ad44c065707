// Package pathutil provides centralized path management for the marketplace
// data directory and the ledger journal.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// Record file names inside the data directory.
const (
	AccountsFile         = "accounts.txt"
	BuyersFile           = "buyers.txt"
	SellersFile          = "sellers.txt"
	ItemsFile            = "items.txt"
	TransactionsFile     = "transactions.txt"
	TransactionItemsFile = "transaction_items.txt"

	lockFile = ".lock"
)

// RecordFiles lists every record file in load order.
var RecordFiles = []string{
	AccountsFile,
	BuyersFile,
	SellersFile,
	ItemsFile,
	TransactionsFile,
	TransactionItemsFile,
}

// PathResolver manages paths for record files, the lock file and the journal.
type PathResolver struct {
	dataDir     string
	journalPath string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir is the directory holding the record files (e.g., ./database)
	DataDir string
	// JournalPath is the SQLite ledger journal path
	JournalPath string
}

// New creates a new PathResolver with the given configuration.
// If JournalPath is empty, it defaults to {DataDir}/.journal/journal.db
func New(config Config) *PathResolver {
	journalPath := config.JournalPath
	if journalPath == "" {
		journalPath = filepath.Join(config.DataDir, ".journal", "journal.db")
	}

	return &PathResolver{
		dataDir:     config.DataDir,
		journalPath: journalPath,
	}
}

// GetDataDir returns the data directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetJournalPath returns the journal database path.
func (p *PathResolver) GetJournalPath() string {
	return p.journalPath
}

// GetLockPath returns the path of the lock file guarding the data directory.
func (p *PathResolver) GetLockPath() string {
	return filepath.Join(p.dataDir, lockFile)
}

// GetRecordPath returns the path of a record file.
// name must be one of RecordFiles.
func (p *PathResolver) GetRecordPath(name string) (string, error) {
	for _, known := range RecordFiles {
		if known == name {
			return filepath.Join(p.dataDir, name), nil
		}
	}
	return "", fmt.Errorf("unknown record file: %s", name)
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureDataDir creates the data directory.
func (p *PathResolver) EnsureDataDir() error {
	return p.EnsureDir(p.dataDir)
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}
