package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/marketplace/pkg/store"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty data directory",
	Long: `Create the data directory with empty record files and the journal.

An existing data directory is left untouched.

Example:
  marketctl init --data-dir ./database`,
	Run: runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := cfg.Paths()

	_, report, err := store.NewFileSystem(pathResolver).Load()
	exitOnError(err, "failed to read data directory")
	if report.Found {
		fmt.Printf("Data directory %s already initialized\n", pathResolver.GetDataDir())
		return
	}

	svc, journal, closeJournal := openService(cfg)
	defer closeJournal()

	exitOnError(svc.Save(), "failed to write record files")
	exitOnError(journal.SetMetadata("initialized_at", time.Now().UTC().Format(time.RFC3339)), "failed to update journal")

	slog.Info("Initialized data directory", "path", pathResolver.GetDataDir())
	fmt.Printf("Initialized %s\n", pathResolver.GetDataDir())
}
