// Package cli implements the membank CLI commands. The CLI drives a
// memory engine whose external tier is backed by SQLite, so puts and
// gets persist across invocations.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/membank/membank/memory"
	"github.com/membank/membank/memory/backend/sqlite"
)

var (
	dbPath  string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "membank",
	Short: "Tiered memory for AI agents",
	Long:  "Tiered key-value memory for AI agents: TTL expiry, priority eviction, substring search. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MEMBANK_DB or ~/.membank/membank.db)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("MEMBANK_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".membank", "membank.db")
}

// openEngine builds a string-valued engine over the SQLite backend. The
// returned cleanup closes both.
func openEngine() (*memory.Manager[string], *sqlite.Store[string], func(), error) {
	backend, err := sqlite.New[string](getDBPath())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open backend: %w", err)
	}

	var logger *zap.Logger
	if verbose {
		logger, _ = zap.NewDevelopment()
	}

	mgr, err := memory.NewManager[string](backend, logger, nil)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}

	cleanup := func() {
		mgr.Close()
		backend.Close()
	}
	return mgr, backend, cleanup, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
