package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membank/membank/memory"
	"github.com/membank/membank/memory/backend/sqlite"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show engine and database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	mgr, backend, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	ctx := cmd.Context()
	engineStats, err := mgr.Stats(ctx)
	if err != nil {
		exitErr("stats", err)
	}
	dbStats, err := backend.Stats(ctx)
	if err != nil {
		exitErr("stats", err)
	}

	out := struct {
		Engine   memory.Stats  `json:"engine"`
		Database *sqlite.Stats `json:"database"`
	}{engineStats, dbStats}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
