package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membank/membank/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Retrieve an entry",
		Run:   runGet,
	}

	cmd.Flags().StringP("key", "k", "", "Key (required)")
	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")

	mgr, _, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	e, err := mgr.RetrieveEntry(cmd.Context(), key)
	if errors.Is(err, memory.ErrNotFound) {
		exitErr("get", fmt.Errorf("entry not found: %s", key))
	}
	if err != nil {
		exitErr("get", err)
	}

	b, _ := json.MarshalIndent(e, "", "  ")
	fmt.Println(string(b))
}
