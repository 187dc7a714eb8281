package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/membank/membank/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List persistent keys",
		Run:   runKeys,
	}

	RootCmd.AddCommand(cmd)
}

func runKeys(cmd *cobra.Command, args []string) {
	mgr, _, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	keys, err := mgr.Keys(cmd.Context(), memory.TierExternal)
	if err != nil {
		exitErr("keys", err)
	}

	b, _ := json.Marshal(keys)
	fmt.Println(string(b))
}
