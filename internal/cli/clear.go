package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all persistent entries",
		Run:   runClear,
	}

	cmd.Flags().Bool("yes", false, "Confirm deletion")

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("clear", fmt.Errorf("refusing to clear without --yes"))
	}

	mgr, _, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	n, err := mgr.ClearExternal(cmd.Context())
	if err != nil {
		exitErr("clear", err)
	}

	b, _ := json.Marshal(map[string]any{"cleared": n})
	fmt.Println(string(b))
}
