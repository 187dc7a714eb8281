package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete an entry",
		Run:   runRm,
	}

	cmd.Flags().StringP("key", "k", "", "Key (required)")
	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")

	mgr, _, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	deleted, err := mgr.Delete(cmd.Context(), key)
	if err != nil {
		exitErr("rm", err)
	}

	b, _ := json.Marshal(map[string]any{"key": key, "deleted": deleted})
	fmt.Println(string(b))
}
