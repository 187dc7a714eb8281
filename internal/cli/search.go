package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search entries by substring",
		Long:  "Case-insensitive substring search over entry content and metadata values.",
		Args:  cobra.ExactArgs(1),
		Run:   runSearch,
	}

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	mgr, _, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	results, err := mgr.Search(cmd.Context(), args[0])
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
