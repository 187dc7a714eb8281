package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/membank/membank/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Store an entry",
		Long:  "Store an entry in the persistent external tier. Content can be a positional arg or piped via stdin.",
		Run:   runPut,
	}

	cmd.Flags().StringP("key", "k", "", "Key (required)")
	cmd.Flags().String("ttl", "", "Time to live, e.g. 7d, 24h, 30m, 60s")
	cmd.Flags().IntP("priority", "p", -1, "Priority 0-10 (default: engine default)")
	cmd.Flags().String("meta", "", "JSON metadata object")

	cmd.MarkFlagRequired("key")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	key, _ := cmd.Flags().GetString("key")
	ttlStr, _ := cmd.Flags().GetString("ttl")
	priority, _ := cmd.Flags().GetInt("priority")
	metaStr, _ := cmd.Flags().GetString("meta")

	// Content: positional arg first, then stdin.
	var content string
	if len(args) > 0 {
		content = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			content = string(b)
		}
	}
	if strings.TrimSpace(content) == "" {
		exitErr("put", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	opts := []memory.StoreOption{memory.WithTier(memory.TierExternal)}
	if ttlStr != "" {
		d, err := parseTTL(ttlStr)
		if err != nil {
			exitErr("parse ttl", err)
		}
		opts = append(opts, memory.WithTTL(d))
	}
	if priority >= 0 {
		opts = append(opts, memory.WithPriority(priority))
	}
	if metaStr != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(metaStr), &meta); err != nil {
			exitErr("parse meta", err)
		}
		opts = append(opts, memory.WithMetadata(meta))
	}

	mgr, backend, cleanup, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}
	defer cleanup()

	ctx := cmd.Context()
	if err := mgr.Store(ctx, key, strings.TrimSpace(content), opts...); err != nil {
		exitErr("put", err)
	}

	// Read back without touching access bookkeeping.
	e, err := backend.Get(ctx, key)
	if err != nil {
		exitErr("read back", err)
	}
	b, _ := json.Marshal(e)
	fmt.Println(string(b))
}

// parseTTL parses a TTL string like "7d", "24h", "30m", "60s".
var ttlRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

func parseTTL(s string) (time.Duration, error) {
	m := ttlRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 7d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
