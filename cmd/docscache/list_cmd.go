package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/docscache/cache"
)

type entryDisplay struct {
	Tool    string    `json:"tool"`
	Hash    string    `json:"hash"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
	Age     string    `json:"age"`
	Fresh   bool      `json:"fresh"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		tool       string
		jsonOutput bool
		staleOnly  bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cache entries",
		Args:    cobra.NoArgs,
		Example: `  docscache list
  docscache list --tool query_docs
  docscache list --stale --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.cache.Entries(cmd.Context())
			if err != nil {
				return err
			}

			now := time.Now()
			rows := make([]entryDisplay, 0, len(entries))
			for _, e := range entries {
				if tool != "" && e.Tool != tool {
					continue
				}
				if staleOnly && e.Fresh {
					continue
				}
				rows = append(rows, entryDisplay{
					Tool:    e.Tool,
					Hash:    e.Hash,
					Size:    e.Size,
					ModTime: e.ModTime,
					Age:     now.Sub(e.ModTime).Truncate(time.Second).String(),
					Fresh:   e.Fresh,
				})
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				fmt.Fprintln(out, "No cache entries")
				return nil
			}
			fmt.Fprintf(out, "%-20s %-16s %8s %12s %s\n", "TOOL", "HASH", "SIZE", "AGE", "STATE")
			for _, r := range rows {
				state := "fresh"
				if !r.Fresh {
					state = "stale"
				}
				fmt.Fprintf(out, "%-20s %-16s %8d %12s %s\n", r.Tool, r.Hash, r.Size, r.Age, state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tool, "tool", "", "only entries for this tool ("+cache.ToolResolveLibraryID+", "+cache.ToolQueryDocs+")")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&staleOnly, "stale", false, "only entries past the TTL")
	return cmd
}
