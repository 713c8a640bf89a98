package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/docscache/cache"
)

// errNoEntry is returned by get when no fresh entry exists.
var errNoEntry = errors.New("no fresh cache entry")

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get TOOL ARGS_JSON",
		Short: "Print the cached result for one tool call",
		Long: `Look up the entry a tool call with the given arguments would hit and
print the stored result. Arguments are decoded into the tool's argument
record, so omitted defaults and API keys are treated exactly as in a
live call.`,
		Example: `  docscache get query_docs '{"libraryId":"/vercel/next.js","query":"middleware"}'
  docscache get resolve_library_id '{"libraryName":"react","query":"hooks"}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := args[0]
			callArgs, err := decodeArgs(tool, []byte(args[1]))
			if err != nil {
				return fmt.Errorf("decode %s arguments: %w", tool, err)
			}

			path, err := a.cache.Path(tool, callArgs)
			if err != nil {
				return err
			}

			result, ok := a.cache.Get(cmd.Context(), tool, callArgs)
			if !ok {
				return fmt.Errorf("%w: %s", errNoEntry, path)
			}

			data, err := cache.EncodeResult(result)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// decodeArgs decodes raw into the argument record for tool. Unknown tools
// decode into a generic map.
func decodeArgs(tool string, raw []byte) (any, error) {
	switch tool {
	case cache.ToolQueryDocs:
		var a cache.QueryDocsArgs
		err := json.Unmarshal(raw, &a)
		return a, err
	case cache.ToolResolveLibraryID:
		var a cache.ResolveLibraryIDArgs
		err := json.Unmarshal(raw, &a)
		return a, err
	default:
		var m map[string]any
		err := json.Unmarshal(raw, &m)
		return m, err
	}
}
