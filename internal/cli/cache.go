package cli

import (
	"github.com/HartBrook/shrink/internal/cache"
	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command group.
func NewCacheCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached minification results",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached results, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCacheList(cmd, g)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cache.New(g.paths).ClearAll()
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Removed %d cached result(s)", n)
			return nil
		},
	})

	return cmd
}

func runCacheList(cmd *cobra.Command, g *globalOptions) error {
	out := cmd.OutOrStdout()
	c := cache.New(g.paths)

	entries, err := c.ListCached()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo(out, "Cache", "empty ("+c.CacheDir()+")")
		return nil
	}

	ttl := g.cfg.Cache.TTLDuration()
	tp := tableprinter.New(out, false, 0)
	tp.AddHeader([]string{"KEY", "KIND", "SOURCE", "SIZE", "AGE", "STATE"})
	for _, m := range entries {
		state := success("fresh")
		if m.IsStale(ttl) {
			state = dim("stale")
		}
		tp.AddField(m.Key[:min(12, len(m.Key))])
		tp.AddField(m.Kind)
		tp.AddField(m.Source)
		tp.AddField(m.Size())
		tp.AddField(m.Age())
		tp.AddField(state)
		tp.EndRow()
	}
	return tp.Render()
}
