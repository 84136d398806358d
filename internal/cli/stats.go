package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the stats command: aggregate counts across all
// collections.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := s.GetStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return printJSON(out, stats)
			}

			fmt.Fprintf(out, "Memorials:     %d (photo: %d, audio: %d)\n",
				stats.TotalMemorials, stats.WithPhoto, stats.WithAudio)
			levels := make([]int, 0, len(stats.MemorialsByLevel))
			for level := range stats.MemorialsByLevel {
				levels = append(levels, level)
			}
			sort.Ints(levels)
			for _, level := range levels {
				fmt.Fprintf(out, "  level %d:     %d\n", level, stats.MemorialsByLevel[level])
			}
			fmt.Fprintf(out, "Family groups: %d\n", stats.TotalFamilyGroups)
			fmt.Fprintf(out, "Offerings:     %d\n", stats.TotalOfferings)
			types := make([]string, 0, len(stats.OfferingsByType))
			for typ := range stats.OfferingsByType {
				types = append(types, typ)
			}
			sort.Strings(types)
			for _, typ := range types {
				fmt.Fprintf(out, "  %-14s %d\n", typ+":", stats.OfferingsByType[typ])
			}
			return nil
		},
	}
}
