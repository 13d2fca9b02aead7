package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the allocator layout for the configured region",
		Long: `The stats command maps the configured region, initialises the
allocator over it and prints the resulting layout: where Init rounded the
bounds to, how many pages fit, and how much room the byte side has.

Example:
  earlyctl stats
  earlyctl stats --region-size 1MiB --region-offset 123
  earlyctl stats --config boot.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
	return cmd
}

func runStats() error {
	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	st := s.early.Stats()
	if jsonOut {
		return printJSON(newStatsView(st))
	}

	printVerbose("Region: %s bytes at %s, allocator offset %s\n",
		formatCount(s.region.Len()), hexAddr(s.region.Base()), cfg.RegionOffset)
	printStats(st)
	if lost := s.region.Len() - st.TotalBytes; lost > 0 {
		printInfo("Rounding:   %s lost to page alignment\n", formatBytes(lost))
	}
	return nil
}
