/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/util"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vault storage statistics",
	Long: `Show aggregate statistics for the vault: unique chunk count, logical
and stored sizes, and the compression and deduplication ratios.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cfg, _, err := openEngine()
		if err != nil {
			return err
		}

		stats, err := e.Stats()
		if err != nil {
			return err
		}
		manifests, err := e.ListSnapshots()
		if err != nil {
			return err
		}

		heading := color.New(color.Bold)
		heading.Printf("Vault %q\n", cfg.Name)
		fmt.Printf("  snapshots:       %d\n", len(manifests))
		fmt.Printf("  unique chunks:   %d\n", stats.UniqueChunks)
		fmt.Printf("  dedup'd chunks:  %d\n", stats.DeduplicatedChunks)
		fmt.Printf("  logical size:    %s\n", util.HumanReadableSize(stats.TotalSize))
		fmt.Printf("  stored size:     %s\n", util.HumanReadableSize(stats.CompressedSize))
		fmt.Printf("  compression:     %.2f\n", stats.CompressionRatio)
		fmt.Printf("  deduplication:   %.2f\n", stats.DeduplicationRatio)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
