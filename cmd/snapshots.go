/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/util"
)

// snapshotsCmd represents the snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List snapshots in the vault",
	Long: `List every snapshot in the vault in chronological order, with its
source directory, file count, total size and tags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		manifests, err := e.ListSnapshots()
		if err != nil {
			return err
		}
		if len(manifests) == 0 {
			fmt.Println("No snapshots yet")
			return nil
		}

		idColor := color.New(color.FgCyan)
		tagColor := color.New(color.FgYellow)
		for _, m := range manifests {
			idColor.Print(m.ID)
			fmt.Printf("  %s  %4d files  %8s  %s",
				m.Timestamp.Format("2006-01-02 15:04:05"),
				len(m.Files),
				util.HumanReadableSize(m.TotalSize()),
				m.SourceRoot)
			if len(m.Tags) > 0 {
				fmt.Print("  ")
				tagColor.Print(strings.Join(m.Tags, ","))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
}
