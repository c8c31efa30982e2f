/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/snapshot"
)

// diffCmd represents the diff command
var diffCmd = &cobra.Command{
	Use:   "diff <from_snapshot> <to_snapshot>",
	Short: "Compare two snapshots",
	Long: `Compare two snapshots file by file and report added, modified and
deleted paths. Files are compared by whole-file digest, so metadata-only
differences do not count as changes.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		cs, err := e.CompareSnapshots(args[0], args[1])
		if err != nil {
			return err
		}

		addedColor := color.New(color.FgGreen)
		modifiedColor := color.New(color.FgYellow)
		deletedColor := color.New(color.FgRed)
		for _, c := range cs.Changes {
			switch c.Kind {
			case snapshot.ChangeAdded:
				addedColor.Printf("+ %s\n", c.Path)
			case snapshot.ChangeModified:
				modifiedColor.Printf("~ %s\n", c.Path)
			case snapshot.ChangeDeleted:
				deletedColor.Printf("- %s\n", c.Path)
			}
		}

		sum := cs.Summary()
		fmt.Printf("%d added, %d modified, %d deleted\n", sum.Added, sum.Modified, sum.Deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
