/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/progress"
	"github.com/substantialcattle5/stillsuit/internal/snapshot"
	"github.com/substantialcattle5/stillsuit/util"
)

var backupTags []string

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup <source_path>",
	Short: "Create a snapshot of a directory",
	Long: `Create a snapshot of the given directory.

Files unchanged since the previous snapshot of the same directory are
re-referenced without being read again; added and modified files are
chunked and stored. Unreadable files are skipped with a warning and the
snapshot continues.

Examples:
  stillsuit backup ~/documents
  stillsuit backup --tag nightly --tag pre-upgrade ~/projects`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		pm := progress.NewManager(progress.Options{Quiet: quietMode, Verbose: verboseMode})
		ctx := pm.SetupCancellation(cmd.Context())
		defer pm.Cleanup()

		e.SetLogger(pm)
		pm.StartBytes(-1, fmt.Sprintf("Backing up %s", args[0]))

		manifest, err := e.CreateSnapshot(ctx, args[0], backupTags)
		pm.Finish()
		if err != nil {
			return err
		}

		sum := (&snapshot.ChangeSet{Changes: manifest.Changes}).Summary()
		pm.PrintInfo("Snapshot %s created\n", manifest.ID)
		pm.PrintInfo("  %d files, %s total\n", len(manifest.Files), util.HumanReadableSize(manifest.TotalSize()))
		pm.PrintInfo("  changes: %d added, %d modified, %d deleted\n", sum.Added, sum.Modified, sum.Deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringSliceVarP(&backupTags, "tag", "t", nil, "Tag to attach to the snapshot (repeatable)")
}
