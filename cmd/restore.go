/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/progress"
)

var restorePaths []string

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot_id> <target_path>",
	Short: "Restore a snapshot into a directory",
	Long: `Restore the files of a snapshot under the target directory.

Each file is reassembled from its chunks and written with its recorded
modification time. A file whose chunks are missing or corrupted is
reported and skipped; the rest of the restore continues.

Examples:
  stillsuit restore 20250601T120000-1a2b3c4d /tmp/recovered
  stillsuit restore --path docs --path notes.txt 20250601T120000-1a2b3c4d .`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		pm := progress.NewManager(progress.Options{Quiet: quietMode, Verbose: verboseMode})
		ctx := pm.SetupCancellation(cmd.Context())
		defer pm.Cleanup()

		e.SetLogger(pm)
		pm.StartBytes(-1, fmt.Sprintf("Restoring %s", args[0]))

		err = e.RestoreSnapshot(ctx, args[0], args[1], restorePaths)
		pm.Finish()
		if err != nil {
			return err
		}

		pm.PrintInfo("Restored snapshot %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringSliceVarP(&restorePaths, "path", "p", nil,
		"Restore only this file or directory (repeatable)")
}
