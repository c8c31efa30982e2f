/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var forceDelete bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <snapshot_id>",
	Short: "Delete a snapshot from the vault",
	Long: `Delete a snapshot and release its chunk references.

Chunks still referenced by other snapshots are kept; chunks whose last
reference this snapshot held are removed from the store.

Examples:
  stillsuit delete 20250601T120000-1a2b3c4d
  stillsuit delete --force 20250601T120000-1a2b3c4d`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		// Fail early on unknown ids, before prompting.
		if _, err := e.GetSnapshot(id); err != nil {
			return err
		}

		if !forceDelete {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete snapshot %s", id),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				fmt.Println("Operation cancelled")
				return nil
			}
		}

		if err := e.DeleteSnapshot(id); err != nil {
			return err
		}
		fmt.Printf("Deleted snapshot %s\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Delete without confirmation")
}
