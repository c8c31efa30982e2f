/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// gcCmd represents the gc command
var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove unreferenced chunks",
	Long: `Remove chunks whose reference count has dropped to zero.

Snapshot deletion already removes chunks as their last reference goes
away, so gc normally finds nothing; it exists to clean up after
interrupted operations.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		removed, err := e.CollectGarbage()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d unreferenced chunks\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gcCmd)
}
