/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/progress"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <snapshot_id>",
	Short: "Verify the integrity of a snapshot",
	Long: `Verify that every chunk a snapshot references is present in the store.

Payload bytes are checked against their digests whenever they are read,
so a passing verify plus a successful restore guarantees integrity.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, _, err := openEngine()
		if err != nil {
			return err
		}

		pm := progress.NewManager(progress.Options{Quiet: quietMode, Verbose: verboseMode})
		defer pm.Cleanup()
		e.SetLogger(pm)

		ok, err := e.VerifySnapshotIntegrity(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("snapshot %s failed verification", args[0])
		}
		fmt.Printf("Snapshot %s verified\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
