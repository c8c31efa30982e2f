/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/engine"
	"github.com/substantialcattle5/stillsuit/internal/fs"
)

var (
	quietMode   bool
	verboseMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stillsuit",
	Short: "Stillsuit - deduplicating snapshot backups",
	Long: `Stillsuit is a content-addressed backup tool. It splits files into
chunks with content-defined boundaries, stores each unique chunk once,
and records snapshots as manifests so repeated backups only pay for
what changed.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived signal %v, shutting down...\n", sig)
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Show per-file detail")
}

// openEngine locates the enclosing vault, loads its configuration and
// wires up a backup engine.
func openEngine() (*engine.Engine, *config.VaultConfig, string, error) {
	vaultRoot, err := fs.FindVaultRoot()
	if err != nil {
		return nil, nil, "", fmt.Errorf("not inside a vault: %v", err)
	}

	cfg, err := config.LoadVaultConfig(vaultRoot)
	if err != nil {
		return nil, nil, "", err
	}

	e, err := engine.New(cfg, vaultRoot)
	if err != nil {
		return nil, nil, "", err
	}
	return e, cfg, vaultRoot, nil
}
