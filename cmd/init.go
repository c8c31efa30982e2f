/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/constants"
	"github.com/substantialcattle5/stillsuit/internal/fs"
	"github.com/substantialcattle5/stillsuit/util"
)

var (
	vaultName        string
	vaultPath        string
	chunkingStrategy string
	hashAlgorithm    string
	minChunkSize     string
	maxChunkSize     string
	compressionType  string
	forceInit        bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new backup vault",
	Long: `Initialize a new Stillsuit vault in the target directory.

Creates the vault layout under .stillsuit/ and writes vault.yaml with
the chunking and compression settings. Chunking settings are fixed for
the life of the vault: changing them later would move chunk boundaries
and defeat deduplication against already-stored chunks.

Examples:
  stillsuit init --name documents
  stillsuit init --chunking-strategy fixed --compression gzip
  stillsuit init --min-chunk-size 4KB --max-chunk-size 2MB`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fs.IsVaultInitialized(vaultPath) && !forceInit {
			return fmt.Errorf("vault already initialized at %s (use --force to overwrite the configuration)", vaultPath)
		}

		minSize, err := util.ParseChunkSize(minChunkSize)
		if err != nil {
			return fmt.Errorf("invalid --min-chunk-size: %v", err)
		}
		maxSize, err := util.ParseChunkSize(maxChunkSize)
		if err != nil {
			return fmt.Errorf("invalid --max-chunk-size: %v", err)
		}

		cfg := config.BuildVaultConfig(uuid.NewString(), vaultName)
		cfg.Chunking.Strategy = chunkingStrategy
		cfg.Chunking.HashAlgorithm = hashAlgorithm
		cfg.Chunking.MinChunkSize = int(minSize)
		cfg.Chunking.MaxChunkSize = int(maxSize)
		cfg.Compression.Algorithm = compressionType
		if err := cfg.Validate(); err != nil {
			return err
		}

		vaultRoot, err := fs.CreateVaultStructure(vaultPath)
		if err != nil {
			return err
		}
		if err := config.SaveVaultConfig(vaultRoot, &cfg); err != nil {
			return err
		}

		fmt.Printf("Initialized vault %q (%s)\n", cfg.Name, cfg.VaultID)
		fmt.Printf("  chunking:    %s (%s, %s..%s)\n",
			cfg.Chunking.Strategy, cfg.Chunking.HashAlgorithm,
			util.HumanReadableSize(int64(cfg.Chunking.MinChunkSize)),
			util.HumanReadableSize(int64(cfg.Chunking.MaxChunkSize)))
		fmt.Printf("  compression: %s (fallback %s)\n",
			cfg.Compression.Algorithm, cfg.Compression.Fallback)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&vaultName, "name", "n", "vault", "Vault name")
	initCmd.Flags().StringVarP(&vaultPath, "path", "p", ".", "Directory to initialize the vault in")
	initCmd.Flags().StringVar(&chunkingStrategy, "chunking-strategy", constants.ChunkingStrategyContent,
		"Chunking strategy: fixed, content_defined, format_aware")
	initCmd.Flags().StringVar(&hashAlgorithm, "hash", constants.HashAlgorithmSHA256,
		"Digest algorithm: sha256, sha1, md5, blake3, xxhash64")
	initCmd.Flags().StringVar(&minChunkSize, "min-chunk-size", "1KB", "Minimum chunk size")
	initCmd.Flags().StringVar(&maxChunkSize, "max-chunk-size", "1MB", "Maximum chunk size")
	initCmd.Flags().StringVar(&compressionType, "compression", constants.CompressionTypeZstd,
		"Chunk compression: none, gzip, zstd, lz4")
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Reinitialize an existing vault configuration")
}
