package config

import (
	"fmt"
	"time"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// VaultConfig is the structure persisted as vault.yaml at the vault root.
type VaultConfig struct {
	VaultID     string            `yaml:"vault_id"`
	Name        string            `yaml:"name"`
	CreatedAt   time.Time         `yaml:"created_at"`
	Chunking    ChunkingConfig    `yaml:"chunking"`
	Compression CompressionConfig `yaml:"compression"`
	Scan        ScanConfig        `yaml:"scan"`
}

// ChunkingConfig controls boundary detection. Its values are a hard
// contract: changing any of them changes chunk boundaries and defeats
// dedup against chunks already in the store.
type ChunkingConfig struct {
	Strategy       string `yaml:"strategy"`
	HashAlgorithm  string `yaml:"hash_algorithm"`
	WindowSize     int    `yaml:"window_size"`
	MinChunkSize   int    `yaml:"min_chunk_size"`
	MaxChunkSize   int    `yaml:"max_chunk_size"`
	BoundaryMask   uint32 `yaml:"boundary_mask"`
	FixedBlockSize int    `yaml:"fixed_block_size"`
}

// CompressionConfig controls per-chunk payload compression.
type CompressionConfig struct {
	Algorithm string `yaml:"algorithm"`
	Fallback  string `yaml:"fallback"`
	Level     int    `yaml:"level"`
}

// ScanConfig controls the filesystem walker.
type ScanConfig struct {
	IgnorePatterns []string `yaml:"ignore_patterns"`
	IncludeHidden  bool     `yaml:"include_hidden"`
}

// BuildVaultConfig creates a vault configuration with defaults applied.
func BuildVaultConfig(vaultID, vaultName string) VaultConfig {
	return VaultConfig{
		VaultID:   vaultID,
		Name:      vaultName,
		CreatedAt: time.Now().UTC(),
		Chunking: ChunkingConfig{
			Strategy:       constants.ChunkingStrategyContent,
			HashAlgorithm:  constants.HashAlgorithmSHA256,
			WindowSize:     constants.DefaultWindowSize,
			MinChunkSize:   constants.DefaultMinChunkSize,
			MaxChunkSize:   constants.DefaultMaxChunkSize,
			BoundaryMask:   constants.DefaultBoundaryMask,
			FixedBlockSize: constants.DefaultFixedBlockSize,
		},
		Compression: CompressionConfig{
			Algorithm: constants.CompressionTypeZstd,
			Fallback:  constants.CompressionTypeGzip,
			Level:     3,
		},
		Scan: ScanConfig{
			IgnorePatterns: []string{},
			IncludeHidden:  false,
		},
	}
}

// Validate checks the configuration for values the engine cannot honor.
func (c *VaultConfig) Validate() error {
	switch c.Chunking.Strategy {
	case constants.ChunkingStrategyFixed,
		constants.ChunkingStrategyContent,
		constants.ChunkingStrategyFormatAware:
	default:
		return fmt.Errorf("unknown chunking strategy: %s", c.Chunking.Strategy)
	}

	if c.Chunking.MinChunkSize <= 0 {
		return fmt.Errorf("min_chunk_size must be positive, got %d", c.Chunking.MinChunkSize)
	}
	if c.Chunking.MaxChunkSize < c.Chunking.MinChunkSize {
		return fmt.Errorf("max_chunk_size (%d) must be >= min_chunk_size (%d)",
			c.Chunking.MaxChunkSize, c.Chunking.MinChunkSize)
	}
	if c.Chunking.WindowSize <= 0 {
		return fmt.Errorf("window_size must be positive, got %d", c.Chunking.WindowSize)
	}
	if c.Chunking.FixedBlockSize <= 0 {
		return fmt.Errorf("fixed_block_size must be positive, got %d", c.Chunking.FixedBlockSize)
	}

	switch c.Compression.Algorithm {
	case constants.CompressionTypeNone,
		constants.CompressionTypeGzip,
		constants.CompressionTypeZstd,
		constants.CompressionTypeLZ4:
	default:
		return fmt.Errorf("unknown compression algorithm: %s", c.Compression.Algorithm)
	}

	return nil
}
