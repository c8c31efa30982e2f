package config

import (
	"testing"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

func TestBuildVaultConfigDefaults(t *testing.T) {
	cfg := BuildVaultConfig("vault-1", "test")

	if cfg.Chunking.Strategy != constants.ChunkingStrategyContent {
		t.Errorf("default strategy = %s, want content_defined", cfg.Chunking.Strategy)
	}
	if cfg.Chunking.HashAlgorithm != constants.HashAlgorithmSHA256 {
		t.Errorf("default hash = %s, want sha256", cfg.Chunking.HashAlgorithm)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*VaultConfig)
	}{
		{name: "unknown strategy", mutate: func(c *VaultConfig) { c.Chunking.Strategy = "magic" }},
		{name: "zero min chunk", mutate: func(c *VaultConfig) { c.Chunking.MinChunkSize = 0 }},
		{name: "max below min", mutate: func(c *VaultConfig) { c.Chunking.MaxChunkSize = c.Chunking.MinChunkSize - 1 }},
		{name: "zero window", mutate: func(c *VaultConfig) { c.Chunking.WindowSize = 0 }},
		{name: "zero block size", mutate: func(c *VaultConfig) { c.Chunking.FixedBlockSize = 0 }},
		{name: "unknown compression", mutate: func(c *VaultConfig) { c.Compression.Algorithm = "brotli" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := BuildVaultConfig("v", "test")
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := BuildVaultConfig("vault-abc", "roundtrip")
	cfg.Scan.IgnorePatterns = []string{"*.tmp", "*.log"}

	if err := SaveVaultConfig(dir, &cfg); err != nil {
		t.Fatalf("SaveVaultConfig failed: %v", err)
	}

	loaded, err := LoadVaultConfig(dir)
	if err != nil {
		t.Fatalf("LoadVaultConfig failed: %v", err)
	}

	if loaded.VaultID != cfg.VaultID {
		t.Errorf("VaultID = %s, want %s", loaded.VaultID, cfg.VaultID)
	}
	if loaded.Chunking != cfg.Chunking {
		t.Errorf("Chunking = %+v, want %+v", loaded.Chunking, cfg.Chunking)
	}
	if len(loaded.Scan.IgnorePatterns) != 2 {
		t.Errorf("IgnorePatterns = %v, want 2 entries", loaded.Scan.IgnorePatterns)
	}
}

func TestLoadMissingConfig(t *testing.T) {
	if _, err := LoadVaultConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing vault.yaml")
	}
}
