// Package testutil provides common testing utilities for Stillsuit
package testutil

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/substantialcattle5/stillsuit/internal/config"
	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T, prefix string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("Failed to clean up temp dir %s: %v", dir, err)
		}
	})

	return dir
}

// CreateTestFile creates a test file with specified content
func CreateTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(dir, filepath.FromSlash(filename))

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}

	return filePath
}

// CreateTestFileWithSize creates a test file with random content of specified size
func CreateTestFileWithSize(t *testing.T, dir, filename string, size int64) string {
	t.Helper()
	filePath := filepath.Join(dir, filepath.FromSlash(filename))

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}
	defer file.Close()

	written, err := io.CopyN(file, rand.Reader, size)
	if err != nil {
		t.Fatalf("Failed to write test data to %s: %v", filePath, err)
	}
	if written != size {
		t.Fatalf("Expected to write %d bytes, but wrote %d", size, written)
	}

	return filePath
}

// CreateTestVaultConfig creates a basic vault configuration for testing
func CreateTestVaultConfig(t *testing.T, vaultName string) *config.VaultConfig {
	t.Helper()

	cfg := config.BuildVaultConfig("test-vault-"+vaultName, vaultName)
	// Small chunks so multi-chunk behavior shows up with modest test data.
	cfg.Chunking.WindowSize = 48
	cfg.Chunking.MinChunkSize = 512
	cfg.Chunking.MaxChunkSize = 8192
	cfg.Chunking.BoundaryMask = 0x3FF
	return &cfg
}

// CreateTestVault lays out a vault directory with a saved config and
// returns the vault root.
func CreateTestVault(t *testing.T, vaultName string) (string, *config.VaultConfig) {
	t.Helper()

	base := TempDir(t, "stillsuit-vault-")
	vaultRoot := filepath.Join(base, constants.VaultDirName)
	if err := os.MkdirAll(vaultRoot, constants.SecureDirPerms); err != nil {
		t.Fatalf("Failed to create vault root: %v", err)
	}

	cfg := CreateTestVaultConfig(t, vaultName)
	if err := config.SaveVaultConfig(vaultRoot, cfg); err != nil {
		t.Fatalf("Failed to save vault config: %v", err)
	}

	return vaultRoot, cfg
}
