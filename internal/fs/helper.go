// Package fs provides vault directory discovery and layout helpers.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// EnsureDirectory ensures a directory exists, creating it if necessary
func EnsureDirectory(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, constants.StandardDirPerms)
	} else if err != nil {
		return err
	}
	return nil
}

// VaultPath returns the vault directory under basePath.
func VaultPath(basePath string) string {
	return filepath.Join(basePath, constants.VaultDirName)
}

// IsVaultInitialized checks if the given path contains an initialized vault
func IsVaultInitialized(basePath string) bool {
	vaultDir := VaultPath(basePath)
	configPath := filepath.Join(vaultDir, constants.VaultConfigName)

	dirInfo, dirErr := os.Stat(vaultDir)
	cfgInfo, cfgErr := os.Stat(configPath)

	return dirErr == nil && dirInfo.IsDir() &&
		cfgErr == nil && !cfgInfo.IsDir()
}

// FindVaultRoot traverses up from the working directory until it finds
// an initialized vault and returns the vault directory itself.
func FindVaultRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if IsVaultInitialized(currentDir) {
			return VaultPath(currentDir), nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", fmt.Errorf("no vault found in the current path hierarchy")
		}
		currentDir = parentDir
	}
}

// CreateVaultStructure lays out the vault directory tree under basePath.
func CreateVaultStructure(basePath string) (string, error) {
	vaultDir := VaultPath(basePath)
	if err := os.MkdirAll(vaultDir, constants.SecureDirPerms); err != nil {
		return "", fmt.Errorf("failed to create vault directory %s: %w", vaultDir, err)
	}

	dirs := []string{
		filepath.Join(vaultDir, constants.ChunksDirName),
		filepath.Join(vaultDir, constants.ChunkMetaDirName),
		filepath.Join(vaultDir, constants.RefsDirName),
		filepath.Join(vaultDir, constants.SnapshotsDirName),
		filepath.Join(vaultDir, constants.IndexesDirName),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, constants.StandardDirPerms); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return vaultDir, nil
}
