package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/substantialcattle5/stillsuit/internal/constants"
)

// LoadVaultConfig reads and parses vault.yaml from the vault root.
func LoadVaultConfig(vaultRoot string) (*VaultConfig, error) {
	configPath := filepath.Join(vaultRoot, constants.VaultConfigName)

	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("vault configuration not found at %s", configPath)
		}
		return nil, fmt.Errorf("error accessing vault configuration: %w", err)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading vault configuration: %w", err)
	}

	var config VaultConfig
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("error parsing vault configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid vault configuration: %w", err)
	}

	return &config, nil
}

// SaveVaultConfig writes vault.yaml to the vault root.
func SaveVaultConfig(vaultRoot string, config *VaultConfig) error {
	configPath := filepath.Join(vaultRoot, constants.VaultConfigName)

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create vault configuration: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode vault configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalize vault configuration: %w", err)
	}

	return nil
}
