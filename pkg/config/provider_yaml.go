package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file. The file
// is read once and cached for the section getters.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{}
	if err := yaml.Unmarshal(cfgFile, config); err != nil {
		return nil, fmt.Errorf("error parsing YAML config %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// GetDevices returns the configured sensor devices
func (y *YAMLProvider) GetDevices() ([]DeviceData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Devices, nil
}

// GetProfile returns the exposure profile
func (y *YAMLProvider) GetProfile() (*ProfileData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Profile, nil
}

// GetStorageConfig returns the storage backend configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Storage, nil
}

// GetControllers returns the controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Controllers, nil
}

// IsReadOnly returns true: YAML configs are never written back
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
