package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration from the specified YAML file
func LoadConfig(configPath string) (*Config, error) {
	// Ensure the config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	// Parse the YAML
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Validate and set defaults
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation error: %v", err)
	}

	return config, nil
}

func validateConfig(config *Config) error {
	// Set defaults if not specified
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Server.UploadDir == "" {
		config.Server.UploadDir = "uploads"
	}

	if config.Server.StaticDir == "" {
		config.Server.StaticDir = "web"
	}

	if config.Server.RegistryFile == "" {
		config.Server.RegistryFile = "registry.json"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	if config.Logging.File == "" {
		config.Logging.File = "server.log"
	}

	// Ensure required directories exist or can be created
	dirs := []string{config.Server.UploadDir, config.Server.StaticDir, filepath.Dir(config.Server.RegistryFile)}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
	}

	return nil
}
