// pkg/config/config.go - configuration settings for the deployment wrapper.

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/windows/registry"
	"gopkg.in/yaml.v3"
)

const ConfigPath = `C:\ProgramData\DeployWrap\Config.yaml`

// CSP OMA-URI registry path for enterprise policy configuration pushed
// through Intune.
const CSPRegistryPath = `SOFTWARE\DeployWrap\Config`

// Configuration holds the configurable options for the wrapper. It is
// populated once at startup and treated as immutable afterwards.
type Configuration struct {
	ToolkitPath       string `yaml:"ToolkitPath"`       // Invoke-AppDeployToolkit.exe
	ServiceUIPath     string `yaml:"ServiceUIPath"`     // ServiceUI.exe session launcher
	LogPath           string `yaml:"LogPath"`           // directory for daily log files
	LogLevel          string `yaml:"LogLevel"`
	Debug             bool   `yaml:"Debug"`
	Verbose           bool   `yaml:"Verbose"`
	MinToolkitVersion string `yaml:"MinToolkitVersion"` // warn when the installed PSADT is older
}

// LoadConfig loads the configuration: compiled defaults, then the YAML file
// if present, then CSP OMA-URI registry overrides. A missing YAML file is
// normal on Intune-managed machines and is not an error.
func LoadConfig() (*Configuration, error) {
	return loadConfigFrom(ConfigPath)
}

func loadConfigFrom(path string) (*Configuration, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Printf("Configuration file does not exist: %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("reading configuration file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing configuration file: %w", err)
		}
	}

	// CSP registry values win over the YAML file so Intune policy can
	// override local configuration.
	if err := loadCSPFromRegistryPath(CSPRegistryPath, config); err != nil {
		log.Printf("No CSP registry configuration: %v", err)
	}

	if config.LogPath == "" {
		config.LogPath = `C:\ProgramData\DeployWrap\logs`
	}
	if err := os.MkdirAll(config.LogPath, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %v", config.LogPath, err)
	}

	return config, nil
}

// SaveConfig saves the current configuration to the YAML file.
func SaveConfig(config *Configuration) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ConfigPath), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}

	return os.WriteFile(ConfigPath, data, 0644)
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		ToolkitPath:       `C:\ProgramData\DeployWrap\PSAppDeployToolkit\Invoke-AppDeployToolkit.exe`,
		ServiceUIPath:     `C:\ProgramData\DeployWrap\ServiceUI.exe`,
		LogPath:           `C:\ProgramData\DeployWrap\logs`,
		LogLevel:          "INFO",
		Debug:             false,
		Verbose:           false,
		MinToolkitVersion: "4.0.0",
	}
}

// loadCSPFromRegistryPath loads configuration values from a CSP registry path.
func loadCSPFromRegistryPath(registryPath string, config *Configuration) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, registryPath, registry.READ)
	if err != nil {
		return fmt.Errorf("failed to open CSP registry key %s: %v", registryPath, err)
	}
	defer key.Close()

	loadStringFromRegistry(key, "ToolkitPath", &config.ToolkitPath)
	loadStringFromRegistry(key, "ServiceUIPath", &config.ServiceUIPath)
	loadStringFromRegistry(key, "LogPath", &config.LogPath)
	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)
	loadStringFromRegistry(key, "MinToolkitVersion", &config.MinToolkitVersion)

	loadBoolFromRegistry(key, "Debug", &config.Debug)
	loadBoolFromRegistry(key, "Verbose", &config.Verbose)

	return nil
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("CSP: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts various formats: "true"/"false", "1"/"0", DWORD 1/0
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %t", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
		log.Printf("CSP: Loaded %s = %t", valueName, val != 0)
	}
}
