package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang-kvconfig/internal/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DefaultLockTimeout bounds how long a file lock is waited for when none is configured
const DefaultLockTimeout = 5 * time.Second

// InterfaceConfig points at the key=value blob describing one interface
type InterfaceConfig struct {
	Config string `yaml:"config"`          // path of the interface blob
	Lease  string `yaml:"lease,omitempty"` // where DHCP leases are recorded
}

// LockConfig selects cross-process locking of blob files
type LockConfig struct {
	Dir     string        `yaml:"dir,omitempty"` // empty disables file locks
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Config represents the main configuration structure
type Config struct {
	Logging    logging.LogConfig          `yaml:"logging"`
	Lock       LockConfig                 `yaml:"lock"`
	Interfaces map[string]InterfaceConfig `yaml:"interfaces"`
}

// Load loads configuration from a YAML file. Relative blob paths are resolved
// against the directory of the config file.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	base := filepath.Dir(configPath)
	for name, iface := range config.Interfaces {
		iface.Config = resolve(base, iface.Config)
		iface.Lease = resolve(base, iface.Lease)
		config.Interfaces[name] = iface
	}
	if config.Lock.Timeout == 0 {
		config.Lock.Timeout = DefaultLockTimeout
	}

	return &config, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// GetInterfaceConfig returns the configuration for a specific interface
func (c *Config) GetInterfaceConfig(interfaceName string) (InterfaceConfig, bool) {
	config, exists := c.Interfaces[interfaceName]
	return config, exists
}

// LockPath returns the lock file guarding the named interface, or "" when locking is off
func (c *Config) LockPath(interfaceName string) string {
	if c.Lock.Dir == "" {
		return ""
	}
	return filepath.Join(c.Lock.Dir, interfaceName+".lock")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Interfaces) == 0 {
		return fmt.Errorf("no interfaces configured")
	}
	if c.Lock.Timeout < 0 {
		return fmt.Errorf("lock timeout must not be negative")
	}

	for name, iface := range c.Interfaces {
		if iface.Config == "" {
			return fmt.Errorf("interface %s: config blob path is required", name)
		}
	}

	return nil
}
