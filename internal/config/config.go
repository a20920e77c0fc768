// Package config provides configuration management for Hermit.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the full Hermit configuration, loaded from a YAML file
// whose path may be overridden by HERMIT_CONFIG. A missing file falls back
// to Defaults().
type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Commands    CommandsConfig    `yaml:"commands"`
	IO          IOConfig          `yaml:"io"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Logging     LoggingConfig     `yaml:"logging"`

	// Warnings accumulates non-fatal configuration problems surfaced by
	// ApplyEnvironment, reported by the CLI rather than aborting startup.
	Warnings []string `yaml:"-"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	ConfigFile string `yaml:"config_file"`
	ShardsFile string `yaml:"shards_file"`
	PluginDir  string `yaml:"plugin_dir"`
}

// CommandsConfig holds shell command templates with "{0}" interpolated to
// PathsConfig.ShardsFile. Defaults gzip-and-copy to sibling files.
type CommandsConfig struct {
	PersistShards      string `yaml:"persistShards"`
	BackupShards       string `yaml:"backupShards"`
	RestoreBackup      string `yaml:"restoreBackup"`
	GetPersistedShards string `yaml:"getPersistedShards"`
}

// IOConfig holds display/camera adapter selection.
type IOConfig struct {
	Display             string `yaml:"display"`
	Camera              string `yaml:"camera"`
	QRCodeSequenceDelay int    `yaml:"qr_code_sequence_delay"`
	XPosition           int    `yaml:"x_position"`
	YPosition           int    `yaml:"y_position"`
	Width               int    `yaml:"width"`
	Height              int    `yaml:"height"`
}

// CoordinatorConfig holds coordinator-signature verification policy.
type CoordinatorConfig struct {
	SignatureRequired bool   `yaml:"signature_required"`
	PublicKey         string `yaml:"public_key"`
	Algorithm         string `yaml:"algorithm"`
	RelockTimeout     int    `yaml:"relock_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Supported coordinator signature algorithms (resolves spec's Open Question:
// the algorithm is always explicit, never inferred from key shape).
const (
	AlgorithmRSAPKCS1SHA256       = "rsa-pkcs1-sha256"
	AlgorithmECDSASecp256k1SHA256 = "ecdsa-secp256k1-sha256"
)

// Load reads configuration from the specified file, falling back to
// Defaults() for any field the file does not set. A missing file is not an
// error: Defaults() alone is returned.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	// #nosec G304 -- config file path is operator-supplied (HERMIT_CONFIG or default)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path, honoring HERMIT_CONFIG.
func Path() string {
	if v := os.Getenv(EnvConfig); v != "" {
		return v
	}
	return DefaultConfigPath
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetShardsFile returns the configured shard store path.
func (c *Config) GetShardsFile() string {
	return c.Paths.ShardsFile
}
